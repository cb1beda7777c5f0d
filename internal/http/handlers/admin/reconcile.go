package admin

import (
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/queue"

	"github.com/gin-gonic/gin"
)

const reconcileTriggerAdmin = "admin"

// RunReconcile 手工触发对账；async=1 且队列可用时投递到 worker
func (h *Handler) RunReconcile(c *gin.Context) {
	async := c.Query("async") == "1" || c.Query("async") == "true"
	if async && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueReconcileRun(queue.ReconcileRunPayload{Trigger: reconcileTriggerAdmin}); err != nil {
			respondError(c, response.CodeInternal, "error.reconcile_enqueue_failed", err)
			return
		}
		logger.Infow("admin_reconcile_enqueued", "operator_admin_id", currentAdminID(c))
		response.Success(c, gin.H{"queued": true})
		return
	}

	report := h.ReconcileService.Run(c.Request.Context(), reconcileTriggerAdmin)
	logger.Infow("admin_reconcile_finished",
		"operator_admin_id", currentAdminID(c),
		"jobs", len(report.Jobs),
	)
	response.Success(c, gin.H{"queued": false, "report": report})
}
