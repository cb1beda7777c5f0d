package admin

import (
	"strings"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdjustPointsRequest 积分调整请求，正数入账负数扣减
type AdjustPointsRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Remark string          `json:"remark"`
}

// AdjustPoints 管理员调整会员积分
func (h *Handler) AdjustPoints(c *gin.Context) {
	memberID, ok := parseID(c)
	if !ok {
		return
	}
	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Delta.IsZero() {
		respondServiceError(c, service.ErrInvalidAmount, "error.bad_request")
		return
	}
	if _, err := h.MemberService.GetMember(memberID); err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	entry, err := h.PointsService.AdminAdjust(memberID, req.Delta, req.Remark)
	if err != nil {
		respondServiceError(c, err, "error.points_adjust_failed")
		return
	}
	logger.Infow("admin_points_adjusted",
		"operator_admin_id", currentAdminID(c),
		"member_id", memberID,
		"delta", req.Delta.String(),
	)
	response.Success(c, entry)
}

// ListPointEntries 积分流水查询
func (h *Handler) ListPointEntries(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	entries, total, err := h.PointsService.ListEntries(repository.PointEntryListFilter{
		Page:     page,
		PageSize: pageSize,
		MemberID: handlershared.QueryUint(c, "member_id"),
		Reason:   strings.TrimSpace(c.Query("reason")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, entries, page, pageSize, total)
}

// AuditPoints 核对会员余额与流水合计
func (h *Handler) AuditPoints(c *gin.Context) {
	memberID, ok := parseID(c)
	if !ok {
		return
	}
	audit, err := h.PointsService.AuditBalance(memberID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	if !audit.Consistent {
		requestLog(c).Warnw("points_balance_inconsistent",
			"member_id", memberID,
			"balance", audit.Balance.String(),
			"ledger_sum", audit.LedgerSum.String(),
		)
	}
	response.Success(c, audit)
}
