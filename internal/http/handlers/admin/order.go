package admin

import (
	"strings"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderRemarkRequest 订单操作备注
type OrderRemarkRequest struct {
	Remark string `json:"remark"`
}

// MarkPaidRequest 手工确认支付
type MarkPaidRequest struct {
	TradeNo string `json:"trade_no"`
}

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	orders, total, err := h.OrderService.List(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		MemberID: handlershared.QueryUint(c, "member_id"),
		Kind:     strings.TrimSpace(c.Query("kind")),
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, orders, page, pageSize, total)
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.Get(orderID, 0)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, order)
}

// ShipOrder 积分商品发货
func (h *Handler) ShipOrder(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.Ship(orderID)
	if err != nil {
		respondServiceError(c, err, "error.order_update_failed")
		return
	}
	logger.Infow("admin_order_shipped", "operator_admin_id", currentAdminID(c), "order_id", order.ID)
	response.Success(c, order)
}

// RefundOrder 退款并回退资源
func (h *Handler) RefundOrder(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}
	var req OrderRemarkRequest
	_ = c.ShouldBindJSON(&req)
	order, err := h.OrderService.Refund(c.Request.Context(), orderID, req.Remark)
	if err != nil {
		respondServiceError(c, err, "error.order_refund_failed")
		return
	}
	logger.Infow("admin_order_refunded", "operator_admin_id", currentAdminID(c), "order_id", order.ID)
	response.Success(c, order)
}

// CancelOrder 管理员取消待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}
	var req OrderRemarkRequest
	_ = c.ShouldBindJSON(&req)
	order, err := h.OrderService.Cancel(c.Request.Context(), orderID, 0, req.Remark)
	if err != nil {
		respondServiceError(c, err, "error.order_cancel_failed")
		return
	}
	logger.Infow("admin_order_cancelled", "operator_admin_id", currentAdminID(c), "order_id", order.ID)
	response.Success(c, order)
}

// MarkOrderPaid 线下或沙箱渠道手工确认支付
func (h *Handler) MarkOrderPaid(c *gin.Context) {
	orderID, ok := parseID(c)
	if !ok {
		return
	}
	var req MarkPaidRequest
	_ = c.ShouldBindJSON(&req)
	current, err := h.OrderService.Get(orderID, 0)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	tradeNo := strings.TrimSpace(req.TradeNo)
	if tradeNo == "" {
		tradeNo = "manual_" + current.OrderNo
	}
	order, err := h.OrderService.MarkPaid(c.Request.Context(), service.MarkPaidInput{OrderNo: current.OrderNo, TradeNo: tradeNo})
	if err != nil {
		respondServiceError(c, err, "error.order_update_failed")
		return
	}
	logger.Infow("admin_order_marked_paid",
		"operator_admin_id", currentAdminID(c),
		"order_id", order.ID,
		"trade_no", tradeNo,
	)
	response.Success(c, order)
}
