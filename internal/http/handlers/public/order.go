package public

import (
	"strings"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Kind       string `json:"kind" binding:"required"`
	GoodsID    uint   `json:"goods_id"`
	ActivityID uint   `json:"activity_id"`
	TierID     uint   `json:"tier_id"`
	Quantity   int    `json:"quantity"`
	AddressID  *uint  `json:"address_id"`
	FormData   string `json:"form_data"`
	Remark     string `json:"remark"`
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.OrderService.Create(c.Request.Context(), service.CreateOrderInput{
		MemberID:   memberID,
		Kind:       strings.TrimSpace(req.Kind),
		GoodsID:    req.GoodsID,
		ActivityID: req.ActivityID,
		TierID:     req.TierID,
		Quantity:   req.Quantity,
		AddressID:  req.AddressID,
		FormData:   req.FormData,
		Remark:     req.Remark,
		ClientIP:   c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err, "error.order_create_failed")
		return
	}
	response.Success(c, result)
}

// ListOrders 我的订单
func (h *Handler) ListOrders(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	orders, total, err := h.OrderService.List(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		MemberID: memberID,
		Kind:     strings.TrimSpace(c.Query("kind")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, orders, page, pageSize, total)
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.Get(orderID, memberID)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c)
	if !ok {
		return
	}
	var req CancelOrderRequest
	_ = c.ShouldBindJSON(&req)
	order, err := h.OrderService.Cancel(c.Request.Context(), orderID, memberID, strings.TrimSpace(req.Reason))
	if err != nil {
		respondServiceError(c, err, "error.order_cancel_failed")
		return
	}
	response.Success(c, order)
}

// ConfirmReceipt 确认收货
func (h *Handler) ConfirmReceipt(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.ConfirmReceipt(orderID, memberID)
	if err != nil {
		respondServiceError(c, err, "error.order_update_failed")
		return
	}
	response.Success(c, order)
}
