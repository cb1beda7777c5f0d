package public

import (
	"strings"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/repository"

	"github.com/gin-gonic/gin"
)

// CouponCodeRequest 核销请求
type CouponCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckCoupon 核销前预检
func (h *Handler) CheckCoupon(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	var req CouponCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.CouponRedeemService.Check(c.Request.Context(), strings.TrimSpace(req.Code), merchantID)
	if err != nil {
		respondServiceError(c, err, "error.redeem_failed")
		return
	}
	response.Success(c, result)
}

// RedeemCoupon 商家核销优惠券
func (h *Handler) RedeemCoupon(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	var req CouponCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.CouponRedeemService.Redeem(c.Request.Context(), strings.TrimSpace(req.Code), merchantID)
	if err != nil {
		respondServiceError(c, err, "error.redeem_failed")
		return
	}
	response.Success(c, result)
}

// ListMerchantVerifications 商家核销记录
func (h *Handler) ListMerchantVerifications(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	logs, total, err := h.CouponRedeemService.ListVerificationLogs(repository.VerificationLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		MerchantID: merchantID,
		CouponCode: strings.TrimSpace(c.Query("code")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, logs, page, pageSize, total)
}
