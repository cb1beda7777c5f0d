package public

import (
	"errors"
	"io"
	"net/http"

	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/payment"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	alipayCallbackSuccess = "success"
	alipayCallbackFail    = "fail"
)

type wechatCallbackAck struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AlipayCallback 支付宝异步通知
func (h *Handler) AlipayCallback(c *gin.Context) {
	if h.verifier == nil {
		c.String(http.StatusOK, alipayCallbackFail)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		requestLog(c).Warnw("alipay_callback_parse_failed", "error", err)
		c.String(http.StatusOK, alipayCallbackFail)
		return
	}
	notification, err := h.verifier.VerifyAlipay(c.Request.PostForm)
	if err != nil {
		requestLog(c).Warnw("alipay_callback_verify_failed", "error", err)
		c.String(http.StatusOK, alipayCallbackFail)
		return
	}
	if err := h.applyNotification(c, notification); err != nil {
		c.String(http.StatusOK, alipayCallbackFail)
		return
	}
	c.String(http.StatusOK, alipayCallbackSuccess)
}

// WechatCallback 微信支付异步通知
func (h *Handler) WechatCallback(c *gin.Context) {
	if h.verifier == nil {
		c.JSON(http.StatusBadRequest, wechatCallbackAck{Code: "FAIL", Message: "失败"})
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		requestLog(c).Warnw("wechat_callback_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, wechatCallbackAck{Code: "FAIL", Message: "失败"})
		return
	}
	notification, err := h.verifier.VerifyWechat(c.Request.Context(), c.Request.Header, body)
	if err != nil {
		requestLog(c).Warnw("wechat_callback_verify_failed", "error", err)
		c.JSON(http.StatusBadRequest, wechatCallbackAck{Code: "FAIL", Message: "失败"})
		return
	}
	if err := h.applyNotification(c, notification); err != nil {
		c.JSON(http.StatusBadRequest, wechatCallbackAck{Code: "FAIL", Message: "失败"})
		return
	}
	c.JSON(http.StatusOK, wechatCallbackAck{Code: "SUCCESS", Message: "成功"})
}

// applyNotification 未支付的通知直接确认，不推进订单
func (h *Handler) applyNotification(c *gin.Context, notification *payment.Notification) error {
	if notification == nil || !notification.Paid {
		return nil
	}
	_, err := h.OrderService.MarkPaid(c.Request.Context(), service.MarkPaidInput{
		OrderNo: notification.OrderRef,
		TradeNo: notification.TradeNo,
		Amount:  notification.Amount,
	})
	if err == nil {
		return nil
	}
	// 报名已失效的订单需人工退款，回调不再重试
	if errors.Is(err, service.ErrEnrollmentStatusInvalid) {
		requestLog(c).Errorw("payment_callback_enrollment_invalid",
			"provider", notification.Provider,
			"order_no", notification.OrderRef,
			"trade_no", notification.TradeNo,
		)
		return nil
	}
	// 已取消或已退款的订单不再重试
	if errors.Is(err, service.ErrOrderStatusInvalid) {
		logger.Warnw("payment_callback_order_not_payable",
			"provider", notification.Provider,
			"order_no", notification.OrderRef,
			"trade_no", notification.TradeNo,
		)
		return nil
	}
	requestLog(c).Errorw("payment_callback_mark_paid_failed",
		"provider", notification.Provider,
		"order_no", notification.OrderRef,
		"error", err,
	)
	return err
}
