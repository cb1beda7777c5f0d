package public

import (
	"github.com/member-ledger/internal/payment"
	"github.com/member-ledger/internal/provider"
)

// Handler 会员端、商家端与支付回调接口处理器
type Handler struct {
	*provider.Container
	verifier payment.CallbackVerifier
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	h := &Handler{Container: c}
	if c != nil && c.PaymentClient != nil {
		h.verifier = c.PaymentClient
	}
	return h
}
