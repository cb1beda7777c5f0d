package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/member-ledger/internal/config"
	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/payment/alipay"
	"github.com/member-ledger/internal/payment/wechatpay"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrProviderUnsupported 未知的支付渠道
	ErrProviderUnsupported = errors.New("payment provider unsupported")
	// ErrCallbackUnsupported 当前渠道不接受该回调
	ErrCallbackUnsupported = errors.New("payment callback unsupported for provider")
	// ErrNotificationInvalid 回调字段无法解析
	ErrNotificationInvalid = errors.New("payment notification invalid")
)

// Request 下单请求
type Request struct {
	Title    string
	Amount   decimal.Decimal
	OrderRef string
	ClientIP string
}

// Result 下单结果，Token 原样保存到订单供客户端使用
type Result struct {
	Provider string
	Token    string
	TradeNo  string
}

// Notification 已验签的支付通知
type Notification struct {
	Provider string
	OrderRef string
	TradeNo  string
	Amount   decimal.Decimal // 回调未携带金额时为零
	Paid     bool
}

// Gateway 支付网关
type Gateway interface {
	Provider() string
	CreatePayment(ctx context.Context, req Request) (*Result, error)
}

// CallbackVerifier 支付回调验签
type CallbackVerifier interface {
	VerifyAlipay(form url.Values) (*Notification, error)
	VerifyWechat(ctx context.Context, header http.Header, body []byte) (*Notification, error)
}

// New 按配置创建支付网关
func New(cfg config.PaymentConfig) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = constants.PaymentProviderSandbox
	}
	client := &Client{provider: provider}
	switch provider {
	case constants.PaymentProviderSandbox:
	case constants.PaymentProviderAlipay:
		client.alipay = &alipay.Config{
			AppID:           cfg.Alipay.AppID,
			PrivateKey:      cfg.Alipay.PrivateKey,
			AlipayPublicKey: cfg.Alipay.AlipayPublicKey,
			GatewayURL:      cfg.Alipay.GatewayURL,
			NotifyURL:       cfg.Alipay.NotifyURL,
			SignType:        cfg.Alipay.SignType,
			Mode:            cfg.Alipay.Mode,
		}
		if err := alipay.ValidateConfig(client.alipay); err != nil {
			return nil, err
		}
	case constants.PaymentProviderWechat:
		client.wechat = &wechatpay.Config{
			AppID:              cfg.Wechat.AppID,
			MerchantID:         cfg.Wechat.MerchantID,
			MerchantSerialNo:   cfg.Wechat.MerchantSerialNo,
			MerchantPrivateKey: cfg.Wechat.MerchantPrivateKey,
			APIV3Key:           cfg.Wechat.APIV3Key,
			NotifyURL:          cfg.Wechat.NotifyURL,
			BaseURL:            cfg.Wechat.BaseURL,
			Mode:               cfg.Wechat.Mode,
		}
		if err := wechatpay.ValidateConfig(client.wechat); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrProviderUnsupported, provider)
	}
	return client, nil
}

// Client 按配置渠道分发的支付网关
type Client struct {
	provider string
	alipay   *alipay.Config
	wechat   *wechatpay.Config
}

// Provider 当前渠道
func (c *Client) Provider() string {
	return c.provider
}

// CreatePayment 调用渠道下单
func (c *Client) CreatePayment(ctx context.Context, req Request) (*Result, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	amount := req.Amount.Round(2).StringFixed(2)
	switch c.provider {
	case constants.PaymentProviderAlipay:
		created, err := alipay.CreatePayment(ctx, c.alipay, alipay.CreateInput{
			OrderNo: req.OrderRef,
			Amount:  amount,
			Subject: req.Title,
		})
		if err != nil {
			return nil, err
		}
		return &Result{Provider: c.provider, Token: created.Token(), TradeNo: created.TradeNo}, nil
	case constants.PaymentProviderWechat:
		created, err := wechatpay.CreatePayment(ctx, c.wechat, wechatpay.CreateInput{
			OrderNo:     req.OrderRef,
			Amount:      amount,
			Description: req.Title,
			ClientIP:    req.ClientIP,
		})
		if err != nil {
			return nil, err
		}
		return &Result{Provider: c.provider, Token: created.Token(), TradeNo: created.PrepayID}, nil
	default:
		return &Result{
			Provider: constants.PaymentProviderSandbox,
			Token:    "sandbox_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		}, nil
	}
}

// VerifyAlipay 校验支付宝异步通知
func (c *Client) VerifyAlipay(form url.Values) (*Notification, error) {
	if c.alipay == nil {
		return nil, ErrCallbackUnsupported
	}
	parsed, err := alipay.ParseNotification(c.alipay, form)
	if err != nil {
		return nil, err
	}
	amount, err := parseNotifyAmount(parsed.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &Notification{
		Provider: constants.PaymentProviderAlipay,
		OrderRef: parsed.OutTradeNo,
		TradeNo:  parsed.TradeNo,
		Amount:   amount,
		Paid:     parsed.Paid(),
	}, nil
}

// VerifyWechat 校验并解密微信支付通知
func (c *Client) VerifyWechat(ctx context.Context, header http.Header, body []byte) (*Notification, error) {
	if c.wechat == nil {
		return nil, ErrCallbackUnsupported
	}
	headers := make(map[string]string, len(header))
	for key := range header {
		headers[key] = header.Get(key)
	}
	parsed, err := wechatpay.VerifyAndDecodeWebhook(ctx, c.wechat, headers, body)
	if err != nil {
		return nil, err
	}
	amount, err := parseNotifyAmount(parsed.Amount)
	if err != nil {
		return nil, err
	}
	return &Notification{
		Provider: constants.PaymentProviderWechat,
		OrderRef: parsed.OrderNo,
		TradeNo:  parsed.TransactionID,
		Amount:   amount,
		Paid:     parsed.Status == wechatpay.StatusPaid,
	}, nil
}

func parseNotifyAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", ErrNotificationInvalid, raw)
	}
	return amount, nil
}
