package alipay

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateConfigDefaults(t *testing.T) {
	cfg := &Config{
		AppID:           "2026000000000000",
		PrivateKey:      "k",
		AlipayPublicKey: "p",
		NotifyURL:       "https://example.com/api/v1/payments/callback/alipay",
		SignType:        "rsa2",
	}
	require.NoError(t, ValidateConfig(cfg))
	require.Equal(t, "RSA2", cfg.SignType)
	require.Equal(t, ModeApp, cfg.Mode)
	require.Equal(t, defaultGatewayURL, cfg.GatewayURL)
}

func TestValidateConfigRejectsUnknownMode(t *testing.T) {
	cfg := &Config{
		AppID:           "2026000000000000",
		PrivateKey:      "k",
		AlipayPublicKey: "p",
		NotifyURL:       "https://example.com/api/v1/payments/callback/alipay",
		Mode:            "page",
	}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestCreatePaymentAppReturnsSignedOrderString(t *testing.T) {
	cfg := buildTestConfig("https://openapi.alipay.com/gateway.do")
	result, err := CreatePayment(context.Background(), cfg, CreateInput{
		OrderNo: "ON1234",
		Amount:  "99.9",
		Subject: "年度会员",
	})
	require.NoError(t, err)
	require.Equal(t, "alipay.trade.app.pay", result.Method)
	require.Equal(t, result.OrderString, result.Token())

	values, err := url.ParseQuery(result.OrderString)
	require.NoError(t, err)
	require.Equal(t, "alipay.trade.app.pay", values.Get("method"))
	require.NotEmpty(t, values.Get("sign"))
	require.Contains(t, values.Get("biz_content"), `"total_amount":"99.90"`)
}

func TestCreatePaymentPrecreate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "alipay.trade.precreate", r.Form.Get("method"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"alipay_trade_precreate_response": map[string]interface{}{
				"code":         "10000",
				"msg":          "Success",
				"out_trade_no": "ON5678",
				"trade_no":     "20260209000001",
				"qr_code":      "https://qr.alipay.com/abc",
			},
			"sign": "test-sign",
		})
	}))
	defer server.Close()

	cfg := buildTestConfig(server.URL)
	cfg.Mode = ModeQR
	result, err := CreatePayment(context.Background(), cfg, CreateInput{
		OrderNo: "ON5678",
		Amount:  "19.90",
		Subject: "活动报名",
	})
	require.NoError(t, err)
	require.Equal(t, "https://qr.alipay.com/abc", result.Token())
	require.Equal(t, "ON5678", result.OutTradeNo)
}

func TestCreatePaymentPrecreateResponseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"alipay_trade_precreate_response": map[string]interface{}{
				"code":    "40004",
				"msg":     "Business Failed",
				"sub_msg": "ACQ.TRADE_HAS_CLOSE",
			},
		})
	}))
	defer server.Close()

	cfg := buildTestConfig(server.URL)
	cfg.Mode = ModeQR
	_, err := CreatePayment(context.Background(), cfg, CreateInput{OrderNo: "ON9", Amount: "10.00"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrResponseInvalid))
}

func TestParseNotificationSuccess(t *testing.T) {
	cfg := buildTestConfig("https://openapi.alipay.com/gateway.do")
	form := map[string][]string{
		"app_id":       {cfg.AppID},
		"notify_id":    {"notify-1"},
		"out_trade_no": {"ON-VERIFY-1"},
		"trade_no":     {"20260209000088"},
		"trade_status": {"TRADE_SUCCESS"},
		"total_amount": {"88.00"},
		"sign_type":    {"RSA2"},
	}
	sign, err := signContent(buildSignContentFromForm(form), cfg.PrivateKey, cfg.SignType)
	require.NoError(t, err)
	form["sign"] = []string{sign}

	notification, err := ParseNotification(cfg, form)
	require.NoError(t, err)
	require.True(t, notification.Paid())
	require.Equal(t, "ON-VERIFY-1", notification.OutTradeNo)
	require.Equal(t, "20260209000088", notification.TradeNo)
}

func TestVerifyCallbackInvalidSign(t *testing.T) {
	cfg := buildTestConfig("https://openapi.alipay.com/gateway.do")
	form := map[string][]string{
		"out_trade_no": {"ON-VERIFY-2"},
		"trade_status": {"TRADE_SUCCESS"},
		"sign_type":    {"RSA2"},
		"sign":         {"invalid-sign"},
	}
	err := VerifyCallback(cfg, form)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSignatureInvalid))
}

func TestNotificationPaidStatuses(t *testing.T) {
	cases := map[string]bool{
		"TRADE_SUCCESS":  true,
		"TRADE_FINISHED": true,
		"WAIT_BUYER_PAY": false,
		"TRADE_CLOSED":   false,
	}
	for status, want := range cases {
		t.Run(status, func(t *testing.T) {
			require.Equal(t, want, (&Notification{TradeStatus: status}).Paid())
		})
	}
}

func buildTestConfig(gatewayURL string) *Config {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	privateKeyDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		panic(err)
	}
	privateKeyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateKeyDER})
	publicKeyDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		panic(err)
	}
	publicKeyPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicKeyDER})
	return &Config{
		AppID:           "2026000000000000",
		PrivateKey:      string(privateKeyPEM),
		AlipayPublicKey: string(publicKeyPEM),
		GatewayURL:      gatewayURL,
		NotifyURL:       "https://example.com/api/v1/payments/callback/alipay",
		SignType:        "RSA2",
	}
}
