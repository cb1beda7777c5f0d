package wechatpay

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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateConfigDefaults(t *testing.T) {
	cfg := buildTestConfig("")
	require.NoError(t, ValidateConfig(cfg))
	require.Equal(t, defaultBaseURL, cfg.BaseURL)
	require.Equal(t, ModeApp, cfg.Mode)
}

func TestValidateConfigInvalidAPIV3KeyLength(t *testing.T) {
	cfg := buildTestConfig("")
	cfg.APIV3Key = "short-key"
	err := ValidateConfig(cfg)
	require.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestCreatePaymentAppReturnsPrepayID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/pay/transactions/app", r.URL.Path)
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "ON1001", payload["out_trade_no"])
		amount, ok := payload["amount"].(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, float64(1050), amount["total"])
		require.Equal(t, "CNY", amount["currency"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prepay_id":"wx201410272009395522657a690389285100"}`))
	}))
	defer server.Close()

	cfg := buildTestConfig(server.URL)
	result, err := CreatePayment(context.Background(), cfg, CreateInput{
		OrderNo:     "ON1001",
		Amount:      "10.50",
		Description: "活动报名",
	})
	require.NoError(t, err)
	require.Equal(t, "wx201410272009395522657a690389285100", result.Token())
}

func TestCreatePaymentNativeReturnsCodeURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/pay/transactions/native", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code_url":"weixin://wxpay/bizpayurl?pr=mocked"}`))
	}))
	defer server.Close()

	cfg := buildTestConfig(server.URL)
	cfg.Mode = ModeNative
	result, err := CreatePayment(context.Background(), cfg, CreateInput{
		OrderNo:  "ON1002",
		Amount:   "1.00",
		ClientIP: "127.0.0.1",
	})
	require.NoError(t, err)
	require.Equal(t, "weixin://wxpay/bizpayurl?pr=mocked", result.Token())
}

func TestCreatePaymentResponseInvalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"INVALID_REQUEST"}`))
	}))
	defer server.Close()

	cfg := buildTestConfig(server.URL)
	_, err := CreatePayment(context.Background(), cfg, CreateInput{OrderNo: "ON1003", Amount: "2.00"})
	require.True(t, errors.Is(err, ErrResponseInvalid), "got %v", err)
}

func TestConvertAmountToFenRejectsSubFen(t *testing.T) {
	fen, err := convertAmountToFen("12.34")
	require.NoError(t, err)
	require.Equal(t, int64(1234), fen)

	_, err = convertAmountToFen("0.001")
	require.Error(t, err)
}

func TestToPaymentStatus(t *testing.T) {
	cases := []struct {
		state  string
		status string
		ok     bool
	}{
		{"SUCCESS", StatusPaid, true},
		{"NOTPAY", StatusPending, true},
		{"PAYERROR", StatusFailed, true},
		{"UNKNOWN", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.state, func(t *testing.T) {
			status, ok := ToPaymentStatus(tc.state)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.status, status)
		})
	}
}

func buildTestConfig(baseURL string) *Config {
	return &Config{
		AppID:              "wx1234567890",
		MerchantID:         "1900000109",
		MerchantSerialNo:   "ABC123456789",
		MerchantPrivateKey: buildTestPrivateKey(),
		APIV3Key:           "12345678901234567890123456789012",
		NotifyURL:          "https://example.com/api/v1/payments/callback/wechat",
		BaseURL:            baseURL,
	}
}

func buildTestPrivateKey() string {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	privateKeyDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		panic(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateKeyDER}))
}
