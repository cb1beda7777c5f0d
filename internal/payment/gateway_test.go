package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/member-ledger/internal/config"
	"github.com/member-ledger/internal/constants"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSandboxGatewayIssuesToken(t *testing.T) {
	client, err := New(config.PaymentConfig{})
	require.NoError(t, err)
	require.Equal(t, constants.PaymentProviderSandbox, client.Provider())

	result, err := client.CreatePayment(context.Background(), Request{
		Title:    "年度会员",
		Amount:   decimal.NewFromInt(99),
		OrderRef: "ON0001",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.Token, "sandbox_"))
}

func TestGatewayRejectsNonPositiveAmount(t *testing.T) {
	client, err := New(config.PaymentConfig{Provider: constants.PaymentProviderSandbox})
	require.NoError(t, err)
	_, err = client.CreatePayment(context.Background(), Request{Amount: decimal.Zero, OrderRef: "ON0002"})
	require.Error(t, err)
}

func TestUnknownProvider(t *testing.T) {
	_, err := New(config.PaymentConfig{Provider: "paypal"})
	require.True(t, errors.Is(err, ErrProviderUnsupported))
}

func TestAlipayProviderRequiresCredentials(t *testing.T) {
	_, err := New(config.PaymentConfig{Provider: constants.PaymentProviderAlipay})
	require.Error(t, err)
}

func TestSandboxRejectsCallbacks(t *testing.T) {
	client, err := New(config.PaymentConfig{})
	require.NoError(t, err)
	_, err = client.VerifyAlipay(url.Values{"out_trade_no": {"ON1"}})
	require.True(t, errors.Is(err, ErrCallbackUnsupported))
	_, err = client.VerifyWechat(context.Background(), nil, []byte("{}"))
	require.True(t, errors.Is(err, ErrCallbackUnsupported))
}

func TestParseNotifyAmount(t *testing.T) {
	amount, err := parseNotifyAmount(" 50.00 ")
	require.NoError(t, err)
	require.True(t, amount.Equal(decimal.NewFromInt(50)))

	amount, err = parseNotifyAmount("")
	require.NoError(t, err)
	require.True(t, amount.IsZero())

	_, err = parseNotifyAmount("fifty")
	require.True(t, errors.Is(err, ErrNotificationInvalid))
}
