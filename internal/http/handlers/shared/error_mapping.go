package shared

import (
	"errors"

	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/i18n"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 业务错误到接口响应的映射
type mappedHandlerError struct {
	target error
	key    string
}

var serviceErrorRules = []mappedHandlerError{
	{service.ErrMemberNotFound, "error.member_not_found"},
	{service.ErrMerchantNotFound, "error.merchant_not_found"},
	{service.ErrTierNotFound, "error.tier_not_found"},
	{service.ErrCouponTemplateNotFound, "error.coupon_template_not_found"},
	{service.ErrCouponNotFound, "error.coupon_not_found"},
	{service.ErrOrderNotFound, "error.order_not_found"},
	{service.ErrGoodsNotFound, "error.goods_not_found"},
	{service.ErrActivityNotFound, "error.activity_not_found"},
	{service.ErrEnrollmentNotFound, "error.enrollment_not_found"},
	{service.ErrVolunteerRecordNotFound, "error.volunteer_record_not_found"},
	{service.ErrAdminNotFound, "error.admin_not_found"},

	{service.ErrOrderStatusInvalid, "error.order_status_invalid"},
	{service.ErrCouponExpired, "error.coupon_expired"},
	{service.ErrCouponNotYetValid, "error.coupon_not_yet_valid"},
	{service.ErrCouponTemplateNotIssued, "error.coupon_template_not_issued"},
	{service.ErrCouponTemplateEnded, "error.coupon_template_ended"},
	{service.ErrTemplateAuditInvalid, "error.template_audit_invalid"},
	{service.ErrGoodsUnavailable, "error.goods_unavailable"},
	{service.ErrActivityClosed, "error.activity_closed"},
	{service.ErrActivityRequiresPayment, "error.activity_requires_payment"},
	{service.ErrTierUnavailable, "error.tier_unavailable"},
	{service.ErrMemberDisabled, "error.member_disabled"},
	{service.ErrEnrollmentStatusInvalid, "error.enrollment_status_invalid"},
	{service.ErrVolunteerAuditInvalid, "error.volunteer_audit_invalid"},

	{service.ErrInsufficientPoints, "error.insufficient_points"},
	{service.ErrOutOfStock, "error.coupon_out_of_stock"},
	{service.ErrGoodsOutOfStock, "error.goods_out_of_stock"},
	{service.ErrActivityFull, "error.activity_full"},

	{service.ErrCouponAlreadyUsed, "error.coupon_already_used"},
	{service.ErrAlreadyRegistered, "error.already_registered"},
	{service.ErrOpenSessionExists, "error.open_session_exists"},
	{service.ErrNoOpenSession, "error.no_open_session"},

	{service.ErrMerchantNotInScope, "error.merchant_not_in_scope"},
	{service.ErrOrderForbidden, "error.order_forbidden"},

	{service.ErrPaymentGatewayFailed, "error.payment_gateway_failed"},
	{service.ErrPaymentAmountMismatch, "error.payment_amount_mismatch"},

	{service.ErrInvalidAmount, "error.invalid_amount"},
	{service.ErrInvalidQuantity, "error.invalid_quantity"},
	{service.ErrInvalidOrderKind, "error.invalid_order_kind"},
	{service.ErrInvalidCouponInput, "error.coupon_input_invalid"},
	{service.ErrInvalidMemberInput, "error.member_input_invalid"},
	{service.ErrInvalidCheckOutTime, "error.checkout_time_invalid"},
	{service.ErrInvalidSettingValue, "error.setting_invalid"},
	{service.ErrInvalidCredentials, "error.login_invalid"},
	{service.ErrInvalidPassword, "error.password_old_invalid"},
	{service.ErrInvalidToken, "error.token_invalid"},
}

// CodeForKind 错误分类对应的响应码
func CodeForKind(kind service.Kind) int {
	switch kind {
	case service.KindInvalid:
		return response.CodeBadRequest
	case service.KindNotFound:
		return response.CodeNotFound
	case service.KindInvalidState, service.KindAlreadyProcessed:
		return response.CodeConflict
	case service.KindInsufficientResource:
		return response.CodeInsufficientResource
	case service.KindScopeViolation:
		return response.CodeForbidden
	case service.KindUpstreamFailure:
		return response.CodeUpstreamFailure
	case service.KindUnauthorized:
		return response.CodeUnauthorized
	default:
		return response.CodeInternal
	}
}

// RespondServiceError 按错误分类输出响应，未识别错误记录日志并回退到 fallbackKey
func RespondServiceError(c *gin.Context, err error, fallbackKey string) {
	kind := service.KindOf(err)
	code := CodeForKind(kind)

	if errors.Is(err, service.ErrWeakPassword) {
		if perr, ok := err.(interface {
			Key() string
			Args() []interface{}
		}); ok {
			RespondErrorWithMsg(c, code, i18n.Sprintf(i18n.ResolveLocale(c), perr.Key(), perr.Args()...), nil)
			return
		}
		RespondError(c, code, "error.password_weak", nil)
		return
	}

	for _, rule := range serviceErrorRules {
		if errors.Is(err, rule.target) {
			if kind == service.KindUpstreamFailure {
				RespondError(c, code, rule.key, err)
				return
			}
			RespondError(c, code, rule.key, nil)
			return
		}
	}
	RespondError(c, code, fallbackKey, err)
}
