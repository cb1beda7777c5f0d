package service

import "errors"

// Kind 业务错误分类
type Kind string

const (
	KindNone                 Kind = ""
	KindInvalid              Kind = "invalid"
	KindNotFound             Kind = "not_found"
	KindInvalidState         Kind = "invalid_state"
	KindInsufficientResource Kind = "insufficient_resource"
	KindAlreadyProcessed     Kind = "already_processed"
	KindScopeViolation       Kind = "scope_violation"
	KindUpstreamFailure      Kind = "upstream_failure"
	KindUnauthorized         Kind = "unauthorized"
	KindInternal             Kind = "internal"
)

var (
	ErrMemberNotFound          = errors.New("member not found")
	ErrMerchantNotFound        = errors.New("merchant not found")
	ErrTierNotFound            = errors.New("membership tier not found")
	ErrCouponTemplateNotFound  = errors.New("coupon template not found")
	ErrCouponNotFound          = errors.New("coupon code not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrGoodsNotFound           = errors.New("goods not found")
	ErrActivityNotFound        = errors.New("activity not found")
	ErrEnrollmentNotFound      = errors.New("enrollment not found")
	ErrVolunteerRecordNotFound = errors.New("volunteer record not found")

	ErrOrderStatusInvalid      = errors.New("order status does not allow this operation")
	ErrCouponExpired           = errors.New("coupon expired")
	ErrCouponNotYetValid       = errors.New("coupon not yet valid")
	ErrCouponTemplateNotIssued = errors.New("coupon template is not approved for issuance")
	ErrCouponTemplateEnded     = errors.New("coupon template validity has ended")
	ErrTemplateAuditInvalid    = errors.New("coupon template audit already decided")
	ErrGoodsUnavailable        = errors.New("goods is not on sale")
	ErrActivityClosed          = errors.New("activity is closed")
	ErrActivityRequiresPayment = errors.New("activity requires a paid order")
	ErrTierUnavailable         = errors.New("membership tier is not purchasable")
	ErrMemberDisabled          = errors.New("member is disabled")
	ErrEnrollmentStatusInvalid = errors.New("enrollment status does not allow this operation")
	ErrVolunteerAuditInvalid   = errors.New("volunteer record is not awaiting audit")

	ErrInsufficientPoints = errors.New("insufficient points")
	ErrOutOfStock         = errors.New("coupon template out of stock")
	ErrGoodsOutOfStock    = errors.New("goods out of stock")
	ErrActivityFull       = errors.New("activity capacity reached")

	ErrCouponAlreadyUsed = errors.New("coupon already used")
	ErrAlreadyRegistered = errors.New("already registered for this activity")
	ErrOpenSessionExists = errors.New("an open volunteer session already exists")
	ErrNoOpenSession     = errors.New("no open volunteer session")

	ErrMerchantNotInScope = errors.New("merchant not authorized to redeem this coupon")
	ErrOrderForbidden     = errors.New("order belongs to another member")

	ErrPaymentGatewayFailed  = errors.New("payment gateway failure")
	ErrPaymentAmountMismatch = errors.New("payment amount mismatch")

	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInvalidOrderKind    = errors.New("unsupported order kind")
	ErrInvalidCouponInput  = errors.New("coupon template input invalid")
	ErrInvalidMemberInput  = errors.New("member input invalid")
	ErrInvalidCheckOutTime = errors.New("check-out time is before check-in time")
	ErrInvalidSettingValue = errors.New("setting value invalid")
	ErrCouponCodeExhausted = errors.New("coupon code generation exhausted")
	ErrWeakPassword        = errors.New("password does not satisfy policy")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidPassword     = errors.New("current password is incorrect")
	ErrInvalidToken        = errors.New("invalid token")
	ErrAdminNotFound       = errors.New("admin not found")
)

type kindRule struct {
	target error
	kind   Kind
}

var kindRules = []kindRule{
	{ErrMemberNotFound, KindNotFound},
	{ErrMerchantNotFound, KindNotFound},
	{ErrTierNotFound, KindNotFound},
	{ErrCouponTemplateNotFound, KindNotFound},
	{ErrCouponNotFound, KindNotFound},
	{ErrOrderNotFound, KindNotFound},
	{ErrGoodsNotFound, KindNotFound},
	{ErrActivityNotFound, KindNotFound},
	{ErrEnrollmentNotFound, KindNotFound},
	{ErrVolunteerRecordNotFound, KindNotFound},

	{ErrOrderStatusInvalid, KindInvalidState},
	{ErrCouponExpired, KindInvalidState},
	{ErrCouponNotYetValid, KindInvalidState},
	{ErrCouponTemplateNotIssued, KindInvalidState},
	{ErrCouponTemplateEnded, KindInvalidState},
	{ErrTemplateAuditInvalid, KindInvalidState},
	{ErrGoodsUnavailable, KindInvalidState},
	{ErrActivityClosed, KindInvalidState},
	{ErrActivityRequiresPayment, KindInvalidState},
	{ErrTierUnavailable, KindInvalidState},
	{ErrMemberDisabled, KindInvalidState},
	{ErrEnrollmentStatusInvalid, KindInvalidState},
	{ErrVolunteerAuditInvalid, KindInvalidState},

	{ErrInsufficientPoints, KindInsufficientResource},
	{ErrOutOfStock, KindInsufficientResource},
	{ErrGoodsOutOfStock, KindInsufficientResource},
	{ErrActivityFull, KindInsufficientResource},

	{ErrCouponAlreadyUsed, KindAlreadyProcessed},
	{ErrAlreadyRegistered, KindAlreadyProcessed},
	{ErrOpenSessionExists, KindAlreadyProcessed},
	{ErrNoOpenSession, KindAlreadyProcessed},

	{ErrMerchantNotInScope, KindScopeViolation},
	{ErrOrderForbidden, KindScopeViolation},

	{ErrPaymentGatewayFailed, KindUpstreamFailure},
	{ErrPaymentAmountMismatch, KindInvalid},

	{ErrInvalidAmount, KindInvalid},
	{ErrInvalidQuantity, KindInvalid},
	{ErrInvalidOrderKind, KindInvalid},
	{ErrInvalidCouponInput, KindInvalid},
	{ErrInvalidMemberInput, KindInvalid},
	{ErrInvalidCheckOutTime, KindInvalid},
	{ErrInvalidSettingValue, KindInvalid},
	{ErrCouponCodeExhausted, KindInternal},

	{ErrWeakPassword, KindInvalid},
	{ErrAdminNotFound, KindNotFound},
	{ErrInvalidCredentials, KindUnauthorized},
	{ErrInvalidPassword, KindUnauthorized},
	{ErrInvalidToken, KindUnauthorized},
}

// KindOf 解析错误所属分类，未识别的错误归为 internal
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, rule := range kindRules {
		if errors.Is(err, rule.target) {
			return rule.kind
		}
	}
	return KindInternal
}

// Reason 返回可读的失败原因
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, rule := range kindRules {
		if errors.Is(err, rule.target) {
			return rule.target.Error()
		}
	}
	return "internal error"
}
