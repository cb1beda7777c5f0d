package constants

// 订单类型常量
const (
	OrderKindPointGoods         = "point_goods"
	OrderKindActivityPayment    = "activity_payment"
	OrderKindMembershipPurchase = "membership_purchase"
)

// 订单状态常量
const (
	OrderStatusPendingPayment   = "pending_payment"
	OrderStatusCompleted        = "completed"
	OrderStatusCancelled        = "cancelled"
	OrderStatusRefunded         = "refunded"
	OrderStatusAwaitingShipment = "awaiting_shipment"
	OrderStatusAwaitingReceipt  = "awaiting_receipt"
)

// 订单支付方式常量
const (
	PayModeMoney  = "money"
	PayModePoints = "points"
)

// 优惠券状态常量
const (
	CouponStatusUsable  = "usable"
	CouponStatusUsed    = "used"
	CouponStatusExpired = "expired"
)

// 优惠券适用范围常量
const (
	CouponScopeAllMerchants      = "all_merchants"
	CouponScopeSpecificMerchants = "specific_merchants"
)

// 优惠券类型常量
const (
	CouponTypeCash     = "cash"
	CouponTypeDiscount = "discount"
	CouponTypeGift     = "gift"
)

// 优惠券来源常量
const (
	CouponSourceMerchant = "merchant"
	CouponSourcePlatform = "platform"
)

// 审核状态常量
const (
	AuditStatusPending  = "pending"
	AuditStatusApproved = "approved"
	AuditStatusRejected = "rejected"
)

// 活动报名签到状态常量
const (
	EnrollmentNotRegistered   = "not_registered"
	EnrollmentAwaitingPayment = "registered_awaiting_payment"
	EnrollmentRegistered      = "registered"
	EnrollmentCheckedIn       = "checked_in"
)

// 志愿者打卡记录类型常量
const (
	VolunteerRecordCheckIn  = "check_in"
	VolunteerRecordCheckOut = "check_out"
)

// 会员状态常量
const (
	MemberStatusActive   = "active"
	MemberStatusDisabled = "disabled"
)

// 会员等级状态常量
const (
	MemberTierStatusActive   = "active"
	MemberTierStatusInactive = "inactive"
)

// 积分流水类型常量
const (
	PointReasonCouponRedeem   = "coupon_redeem"
	PointReasonOrderPay       = "order_pay"
	PointReasonOrderCancel    = "order_cancel"
	PointReasonOrderRefund    = "order_refund"
	PointReasonActivitySignIn = "activity_sign_in"
	PointReasonAdminAdjust    = "admin_adjust"
)

// 平台设置键常量
const (
	SettingKeyPointsPerCurrencyUnit     = "points_per_currency_unit"
	SettingKeyOrderPaymentExpireMinutes = "order_payment_expire_minutes"
	SettingKeyVolunteerMaxOpenHours     = "volunteer_max_open_hours"
)

// 支付网关常量
const (
	PaymentProviderSandbox = "sandbox"
	PaymentProviderAlipay  = "alipay"
	PaymentProviderWechat  = "wechat"
)

// 管理员角色常量
const (
	RoleAdmin = "admin"
)

// 队列与任务常量
const (
	QueueDefault           = "default"
	QueueCritical          = "critical"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
	TaskReconcileRun       = "reconcile:run"
)
