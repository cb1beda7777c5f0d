package i18n

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":                "请求参数错误",
		"error.unauthorized":               "未授权",
		"error.forbidden":                  "无权访问",
		"error.fetch_failed":               "获取数据失败",
		"error.save_failed":                "保存失败",
		"error.login_failed":               "登录失败",
		"error.login_invalid":              "用户名或密码错误",
		"error.login_too_many":             "登录尝试过于频繁，请 %d 秒后重试",
		"error.rate_limited":               "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":     "限流服务暂不可用",
		"error.redeem_too_many":            "核销过于频繁，请 %d 秒后重试",
		"error.auth_header_missing":        "缺少 Authorization 请求头",
		"error.auth_header_invalid":        "Authorization 格式错误",
		"error.token_invalid":              "令牌无效或已过期",
		"error.token_issue_failed":         "签发令牌失败",
		"error.jwt_secret_missing":         "未配置 JWT 密钥",
		"error.admin_id_invalid":           "管理员 ID 无效",
		"error.admin_id_type_invalid":      "管理员 ID 类型错误",
		"error.admin_not_found":            "管理员不存在",
		"error.admin_username_invalid":     "管理员用户名不合法",
		"error.admin_username_exists":      "管理员用户名已存在",
		"error.admin_create_failed":        "创建管理员失败",
		"error.builtin_role_immutable":     "预置角色不可修改",
		"error.password_old_invalid":       "原密码错误",
		"error.password_weak":              "密码强度不足",
		"error.password_min_length":        "密码长度不能少于 %d 位",
		"error.password_require_upper":     "密码需包含大写字母",
		"error.password_require_lower":     "密码需包含小写字母",
		"error.password_require_number":    "密码需包含数字",
		"error.password_require_special":   "密码需包含特殊字符",
		"error.member_id_invalid":          "会员 ID 无效",
		"error.member_id_type_invalid":     "会员 ID 类型错误",
		"error.member_not_found":           "会员不存在",
		"error.member_disabled":            "会员已停用",
		"error.member_input_invalid":       "会员信息不合法",
		"error.member_phone_exists":        "手机号已被注册",
		"error.merchant_id_invalid":        "商家 ID 无效",
		"error.merchant_id_type_invalid":   "商家 ID 类型错误",
		"error.merchant_not_found":         "商家不存在",
		"error.merchant_not_in_scope":      "该商家不在优惠券适用范围内",
		"error.tier_not_found":             "会员等级不存在",
		"error.tier_unavailable":           "会员等级暂不可购买",
		"error.insufficient_points":        "积分不足",
		"error.invalid_amount":             "金额或积分数值无效",
		"error.points_adjust_failed":       "积分调整失败",
		"error.coupon_not_found":           "优惠券不存在",
		"error.coupon_already_used":        "优惠券已使用",
		"error.coupon_expired":             "优惠券已过期",
		"error.coupon_not_yet_valid":       "优惠券尚未生效",
		"error.coupon_out_of_stock":        "优惠券已领完",
		"error.coupon_input_invalid":       "优惠券参数不合法",
		"error.coupon_issue_failed":        "发放优惠券失败",
		"error.coupon_receiver_required":   "请指定领取会员",
		"error.coupon_template_not_found":  "优惠券模板不存在",
		"error.coupon_template_not_issued": "优惠券模板未审核通过",
		"error.coupon_template_ended":      "优惠券活动已结束",
		"error.template_audit_invalid":     "优惠券模板当前状态不可审核",
		"error.redeem_failed":              "核销失败",
		"error.goods_not_found":            "商品不存在",
		"error.goods_unavailable":          "商品已下架",
		"error.goods_out_of_stock":         "商品库存不足",
		"error.invalid_quantity":           "购买数量无效",
		"error.invalid_order_kind":         "订单类型无效",
		"error.order_not_found":            "订单不存在",
		"error.order_forbidden":            "无权访问该订单",
		"error.order_status_invalid":       "订单状态不允许该操作",
		"error.order_create_failed":        "创建订单失败",
		"error.order_cancel_failed":        "取消订单失败",
		"error.order_update_failed":        "更新订单失败",
		"error.order_refund_failed":        "订单退款失败",
		"error.payment_gateway_failed":     "支付渠道异常",
		"error.payment_amount_mismatch":    "支付金额与订单不一致",
		"error.activity_not_found":         "活动不存在",
		"error.activity_closed":            "活动已结束报名",
		"error.activity_full":              "活动名额已满",
		"error.activity_requires_payment":  "该活动需通过订单支付报名",
		"error.already_registered":         "已报名该活动",
		"error.enrollment_not_found":       "报名记录不存在",
		"error.enrollment_status_invalid":  "报名状态不允许该操作",
		"error.enroll_failed":              "报名失败",
		"error.sign_in_failed":             "签到失败",
		"error.open_session_exists":        "存在未签退的志愿记录",
		"error.no_open_session":            "没有未签退的志愿记录",
		"error.checkout_time_invalid":      "签退时间无效",
		"error.volunteer_record_not_found": "志愿记录不存在",
		"error.volunteer_audit_invalid":    "志愿记录当前状态不可审核",
		"error.volunteer_failed":           "志愿服务操作失败",
		"error.setting_not_found":          "设置项不存在",
		"error.setting_invalid":            "设置值不合法",
		"error.reconcile_enqueue_failed":   "对账任务入队失败",
	},
	LocaleEnUS: {
		"error.bad_request":                "Invalid request parameters",
		"error.unauthorized":               "Unauthorized",
		"error.forbidden":                  "Forbidden",
		"error.fetch_failed":               "Failed to fetch data",
		"error.save_failed":                "Failed to save",
		"error.login_failed":               "Login failed",
		"error.login_invalid":              "Invalid username or password",
		"error.login_too_many":             "Too many login attempts, retry in %d seconds",
		"error.rate_limited":               "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":     "Rate limiter unavailable",
		"error.redeem_too_many":            "Too many redemptions, retry in %d seconds",
		"error.auth_header_missing":        "Missing Authorization header",
		"error.auth_header_invalid":        "Malformed Authorization header",
		"error.token_invalid":              "Token is invalid or expired",
		"error.token_issue_failed":         "Failed to issue token",
		"error.jwt_secret_missing":         "JWT secret is not configured",
		"error.admin_id_invalid":           "Invalid admin ID",
		"error.admin_id_type_invalid":      "Invalid admin ID type",
		"error.admin_not_found":            "Admin not found",
		"error.admin_username_invalid":     "Invalid admin username",
		"error.admin_username_exists":      "Admin username already exists",
		"error.admin_create_failed":        "Failed to create admin",
		"error.builtin_role_immutable":     "Builtin roles cannot be modified",
		"error.password_old_invalid":       "Current password is incorrect",
		"error.password_weak":              "Password is too weak",
		"error.password_min_length":        "Password must be at least %d characters",
		"error.password_require_upper":     "Password must contain an uppercase letter",
		"error.password_require_lower":     "Password must contain a lowercase letter",
		"error.password_require_number":    "Password must contain a digit",
		"error.password_require_special":   "Password must contain a special character",
		"error.member_id_invalid":          "Invalid member ID",
		"error.member_id_type_invalid":     "Invalid member ID type",
		"error.member_not_found":           "Member not found",
		"error.member_disabled":            "Member is disabled",
		"error.member_input_invalid":       "Invalid member data",
		"error.member_phone_exists":        "Phone number already registered",
		"error.merchant_id_invalid":        "Invalid merchant ID",
		"error.merchant_id_type_invalid":   "Invalid merchant ID type",
		"error.merchant_not_found":         "Merchant not found",
		"error.merchant_not_in_scope":      "Merchant is not in the coupon scope",
		"error.tier_not_found":             "Tier not found",
		"error.tier_unavailable":           "Tier is not available",
		"error.insufficient_points":        "Insufficient points",
		"error.invalid_amount":             "Invalid amount",
		"error.points_adjust_failed":       "Failed to adjust points",
		"error.coupon_not_found":           "Coupon not found",
		"error.coupon_already_used":        "Coupon already used",
		"error.coupon_expired":             "Coupon expired",
		"error.coupon_not_yet_valid":       "Coupon is not yet valid",
		"error.coupon_out_of_stock":        "Coupon stock exhausted",
		"error.coupon_input_invalid":       "Invalid coupon data",
		"error.coupon_issue_failed":        "Failed to issue coupon",
		"error.coupon_receiver_required":   "Coupon receiver is required",
		"error.coupon_template_not_found":  "Coupon template not found",
		"error.coupon_template_not_issued": "Coupon template is not approved",
		"error.coupon_template_ended":      "Coupon template has ended",
		"error.template_audit_invalid":     "Coupon template cannot be audited in its current state",
		"error.redeem_failed":              "Redemption failed",
		"error.goods_not_found":            "Goods not found",
		"error.goods_unavailable":          "Goods unavailable",
		"error.goods_out_of_stock":         "Goods out of stock",
		"error.invalid_quantity":           "Invalid quantity",
		"error.invalid_order_kind":         "Invalid order kind",
		"error.order_not_found":            "Order not found",
		"error.order_forbidden":            "No access to this order",
		"error.order_status_invalid":       "Order status does not allow this operation",
		"error.order_create_failed":        "Failed to create order",
		"error.order_cancel_failed":        "Failed to cancel order",
		"error.order_update_failed":        "Failed to update order",
		"error.order_refund_failed":        "Failed to refund order",
		"error.payment_gateway_failed":     "Payment gateway failure",
		"error.payment_amount_mismatch":    "Payment amount does not match the order",
		"error.activity_not_found":         "Activity not found",
		"error.activity_closed":            "Activity is closed",
		"error.activity_full":              "Activity is full",
		"error.activity_requires_payment":  "Activity requires payment through an order",
		"error.already_registered":         "Already registered",
		"error.enrollment_not_found":       "Enrollment not found",
		"error.enrollment_status_invalid":  "Enrollment status does not allow this operation",
		"error.enroll_failed":              "Enrollment failed",
		"error.sign_in_failed":             "Sign-in failed",
		"error.open_session_exists":        "An open volunteer session already exists",
		"error.no_open_session":            "No open volunteer session",
		"error.checkout_time_invalid":      "Invalid check-out time",
		"error.volunteer_record_not_found": "Volunteer record not found",
		"error.volunteer_audit_invalid":    "Volunteer record cannot be audited in its current state",
		"error.volunteer_failed":           "Volunteer operation failed",
		"error.setting_not_found":          "Setting not found",
		"error.setting_invalid":            "Invalid setting value",
		"error.reconcile_enqueue_failed":   "Failed to enqueue reconciliation",
	},
}
