package models

import (
	"time"

	"gorm.io/gorm"
)

// CouponTemplate 优惠券模板
type CouponTemplate struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                        // 主键
	Name             string         `gorm:"size:128;not null" json:"name"`                               // 名称
	Type             string         `gorm:"size:32;not null" json:"type"`                                // 类型（cash/discount/gift）
	Value            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"value"`          // 面值
	UsageFloor       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"usage_floor"`    // 使用门槛
	Rules            string         `gorm:"type:text" json:"rules"`                                      // 使用规则
	ValidFrom        *time.Time     `gorm:"index" json:"valid_from"`                                     // 生效时间
	ValidEnd         *time.Time     `gorm:"index" json:"valid_end"`                                      // 失效时间
	StockQuantity    int            `gorm:"not null;default:0" json:"stock_quantity"`                    // 剩余库存
	ScopeType        string         `gorm:"size:32;not null" json:"scope_type"`                          // 适用范围
	ScopeMerchantIDs string         `gorm:"type:text" json:"scope_merchant_ids"`                         // 适用商家ID集合（JSON数组）
	AuditStatus      string         `gorm:"size:16;index;not null" json:"audit_status"`                  // 审核状态
	AuditRemark      string         `gorm:"size:255" json:"audit_remark"`                                // 审核备注
	SourceFrom       string         `gorm:"size:16;index;not null" json:"source_from"`                   // 来源（merchant/platform）
	MerchantID       uint           `gorm:"index;not null;default:0" json:"merchant_id"`                 // 发券商家（平台券为 0）
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (CouponTemplate) TableName() string {
	return "coupon_template"
}

// MemberCoupon 会员持有的优惠券（发放时快照模板字段）
type MemberCoupon struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                     // 主键
	TemplateID       uint       `gorm:"index;not null" json:"template_id"`                        // 模板ID
	Name             string     `gorm:"size:128;not null" json:"name"`                            // 名称快照
	Type             string     `gorm:"size:32;not null" json:"type"`                             // 类型快照
	Value            Money      `gorm:"type:decimal(20,2);not null;default:0" json:"value"`       // 面值快照
	UsageFloor       Money      `gorm:"type:decimal(20,2);not null;default:0" json:"usage_floor"` // 门槛快照
	Rules            string     `gorm:"type:text" json:"rules"`                                   // 规则快照
	ValidFrom        *time.Time `json:"valid_from"`                                               // 生效时间快照
	ValidEnd         *time.Time `gorm:"index" json:"valid_end"`                                   // 失效时间快照
	CouponCode       string     `gorm:"uniqueIndex;size:64;not null" json:"coupon_code"`          // 核销码
	MemberID         uint       `gorm:"index;not null" json:"member_id"`                          // 会员ID
	Status           string     `gorm:"size:16;index;not null" json:"status"`                     // 状态
	ScopeType        string     `gorm:"size:32;not null" json:"scope_type"`                       // 适用范围快照
	ScopeMerchantIDs string     `gorm:"type:text" json:"scope_merchant_ids"`                      // 适用商家快照
	SourceFrom       string     `gorm:"size:16;not null" json:"source_from"`                      // 来源快照
	MerchantID       uint       `gorm:"not null;default:0" json:"merchant_id"`                    // 发券商家快照
	UsedAt           *time.Time `json:"used_at"`                                                  // 核销时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                  // 领取时间
	UpdatedAt        time.Time  `json:"updated_at"`                                               // 更新时间
}

// TableName 指定表名
func (MemberCoupon) TableName() string {
	return "member_coupon"
}

// CouponVerificationLog 优惠券核销记录
type CouponVerificationLog struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	MemberCouponID uint      `gorm:"uniqueIndex;not null" json:"member_coupon_id"`                 // 会员券ID
	CouponCode     string    `gorm:"size:64;index;not null" json:"coupon_code"`                    // 核销码
	MemberID       uint      `gorm:"index;not null" json:"member_id"`                              // 会员ID
	MerchantID     uint      `gorm:"index;not null" json:"merchant_id"`                            // 核销商家
	PointsAwarded  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"points_awarded"` // 返还积分
	Remark         string    `gorm:"size:255" json:"remark"`                                       // 备注
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 核销时间
}

// TableName 指定表名
func (CouponVerificationLog) TableName() string {
	return "coupon_verification_log"
}
