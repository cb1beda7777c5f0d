package models

import "time"

// MembershipTier 会员等级
type MembershipTier struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                       // 主键
	Name         string    `gorm:"size:64;not null" json:"name"`                               // 等级名称
	PointRate    Money     `gorm:"type:decimal(20,2);not null;default:1" json:"point_rate"`    // 积分倍率
	Price        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`         // 购买价格
	DurationDays int       `gorm:"not null;default:365" json:"duration_days"`                  // 有效天数
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`                     // 是否可购买
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                                 // 更新时间
}

// TableName 指定表名
func (MembershipTier) TableName() string {
	return "membership_tiers"
}

// MemberTier 会员当前等级
type MemberTier struct {
	ID        uint       `gorm:"primarykey" json:"id"`                // 主键
	MemberID  uint       `gorm:"uniqueIndex;not null" json:"member_id"` // 会员ID
	TierID    uint       `gorm:"index;not null" json:"tier_id"`       // 等级ID
	Status    string     `gorm:"index;not null" json:"status"`        // 状态（active/inactive）
	ExpireAt  *time.Time `gorm:"index" json:"expire_at"`              // 过期时间（为空表示长期有效）
	CreatedAt time.Time  `json:"created_at"`                          // 创建时间
	UpdatedAt time.Time  `json:"updated_at"`                          // 更新时间

	Tier *MembershipTier `gorm:"foreignKey:TierID" json:"tier,omitempty"` // 等级详情
}

// TableName 指定表名
func (MemberTier) TableName() string {
	return "member_tiers"
}
