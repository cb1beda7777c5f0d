package models

import "time"

// Member 会员表
type Member struct {
	ID        uint      `gorm:"primarykey" json:"id"`                      // 主键
	Phone     string    `gorm:"uniqueIndex;size:32;not null" json:"phone"` // 手机号
	Nickname  string    `gorm:"size:64" json:"nickname"`                   // 昵称
	Status    string    `gorm:"index;not null" json:"status"`              // 状态（active/disabled）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                // 更新时间
}

// TableName 指定表名
func (Member) TableName() string {
	return "members"
}

// Merchant 合作商家表
type Merchant struct {
	ID        uint      `gorm:"primarykey" json:"id"`         // 主键
	Name      string    `gorm:"size:128;not null" json:"name"` // 商家名称
	Status    string    `gorm:"index;not null" json:"status"` // 状态
	CreatedAt time.Time `gorm:"index" json:"created_at"`      // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                   // 更新时间
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
