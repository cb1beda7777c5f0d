package models

import "time"

// PointBalance 会员积分余额
type PointBalance struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                  // 主键
	MemberID  uint      `gorm:"uniqueIndex;not null" json:"member_id"`                 // 会员ID
	Balance   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // 当前余额
	CreatedAt time.Time `json:"created_at"`                                            // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (PointBalance) TableName() string {
	return "point_balance"
}

// PointLedgerEntry 积分流水（只追加）
type PointLedgerEntry struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                   // 主键
	MemberID      uint      `gorm:"index;not null" json:"member_id"`                        // 会员ID
	Delta         Money     `gorm:"type:decimal(20,2);not null" json:"delta"`               // 变动值（带符号）
	BalanceBefore Money     `gorm:"type:decimal(20,2);not null" json:"balance_before"`      // 变动前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,2);not null" json:"balance_after"`       // 变动后余额
	Reason        string    `gorm:"size:32;index;not null" json:"reason"`                   // 变动类型
	Remark        string    `gorm:"size:255" json:"remark"`                                 // 描述
	Reference     *string   `gorm:"size:128;uniqueIndex" json:"reference,omitempty"`        // 幂等参考号（可空）
	OrderID       *uint     `gorm:"index" json:"order_id,omitempty"`                        // 关联订单
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                // 创建时间
}

// TableName 指定表名
func (PointLedgerEntry) TableName() string {
	return "point_ledger"
}
