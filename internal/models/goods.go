package models

import "time"

// Goods 积分商品
type Goods struct {
	ID            uint      `gorm:"primarykey" json:"id"`                               // 主键
	Name          string    `gorm:"size:128;not null" json:"name"`                      // 名称
	Price         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 兑换所需积分
	StockQuantity int       `gorm:"not null;default:0" json:"stock_quantity"`           // 库存
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`             // 是否上架
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (Goods) TableName() string {
	return "goods"
}
