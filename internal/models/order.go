package models

import "time"

// Order 订单表
type Order struct {
	ID             uint       `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo        string     `gorm:"uniqueIndex;size:64;not null" json:"order_no"`                  // 订单编号
	Kind           string     `gorm:"size:32;index;not null" json:"kind"`                            // 订单类型
	Status         string     `gorm:"size:32;index;not null" json:"status"`                          // 订单状态
	PayMode        string     `gorm:"size:16;not null" json:"pay_mode"`                              // 支付方式（money/points）
	Title          string     `gorm:"size:128" json:"title"`                                         // 订单标题
	Price          Money      `gorm:"type:decimal(20,2);not null;default:0" json:"price"`            // 单价
	Quantity       int        `gorm:"not null;default:1" json:"quantity"`                            // 数量
	TotalAmount    Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 总额（金额或积分）
	GoodsID        *uint      `gorm:"index" json:"goods_id,omitempty"`                               // 积分商品ID
	ActivityID     *uint      `gorm:"index" json:"activity_id,omitempty"`                            // 活动ID
	TierID         *uint      `gorm:"index" json:"tier_id,omitempty"`                                // 会员等级ID
	AddressID      *uint      `json:"address_id,omitempty"`                                          // 收货地址ID
	MemberID       uint       `gorm:"index;not null" json:"member_id"`                               // 下单会员
	PaymentToken   string     `gorm:"type:text" json:"payment_token,omitempty"`                      // 支付网关返回的客户端支付凭证
	GatewayTradeNo string     `gorm:"size:128;index" json:"gateway_trade_no,omitempty"`              // 网关交易号
	Remark         string     `gorm:"size:255" json:"remark"`                                        // 备注
	ExpiresAt      *time.Time `gorm:"index" json:"expires_at"`                                       // 支付截止时间
	PayTime        *time.Time `json:"pay_time"`                                                      // 支付时间
	CancelTime     *time.Time `json:"cancel_time"`                                                   // 取消时间
	RefundTime     *time.Time `json:"refund_time"`                                                   // 退款时间
	ShipTime       *time.Time `json:"ship_time"`                                                     // 发货时间
	ReceiveTime    *time.Time `json:"receive_time"`                                                  // 确认收货时间
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time  `json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
