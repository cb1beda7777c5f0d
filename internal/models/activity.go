package models

import "time"

// Activity 活动
type Activity struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                        // 主键
	Name          string     `gorm:"size:128;not null" json:"name"`                               // 名称
	Capacity      int        `gorm:"not null;default:0" json:"capacity"`                          // 人数上限（0 表示不限）
	EnrolledCount int        `gorm:"not null;default:0" json:"enrolled_count"`                    // 已报名人数
	Price         Money      `gorm:"type:decimal(20,2);not null;default:0" json:"price"`          // 报名费用
	SignInPoints  Money      `gorm:"type:decimal(20,2);not null;default:0" json:"sign_in_points"` // 签到奖励积分
	StartAt       *time.Time `json:"start_at"`                                                    // 开始时间
	EndAt         *time.Time `json:"end_at"`                                                      // 结束时间
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`                      // 是否开放
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                                  // 更新时间
}

// TableName 指定表名
func (Activity) TableName() string {
	return "activities"
}

// ActivityEnrollment 活动报名
type ActivityEnrollment struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                                  // 主键
	ActivityID   uint       `gorm:"uniqueIndex:idx_activity_member;not null" json:"activity_id"`           // 活动ID
	MemberID     uint       `gorm:"uniqueIndex:idx_activity_member;index;not null" json:"member_id"`       // 会员ID
	SignInStatus string     `gorm:"size:32;index;not null" json:"sign_in_status"`                          // 报名/签到状态
	FormData     string     `gorm:"type:text" json:"form_data"`                                            // 报名表单
	OrderID      *uint      `gorm:"index" json:"order_id,omitempty"`                                       // 付费报名订单
	SignInAt     *time.Time `json:"sign_in_at"`                                                            // 签到时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                               // 报名时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                            // 更新时间
}

// TableName 指定表名
func (ActivityEnrollment) TableName() string {
	return "activity_enrollment"
}
