package models

import "time"

// VolunteerRecord 志愿者打卡记录
type VolunteerRecord struct {
	ID          uint       `gorm:"primarykey" json:"id"`               // 主键
	MemberID    uint       `gorm:"index;not null" json:"member_id"`    // 会员ID
	StartTime   time.Time  `gorm:"index;not null" json:"start_time"`   // 签到时间
	EndTime     *time.Time `json:"end_time"`                           // 签退时间
	Kind        string     `gorm:"size:16;index;not null" json:"kind"` // 记录类型（check_in/check_out）
	AuditStatus string     `gorm:"size:16;index;not null" json:"audit_status"`
	TimeOffset  int        `gorm:"not null;default:0" json:"time_offset"` // 设备时差（小时）
	Minutes     int64      `gorm:"not null;default:0" json:"minutes"`     // 已计入的服务分钟数
	OperatorID  uint       `gorm:"not null;default:0" json:"operator_id"` // 签退操作人
	Remark      string     `gorm:"size:255" json:"remark"`                // 备注
	AuditTime   *time.Time `json:"audit_time"`                            // 审核时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                            // 更新时间
}

// TableName 指定表名
func (VolunteerRecord) TableName() string {
	return "volunteer_record"
}

// VolunteerManHour 志愿服务累计时长
type VolunteerManHour struct {
	ID           uint      `gorm:"primarykey" json:"id"`                  // 主键
	MemberID     uint      `gorm:"uniqueIndex;not null" json:"member_id"` // 会员ID
	TotalMinutes int64     `gorm:"not null;default:0" json:"total_minutes"`
	CreatedAt    time.Time `json:"created_at"` // 创建时间
	UpdatedAt    time.Time `json:"updated_at"` // 更新时间
}

// TableName 指定表名
func (VolunteerManHour) TableName() string {
	return "volunteer_man_hour"
}
