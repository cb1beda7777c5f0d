package models

import "time"

// Setting 平台设置表（键值对存储）
type Setting struct {
	Key       string    `gorm:"primarykey;size:64" json:"key"` // 配置键
	Value     string    `gorm:"type:text" json:"value"`        // 配置值
	UpdatedAt time.Time `json:"updated_at"`                    // 更新时间
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
