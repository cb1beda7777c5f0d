package cache

import (
	"context"
	"fmt"
	"time"
)

const settingCacheTTL = 5 * time.Minute

// SettingSnapshot 平台设置缓存快照
type SettingSnapshot struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updated_at"`
}

func settingKey(key string) string {
	return fmt.Sprintf("setting:%s", key)
}

// GetSetting 读取设置缓存
func GetSetting(ctx context.Context, key string) (*SettingSnapshot, error) {
	var snapshot SettingSnapshot
	hit, err := GetJSON(ctx, settingKey(key), &snapshot)
	if err != nil || !hit {
		return nil, err
	}
	return &snapshot, nil
}

// SetSetting 写入设置缓存
func SetSetting(ctx context.Context, snapshot *SettingSnapshot) error {
	if snapshot == nil || snapshot.Key == "" {
		return nil
	}
	return SetJSON(ctx, settingKey(snapshot.Key), snapshot, settingCacheTTL)
}

// DelSetting 删除设置缓存
func DelSetting(ctx context.Context, key string) error {
	return Del(ctx, settingKey(key))
}
