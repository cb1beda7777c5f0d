package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/member-ledger/internal/cache"
	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// SettingService 平台设置服务
type SettingService struct {
	repo        repository.SettingRepository
	defaultRate decimal.Decimal
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository, defaultRate string) *SettingService {
	rate, err := decimal.NewFromString(strings.TrimSpace(defaultRate))
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		rate = decimal.NewFromInt(1)
	}
	return &SettingService{repo: repo, defaultRate: rate}
}

// Get 读取设置值（优先缓存）
func (s *SettingService) Get(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, nil
	}
	snapshot, err := cache.GetSetting(ctx, key)
	if err != nil {
		logger.Warnw("setting_cache_read_failed", "key", key, "error", err)
	} else if snapshot != nil {
		return snapshot.Value, true, nil
	}

	setting, err := s.repo.Get(key)
	if err != nil {
		return "", false, err
	}
	if setting == nil {
		return "", false, nil
	}
	if err := cache.SetSetting(ctx, &cache.SettingSnapshot{
		Key:       setting.Key,
		Value:     setting.Value,
		UpdatedAt: setting.UpdatedAt.Unix(),
	}); err != nil {
		logger.Warnw("setting_cache_write_failed", "key", key, "error", err)
	}
	return setting.Value, true, nil
}

// Set 写入设置值并失效缓存
func (s *SettingService) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return ErrInvalidSettingValue
	}
	if err := validateSettingValue(key, value); err != nil {
		return err
	}
	if _, err := s.repo.Upsert(key, value); err != nil {
		return err
	}
	if err := cache.DelSetting(ctx, key); err != nil {
		logger.Warnw("setting_cache_invalidate_failed", "key", key, "error", err)
	}
	return nil
}

// PointsPerCurrencyUnit 每单位金额兑换的积分
func (s *SettingService) PointsPerCurrencyUnit(ctx context.Context) (decimal.Decimal, error) {
	raw, ok, err := s.Get(ctx, constants.SettingKeyPointsPerCurrencyUnit)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return s.defaultRate, nil
	}
	rate, err := decimal.NewFromString(cast.ToString(raw))
	if err != nil || rate.IsNegative() {
		logger.Warnw("setting_points_rate_invalid", "value", raw)
		return s.defaultRate, nil
	}
	return rate, nil
}

// OrderPaymentExpire 待支付订单超时时长
func (s *SettingService) OrderPaymentExpire(ctx context.Context, defaultMinutes int) time.Duration {
	return time.Duration(s.intSetting(ctx, constants.SettingKeyOrderPaymentExpireMinutes, defaultMinutes)) * time.Minute
}

// VolunteerMaxOpen 志愿者未签退最长时长
func (s *SettingService) VolunteerMaxOpen(ctx context.Context, defaultHours int) time.Duration {
	return time.Duration(s.intSetting(ctx, constants.SettingKeyVolunteerMaxOpenHours, defaultHours)) * time.Hour
}

func (s *SettingService) intSetting(ctx context.Context, key string, fallback int) int {
	if s == nil {
		return fallback
	}
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return fallback
	}
	value, err := cast.ToIntE(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func validateSettingValue(key, value string) error {
	switch key {
	case constants.SettingKeyPointsPerCurrencyUnit:
		rate, err := cast.ToFloat64E(value)
		if err != nil || rate < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidSettingValue, key)
		}
	case constants.SettingKeyOrderPaymentExpireMinutes, constants.SettingKeyVolunteerMaxOpenHours:
		n, err := cast.ToIntE(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidSettingValue, key)
		}
	}
	return nil
}
