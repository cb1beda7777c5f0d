package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/metrics"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	redeemRemarkPlain  = "核销成功"
	redeemLedgerRemark = "优惠券核销"
)

// PointRateSource 积分兑换比例来源
type PointRateSource interface {
	PointsPerCurrencyUnit(ctx context.Context) (decimal.Decimal, error)
}

// CouponRedeemService 商家核销服务
type CouponRedeemService struct {
	couponRepo repository.CouponRepository
	points     *PointsService
	tiers      TierLookup
	rates      PointRateSource
}

// RedeemResult 核销结果
type RedeemResult struct {
	Coupon        *models.MemberCoupon          `json:"coupon"`
	Log           *models.CouponVerificationLog `json:"log"`
	PointsAwarded models.Money                  `json:"points_awarded"`
	Rewarded      bool                          `json:"rewarded"`
}

// CouponCheckResult 核销前校验结果；已核销的券返回核销记录
type CouponCheckResult struct {
	Coupon          *models.MemberCoupon          `json:"coupon"`
	Redeemable      bool                          `json:"redeemable"`
	EstimatedPoints models.Money                  `json:"estimated_points"`
	Verification    *models.CouponVerificationLog `json:"verification,omitempty"`
}

// NewCouponRedeemService 创建核销服务
func NewCouponRedeemService(couponRepo repository.CouponRepository, points *PointsService, tiers TierLookup, rates PointRateSource) *CouponRedeemService {
	return &CouponRedeemService{
		couponRepo: couponRepo,
		points:     points,
		tiers:      tiers,
		rates:      rates,
	}
}

// Redeem 核销券码：校验范围与状态，标记已用，按会员等级返积分并写核销记录
func (s *CouponRedeemService) Redeem(ctx context.Context, code string, merchantID uint) (result *RedeemResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWorkflow("coupon_redeem", start, err) }()

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponNotFound
	}
	preview, err := s.couponRepo.GetMemberCouponByCode(code)
	if err != nil {
		return nil, err
	}
	if preview == nil {
		return nil, ErrCouponNotFound
	}
	// 等级与比例在事务外解析，事务内只使用 tx 绑定的仓储
	now := time.Now()
	tier, rate, err := s.resolveReward(ctx, preview.MemberID, now)
	if err != nil {
		return nil, err
	}

	err = s.couponRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.couponRepo.WithTx(tx)
		coupon, err := repo.GetMemberCouponByCodeForUpdate(code)
		if err != nil {
			return err
		}
		if coupon == nil {
			return ErrCouponNotFound
		}
		if err := checkRedeemable(coupon, merchantID, now); err != nil {
			return err
		}
		marked, err := repo.MarkMemberCouponUsed(coupon.ID, now)
		if err != nil {
			return err
		}
		if !marked {
			return ErrCouponAlreadyUsed
		}
		coupon.Status = constants.CouponStatusUsed
		coupon.UsedAt = &now

		reward := computeRedeemReward(coupon.Value.Decimal, rate, tier)
		remark := redeemRemarkPlain
		if reward.GreaterThan(decimal.Zero) {
			if _, err := s.points.CreditInTx(tx, PointChangeInput{
				MemberID:  coupon.MemberID,
				Amount:    reward,
				Reason:    constants.PointReasonCouponRedeem,
				Remark:    redeemLedgerRemark,
				Reference: buildCouponPointReference(coupon.ID),
			}); err != nil {
				return err
			}
			remark = fmt.Sprintf("%s，获得积分：%s", redeemRemarkPlain, reward.StringFixed(2))
		}

		log := &models.CouponVerificationLog{
			MemberCouponID: coupon.ID,
			CouponCode:     coupon.CouponCode,
			MemberID:       coupon.MemberID,
			MerchantID:     merchantID,
			PointsAwarded:  models.NewMoneyFromDecimal(reward),
			Remark:         remark,
			CreatedAt:      now,
		}
		if err := repo.CreateVerificationLog(log); err != nil {
			return err
		}
		result = &RedeemResult{
			Coupon:        coupon,
			Log:           log,
			PointsAwarded: log.PointsAwarded,
			Rewarded:      reward.GreaterThan(decimal.Zero),
		}
		return nil
	})
	if err != nil {
		logger.Warnw("coupon_redeem_failed",
			"coupon_code", code,
			"merchant_id", merchantID,
			"kind", string(KindOf(err)),
			"error", err,
		)
		return nil, err
	}
	logger.Infow("coupon_redeemed",
		"coupon_code", code,
		"merchant_id", merchantID,
		"member_id", result.Coupon.MemberID,
		"points_awarded", result.PointsAwarded.String(),
	)
	return result, nil
}

// Check 核销前预检，不修改任何数据
func (s *CouponRedeemService) Check(ctx context.Context, code string, merchantID uint) (*CouponCheckResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponNotFound
	}
	coupon, err := s.couponRepo.GetMemberCouponByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	now := time.Now()
	err = checkRedeemable(coupon, merchantID, now)
	if errors.Is(err, ErrCouponAlreadyUsed) {
		verified, logErr := s.couponRepo.GetVerificationLogByCouponID(coupon.ID)
		if logErr != nil {
			return nil, logErr
		}
		if verified == nil {
			return nil, err
		}
		return &CouponCheckResult{
			Coupon:          coupon,
			EstimatedPoints: models.ZeroMoney(),
			Verification:    verified,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	tier, rate, err := s.resolveReward(ctx, coupon.MemberID, now)
	if err != nil {
		return nil, err
	}
	return &CouponCheckResult{
		Coupon:          coupon,
		Redeemable:      true,
		EstimatedPoints: models.NewMoneyFromDecimal(computeRedeemReward(coupon.Value.Decimal, rate, tier)),
	}, nil
}

// ListVerificationLogs 查询核销记录
func (s *CouponRedeemService) ListVerificationLogs(filter repository.VerificationLogListFilter) ([]models.CouponVerificationLog, int64, error) {
	return s.couponRepo.ListVerificationLogs(filter)
}

func (s *CouponRedeemService) resolveReward(ctx context.Context, memberID uint, now time.Time) (*models.MembershipTier, decimal.Decimal, error) {
	var tier *models.MembershipTier
	if s.tiers != nil {
		found, err := s.tiers.ActiveTier(memberID, now)
		if err != nil {
			return nil, decimal.Zero, err
		}
		tier = found
	}
	if tier == nil || s.rates == nil {
		return tier, decimal.Zero, nil
	}
	rate, err := s.rates.PointsPerCurrencyUnit(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return tier, rate, nil
}

// checkRedeemable 依次校验：适用商家、过期、已使用
func checkRedeemable(coupon *models.MemberCoupon, merchantID uint, now time.Time) error {
	if !merchantInScope(coupon.ScopeType, coupon.ScopeMerchantIDs, merchantID) {
		return ErrMerchantNotInScope
	}
	switch coupon.Status {
	case constants.CouponStatusExpired:
		return ErrCouponExpired
	case constants.CouponStatusUsed:
		return ErrCouponAlreadyUsed
	}
	if coupon.ValidEnd != nil && coupon.ValidEnd.Before(now) {
		return ErrCouponExpired
	}
	if coupon.ValidFrom != nil && coupon.ValidFrom.After(now) {
		return ErrCouponNotYetValid
	}
	return nil
}

// computeRedeemReward 返还积分 = 面值 × 兑换比例 × 等级倍率，无等级时为 0
func computeRedeemReward(value, rate decimal.Decimal, tier *models.MembershipTier) decimal.Decimal {
	if tier == nil {
		return decimal.Zero
	}
	reward := value.Mul(rate).Mul(tier.PointRate.Decimal).Round(2)
	if reward.IsNegative() {
		return decimal.Zero
	}
	return reward
}
