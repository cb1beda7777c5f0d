package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestIssueUntilOutOfStock(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000001")
	template := f.platformTemplate(t, 20, 1, constants.CouponScopeAllMerchants)

	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.CouponStatusUsable, coupon.Status)
	require.True(t, strings.HasPrefix(coupon.CouponCode, "Q"))

	reloaded, err := f.coupons.GetTemplate(template.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.StockQuantity)

	_, err = f.coupons.Issue(template.ID, member.ID)
	requireKind(t, err, KindInsufficientResource, ErrOutOfStock)
}

func TestIssueSnapshotsTemplateTerms(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000002")
	template := f.platformTemplate(t, 20, 3, constants.CouponScopeAllMerchants)

	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)

	template.Value = models.NewMoneyFromInt(999)
	template.Name = "改名后的券"
	require.NoError(t, f.db.Save(template).Error)

	var stored models.MemberCoupon
	require.NoError(t, f.db.First(&stored, coupon.ID).Error)
	require.Equal(t, "20.00", stored.Value.String())
	require.Equal(t, "满减券", stored.Name)
}

func TestIssueRequiresApprovedTemplate(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000003")
	merchant := f.merchant(t, "咖啡店")
	template, err := f.coupons.CreateTemplate(CreateCouponTemplateInput{
		Name:          "商家券",
		Type:          constants.CouponTypeCash,
		Value:         decimal.NewFromInt(5),
		StockQuantity: 10,
		SourceFrom:    constants.CouponSourceMerchant,
		MerchantID:    merchant.ID,
	})
	require.NoError(t, err)
	require.Equal(t, constants.AuditStatusPending, template.AuditStatus)

	_, err = f.coupons.Issue(template.ID, member.ID)
	requireKind(t, err, KindInvalidState, ErrCouponTemplateNotIssued)

	_, err = f.coupons.AuditTemplate(template.ID, true, "ok")
	require.NoError(t, err)
	_, err = f.coupons.AuditTemplate(template.ID, false, "again")
	requireKind(t, err, KindInvalidState, ErrTemplateAuditInvalid)

	_, err = f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)
}

func TestIssueByPhone(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000004")
	template := f.platformTemplate(t, 8, 2, constants.CouponScopeAllMerchants)

	coupon, err := f.coupons.IssueByPhone(template.ID, " 13900000004 ")
	require.NoError(t, err)
	require.Equal(t, member.ID, coupon.MemberID)

	_, err = f.coupons.IssueByPhone(template.ID, "10000000000")
	requireKind(t, err, KindNotFound, ErrMemberNotFound)
}

func TestCreateTemplateValidation(t *testing.T) {
	f := setupLedgerFixture(t)
	cases := map[string]CreateCouponTemplateInput{
		"missing name":      {Type: "cash", SourceFrom: "platform"},
		"unknown type":      {Name: "x", Type: "voucher", SourceFrom: "platform"},
		"negative stock":    {Name: "x", Type: "cash", SourceFrom: "platform", StockQuantity: -1},
		"specific no ids":   {Name: "x", Type: "cash", SourceFrom: "platform", ScopeType: constants.CouponScopeSpecificMerchants},
		"merchant no owner": {Name: "x", Type: "cash", SourceFrom: "merchant"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.coupons.CreateTemplate(input)
			requireKind(t, err, KindInvalid, ErrInvalidCouponInput)
		})
	}
}

// 无范围限制、无会员等级：核销成功、不返积分、恰好一条核销记录
func TestIssueRedeemRoundTrip(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000010")
	merchant := f.merchant(t, "书店")
	template := f.platformTemplate(t, 30, 5, constants.CouponScopeAllMerchants)
	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)

	result, err := f.redeem.Redeem(context.Background(), coupon.CouponCode, merchant.ID)
	require.NoError(t, err)
	require.False(t, result.Rewarded)
	require.Equal(t, constants.CouponStatusUsed, result.Coupon.Status)
	require.Equal(t, redeemRemarkPlain, result.Log.Remark)
	require.True(t, f.balance(t, member.ID).IsZero())

	logs, total, err := f.redeem.ListVerificationLogs(repository.VerificationLogListFilter{MemberID: member.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, merchant.ID, logs[0].MerchantID)

	_, err = f.redeem.Redeem(context.Background(), coupon.CouponCode, merchant.ID)
	requireKind(t, err, KindAlreadyProcessed, ErrCouponAlreadyUsed)
	_, total, err = f.redeem.ListVerificationLogs(repository.VerificationLogListFilter{MemberID: member.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestRedeemCreditsTieredReward(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13900000011")
	merchant := f.merchant(t, "超市")
	tier, err := f.members.CreateTier(CreateTierInput{
		Name:         "金卡",
		PointRate:    decimal.RequireFromString("1.5"),
		Price:        decimal.NewFromInt(99),
		DurationDays: 30,
	})
	require.NoError(t, err)
	_, err = f.members.GrantTier(member.ID, tier.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.settings.Set(ctx, constants.SettingKeyPointsPerCurrencyUnit, "2"))

	template := f.platformTemplate(t, 10, 1, constants.CouponScopeAllMerchants)
	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)

	check, err := f.redeem.Check(ctx, coupon.CouponCode, merchant.ID)
	require.NoError(t, err)
	require.True(t, check.Redeemable)
	require.Nil(t, check.Verification)
	require.Equal(t, "30.00", check.EstimatedPoints.String())

	result, err := f.redeem.Redeem(ctx, coupon.CouponCode, merchant.ID)
	require.NoError(t, err)
	require.True(t, result.Rewarded)
	require.Equal(t, "30.00", result.PointsAwarded.String())
	require.Equal(t, "核销成功，获得积分：30.00", result.Log.Remark)
	require.True(t, f.balance(t, member.ID).Equal(decimal.NewFromInt(30)))
	f.assertLedgerConsistent(t, member.ID)

	// 已核销的券预检时返回核销记录
	check, err = f.redeem.Check(ctx, coupon.CouponCode, merchant.ID)
	require.NoError(t, err)
	require.False(t, check.Redeemable)
	require.NotNil(t, check.Verification)
	require.Equal(t, result.Log.ID, check.Verification.ID)
	require.Equal(t, merchant.ID, check.Verification.MerchantID)
	require.True(t, check.EstimatedPoints.IsZero())
}

func TestRedeemExpiredTierGivesNoReward(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000012")
	merchant := f.merchant(t, "花店")
	tier, err := f.members.CreateTier(CreateTierInput{Name: "银卡", PointRate: decimal.NewFromInt(2), DurationDays: 1})
	require.NoError(t, err)
	_, err = f.members.GrantTier(member.ID, tier.ID, time.Now().AddDate(0, 0, -3))
	require.NoError(t, err)

	template := f.platformTemplate(t, 10, 1, constants.CouponScopeAllMerchants)
	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)

	result, err := f.redeem.Redeem(context.Background(), coupon.CouponCode, merchant.ID)
	require.NoError(t, err)
	require.False(t, result.Rewarded)
	require.True(t, f.balance(t, member.ID).IsZero())
}

func TestRedeemRejectsMerchantOutOfScope(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000013")
	allowed := f.merchant(t, "指定商家")
	other := f.merchant(t, "其他商家")
	template := f.platformTemplate(t, 10, 1, constants.CouponScopeSpecificMerchants, allowed.ID)
	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)

	_, err = f.redeem.Redeem(context.Background(), coupon.CouponCode, other.ID)
	requireKind(t, err, KindScopeViolation, ErrMerchantNotInScope)

	var stored models.MemberCoupon
	require.NoError(t, f.db.First(&stored, coupon.ID).Error)
	require.Equal(t, constants.CouponStatusUsable, stored.Status)

	usable, err := f.coupons.ListUsableForMerchant(member.ID, other.ID)
	require.NoError(t, err)
	require.Empty(t, usable)

	_, err = f.redeem.Redeem(context.Background(), coupon.CouponCode, allowed.ID)
	require.NoError(t, err)
}

func TestRedeemUnknownAndExpiredCodes(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000014")
	merchant := f.merchant(t, "面包店")

	_, err := f.redeem.Redeem(context.Background(), "QNOPE", merchant.ID)
	requireKind(t, err, KindNotFound, ErrCouponNotFound)
	_, err = f.redeem.Redeem(context.Background(), "  ", merchant.ID)
	requireKind(t, err, KindNotFound, ErrCouponNotFound)

	past := time.Now().Add(-time.Hour)
	template, err := f.coupons.CreateTemplate(CreateCouponTemplateInput{
		Name:          "限时券",
		Type:          constants.CouponTypeCash,
		Value:         decimal.NewFromInt(5),
		StockQuantity: 2,
		SourceFrom:    constants.CouponSourcePlatform,
	})
	require.NoError(t, err)
	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.MemberCoupon{}).Where("id = ?", coupon.ID).Update("valid_end", past).Error)

	expired, err := f.coupons.ExpireStale(time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, expired)

	_, err = f.redeem.Redeem(context.Background(), coupon.CouponCode, merchant.ID)
	requireKind(t, err, KindInvalidState, ErrCouponExpired)
}

func TestRedeemConcurrentOnlyOneSucceeds(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13900000015")
	merchant := f.merchant(t, "便利店")
	template := f.platformTemplate(t, 10, 1, constants.CouponScopeAllMerchants)
	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.redeem.Redeem(context.Background(), coupon.CouponCode, merchant.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.Equal(t, KindAlreadyProcessed, KindOf(err))
	}
	require.Equal(t, 1, succeeded)

	var logs int64
	require.NoError(t, f.db.Model(&models.CouponVerificationLog{}).Where("member_coupon_id = ?", coupon.ID).Count(&logs).Error)
	require.EqualValues(t, 1, logs)
}

func TestMerchantInScope(t *testing.T) {
	require.True(t, merchantInScope(constants.CouponScopeAllMerchants, "", 9))
	require.True(t, merchantInScope(constants.CouponScopeSpecificMerchants, "[1,9]", 9))
	require.False(t, merchantInScope(constants.CouponScopeSpecificMerchants, "[1,2]", 9))
	require.False(t, merchantInScope(constants.CouponScopeSpecificMerchants, "", 9))
}

func TestComputeRedeemReward(t *testing.T) {
	tier := &models.MembershipTier{PointRate: models.NewMoneyFromDecimal(decimal.RequireFromString("1.25"))}
	reward := computeRedeemReward(decimal.RequireFromString("9.99"), decimal.NewFromInt(1), tier)
	require.Equal(t, "12.49", reward.StringFixed(2))
	require.True(t, computeRedeemReward(decimal.NewFromInt(10), decimal.NewFromInt(1), nil).IsZero())
}
