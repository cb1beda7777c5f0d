package main

import (
	"fmt"
	"time"

	"github.com/member-ledger/internal/app"
	"github.com/member-ledger/internal/config"
	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/provider"
	"github.com/member-ledger/internal/service"

	"github.com/shopspring/decimal"
)

const demoMemberPhone = "13800000001"

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := app.InitDatabase(cfg); err != nil {
		stdLog.Fatalf("Failed to init database: %v", err)
	}
	c, err := app.BuildContainer(cfg)
	if err != nil {
		stdLog.Fatalf("Failed to build container: %v", err)
	}
	defer c.Close()

	existing, err := c.MemberService.GetMemberByPhone(demoMemberPhone)
	if err != nil {
		stdLog.Fatalf("Failed to query demo member: %v", err)
	}
	if existing != nil {
		stdLog.Printf("Demo data already present, member_id=%d", existing.ID)
		return
	}

	if err := seed(c); err != nil {
		stdLog.Fatalf("Failed to seed demo data: %v", err)
	}
}

func seed(c *provider.Container) error {
	now := time.Now()

	// 会员等级
	silver, err := c.MemberService.CreateTier(service.CreateTierInput{
		Name:         "银卡会员",
		PointRate:    decimal.NewFromFloat(1.5),
		Price:        decimal.NewFromInt(99),
		DurationDays: 365,
	})
	if err != nil {
		return fmt.Errorf("create tier: %w", err)
	}
	if _, err := c.MemberService.CreateTier(service.CreateTierInput{
		Name:         "金卡会员",
		PointRate:    decimal.NewFromInt(2),
		Price:        decimal.NewFromInt(299),
		DurationDays: 365,
	}); err != nil {
		return fmt.Errorf("create tier: %w", err)
	}

	// 会员与商家
	member, err := c.MemberService.CreateMember(demoMemberPhone, "演示会员")
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	if _, err := c.MemberService.GrantTier(member.ID, silver.ID, now); err != nil {
		return fmt.Errorf("grant tier: %w", err)
	}
	if _, err := c.PointsService.Credit(member.ID, decimal.NewFromInt(500), constants.PointReasonAdminAdjust); err != nil {
		return fmt.Errorf("credit points: %w", err)
	}
	merchant, err := c.MemberService.CreateMerchant("街角咖啡")
	if err != nil {
		return fmt.Errorf("create merchant: %w", err)
	}

	// 积分商品与活动
	if _, err := c.CatalogService.CreateGoods(service.CreateGoodsInput{
		Name:          "帆布袋",
		Price:         decimal.NewFromInt(120),
		StockQuantity: 50,
	}); err != nil {
		return fmt.Errorf("create goods: %w", err)
	}
	start := now.Add(72 * time.Hour)
	end := start.Add(3 * time.Hour)
	if _, err := c.CatalogService.CreateActivity(service.CreateActivityInput{
		Name:         "周末社区读书会",
		Capacity:     30,
		SignInPoints: decimal.NewFromInt(20),
		StartAt:      &start,
		EndAt:        &end,
	}); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	if _, err := c.CatalogService.CreateActivity(service.CreateActivityInput{
		Name:     "城市徒步",
		Capacity: 20,
		Price:    decimal.NewFromInt(39),
		StartAt:  &start,
		EndAt:    &end,
	}); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	// 优惠券模板：审核通过后发放给演示会员
	validEnd := now.AddDate(0, 1, 0)
	template, err := c.CouponService.CreateTemplate(service.CreateCouponTemplateInput{
		Name:             "满 50 减 10",
		Type:             constants.CouponTypeCash,
		Value:            decimal.NewFromInt(10),
		UsageFloor:       decimal.NewFromInt(50),
		ValidFrom:        &now,
		ValidEnd:         &validEnd,
		StockQuantity:    100,
		ScopeType:        constants.CouponScopeSpecificMerchants,
		ScopeMerchantIDs: []uint{merchant.ID},
		SourceFrom:       constants.CouponSourceMerchant,
		MerchantID:       merchant.ID,
	})
	if err != nil {
		return fmt.Errorf("create coupon template: %w", err)
	}
	if _, err := c.CouponService.AuditTemplate(template.ID, true, "demo"); err != nil {
		return fmt.Errorf("audit coupon template: %w", err)
	}
	coupon, err := c.CouponService.Issue(template.ID, member.ID)
	if err != nil {
		return fmt.Errorf("issue coupon: %w", err)
	}

	memberToken, _, err := c.AuthService.GenerateMemberJWT(member)
	if err != nil {
		return fmt.Errorf("sign member token: %w", err)
	}
	merchantToken, _, err := c.AuthService.GenerateMerchantJWT(merchant)
	if err != nil {
		return fmt.Errorf("sign merchant token: %w", err)
	}

	fmt.Println("Demo data seeded")
	fmt.Printf("  member_id=%d phone=%s\n", member.ID, member.Phone)
	fmt.Printf("  merchant_id=%d name=%s\n", merchant.ID, merchant.Name)
	fmt.Printf("  coupon_code=%s\n", coupon.CouponCode)
	fmt.Printf("  member_token=%s\n", memberToken)
	fmt.Printf("  merchant_token=%s\n", merchantToken)
	return nil
}
