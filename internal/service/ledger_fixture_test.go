package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/payment"
	"github.com/member-ledger/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubGateway struct {
	fail  error
	calls int32
}

func (g *stubGateway) Provider() string { return "stub" }

func (g *stubGateway) CreatePayment(ctx context.Context, req payment.Request) (*payment.Result, error) {
	atomic.AddInt32(&g.calls, 1)
	if g.fail != nil {
		return nil, g.fail
	}
	return &payment.Result{Provider: "stub", Token: "tok_" + req.OrderRef, TradeNo: "T" + req.OrderRef}, nil
}

type ledgerFixture struct {
	db          *gorm.DB
	gateway     *stubGateway
	members     *MemberService
	points      *PointsService
	settings    *SettingService
	coupons     *CouponService
	redeem      *CouponRedeemService
	catalog     *CatalogService
	orders      *OrderService
	enrollments *EnrollmentService
	volunteers  *VolunteerService
	reconcile   *ReconcileService
}

func setupLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 共享内存库单连接，事务在此串行；真实并发见 integration 标签下的 PostgreSQL 测试
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return newLedgerFixture(db)
}

func newLedgerFixture(db *gorm.DB) *ledgerFixture {
	memberRepo := repository.NewMemberRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	pointRepo := repository.NewPointRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	goodsRepo := repository.NewGoodsRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	volunteerRepo := repository.NewVolunteerRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	f := &ledgerFixture{db: db, gateway: &stubGateway{}}
	f.members = NewMemberService(memberRepo, membershipRepo)
	f.points = NewPointsService(pointRepo)
	f.settings = NewSettingService(settingRepo, "1")
	f.coupons = NewCouponService(couponRepo, memberRepo)
	f.redeem = NewCouponRedeemService(couponRepo, f.points, f.members, f.settings)
	f.catalog = NewCatalogService(goodsRepo, activityRepo)
	f.orders = NewOrderService(orderRepo, goodsRepo, activityRepo, memberRepo, f.members, f.points, f.gateway, nil, f.settings, 15)
	f.enrollments = NewEnrollmentService(activityRepo, memberRepo, f.points)
	f.volunteers = NewVolunteerService(volunteerRepo, f.settings, 12)
	f.reconcile = NewReconcileService(f.coupons, f.orders, f.volunteers, 100)
	return f
}

func (f *ledgerFixture) member(t *testing.T, phone string) *models.Member {
	t.Helper()
	member, err := f.members.CreateMember(phone, "tester")
	require.NoError(t, err)
	return member
}

func (f *ledgerFixture) merchant(t *testing.T, name string) *models.Merchant {
	t.Helper()
	merchant, err := f.members.CreateMerchant(name)
	require.NoError(t, err)
	return merchant
}

func (f *ledgerFixture) fund(t *testing.T, memberID uint, amount int64) {
	t.Helper()
	_, err := f.points.Credit(memberID, decimal.NewFromInt(amount), "seed")
	require.NoError(t, err)
}

func (f *ledgerFixture) balance(t *testing.T, memberID uint) decimal.Decimal {
	t.Helper()
	balance, err := f.points.GetBalance(memberID)
	require.NoError(t, err)
	return balance.Decimal
}

func (f *ledgerFixture) platformTemplate(t *testing.T, value int64, stock int, scope string, merchantIDs ...uint) *models.CouponTemplate {
	t.Helper()
	template, err := f.coupons.CreateTemplate(CreateCouponTemplateInput{
		Name:             "满减券",
		Type:             "cash",
		Value:            decimal.NewFromInt(value),
		StockQuantity:    stock,
		ScopeType:        scope,
		ScopeMerchantIDs: merchantIDs,
		SourceFrom:       "platform",
	})
	require.NoError(t, err)
	return template
}

func (f *ledgerFixture) assertLedgerConsistent(t *testing.T, memberID uint) {
	t.Helper()
	audit, err := f.points.AuditBalance(memberID)
	require.NoError(t, err)
	require.Truef(t, audit.Consistent, "balance %s != ledger sum %s", audit.Balance, audit.LedgerSum)
}

func requireKind(t *testing.T, err error, kind Kind, target error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected kind for %v", err)
	if target != nil {
		require.True(t, errors.Is(err, target), "expected %v, got %v", target, err)
	}
}
