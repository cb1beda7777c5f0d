//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(32)

	ledgerModels := []interface{}{
		&models.Member{},
		&models.PointBalance{},
		&models.PointLedgerEntry{},
		&models.CouponTemplate{},
		&models.MemberCoupon{},
		&models.Activity{},
		&models.ActivityEnrollment{},
	}
	_ = db.Migrator().DropTable(ledgerModels...)
	require.NoError(t, db.AutoMigrate(ledgerModels...))

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(ledgerModels...)
		_ = sqlDB.Close()
	})

	return db
}

func TestPostgresKeywordSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	memberRepo := NewMemberRepository(db)
	require.NoError(t, memberRepo.Create(&models.Member{Phone: "13900000001", Nickname: "Alice", Status: constants.MemberStatusActive}))
	require.NoError(t, memberRepo.Create(&models.Member{Phone: "13900000002", Nickname: "bob_100%", Status: constants.MemberStatusActive}))

	members, total, err := memberRepo.List(1, 10, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Alice", members[0].Nickname)

	_, total, err = memberRepo.List(1, 10, "100%")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	couponRepo := NewCouponRepository(db)
	require.NoError(t, couponRepo.CreateTemplate(&models.CouponTemplate{
		Name:        "Spring Cashback",
		Type:        constants.CouponTypeCash,
		Value:       models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		ScopeType:   constants.CouponScopeAllMerchants,
		AuditStatus: constants.AuditStatusPending,
		SourceFrom:  constants.CouponSourcePlatform,
	}))
	templates, total, err := couponRepo.ListTemplates(CouponTemplateListFilter{Page: 1, PageSize: 10, Search: "spring"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Spring Cashback", templates[0].Name)
}

func TestPostgresPointLedgerSumAndReference(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewPointRepository(db)

	ref := "order:1:pay"
	require.NoError(t, repo.CreateEntry(&models.PointLedgerEntry{
		MemberID: 7,
		Delta:    models.NewMoneyFromDecimal(decimal.RequireFromString("12.50")),
		Reason:   constants.PointReasonCouponRedeem,
	}))
	require.NoError(t, repo.CreateEntry(&models.PointLedgerEntry{
		MemberID:  7,
		Delta:     models.NewMoneyFromDecimal(decimal.NewFromInt(-5)),
		Reason:    constants.PointReasonOrderPay,
		Reference: &ref,
	}))

	sum, err := repo.SumDeltaByMemberID(7)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("7.50")), sum.String())

	entry, err := repo.GetEntryByReference(ref)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, constants.PointReasonOrderPay, entry.Reason)

	// 同一参考号只能入账一次
	err = repo.CreateEntry(&models.PointLedgerEntry{
		MemberID:  7,
		Delta:     models.NewMoneyFromDecimal(decimal.NewFromInt(-5)),
		Reason:    constants.PointReasonOrderPay,
		Reference: &ref,
	})
	assert.Error(t, err)
}

func TestPostgresReserveSeatStopsAtCapacity(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewActivityRepository(db)

	activity := &models.Activity{Name: "Capacity", Capacity: 2, IsActive: true}
	require.NoError(t, repo.Create(activity))

	for i := 0; i < 2; i++ {
		ok, err := repo.ReserveSeat(activity.ID)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := repo.ReserveSeat(activity.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.ReleaseSeat(activity.ID))
	reloaded, err := repo.GetByID(activity.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.EnrolledCount)
}

// raceParallel 以统一起跑线并发执行 n 次，返回成功次数
func raceParallel(t *testing.T, n int, fn func() (bool, error)) int64 {
	t.Helper()
	var won int64
	errs := make(chan error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := fn()
			if err != nil {
				errs <- err
				return
			}
			if ok {
				atomic.AddInt64(&won, 1)
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	return won
}

func TestPostgresReserveSeatConcurrent(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewActivityRepository(db)

	activity := &models.Activity{Name: "Concurrent", Capacity: 3, IsActive: true}
	require.NoError(t, repo.Create(activity))

	won := raceParallel(t, 24, func() (bool, error) { return repo.ReserveSeat(activity.ID) })
	assert.EqualValues(t, 3, won)

	reloaded, err := repo.GetByID(activity.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.EnrolledCount)
}

func TestPostgresMarkMemberCouponUsedConcurrent(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCouponRepository(db)

	coupon := &models.MemberCoupon{
		TemplateID: 1,
		Name:       "Race",
		Type:       constants.CouponTypeCash,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		CouponCode: "QRACE0001",
		MemberID:   7,
		Status:     constants.CouponStatusUsable,
		ScopeType:  constants.CouponScopeAllMerchants,
		SourceFrom: constants.CouponSourcePlatform,
	}
	require.NoError(t, repo.CreateMemberCoupon(coupon))

	won := raceParallel(t, 12, func() (bool, error) { return repo.MarkMemberCouponUsed(coupon.ID, time.Now()) })
	assert.EqualValues(t, 1, won)

	stored, err := repo.GetMemberCouponByCode(coupon.CouponCode)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, constants.CouponStatusUsed, stored.Status)
}
