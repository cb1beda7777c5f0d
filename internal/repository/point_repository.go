package repository

import (
	"errors"
	"strings"

	"github.com/member-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointRepository 积分数据访问接口
type PointRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPointRepository

	GetBalanceByMemberID(memberID uint) (*models.PointBalance, error)
	GetBalanceByMemberIDForUpdate(memberID uint) (*models.PointBalance, error)
	CreateBalance(balance *models.PointBalance) error
	UpdateBalance(balance *models.PointBalance) error
	CreateEntry(entry *models.PointLedgerEntry) error
	GetEntryByReference(reference string) (*models.PointLedgerEntry, error)
	ListEntries(filter PointEntryListFilter) ([]models.PointLedgerEntry, int64, error)
	SumDeltaByMemberID(memberID uint) (decimal.Decimal, error)
}

// GormPointRepository GORM 积分仓储实现
type GormPointRepository struct {
	db *gorm.DB
}

// NewPointRepository 创建积分仓储
func NewPointRepository(db *gorm.DB) *GormPointRepository {
	return &GormPointRepository{db: db}
}

// Transaction 开启事务
func (r *GormPointRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormPointRepository) WithTx(tx *gorm.DB) *GormPointRepository {
	if tx == nil {
		return r
	}
	return &GormPointRepository{db: tx}
}

// GetBalanceByMemberID 获取会员积分余额
func (r *GormPointRepository) GetBalanceByMemberID(memberID uint) (*models.PointBalance, error) {
	if memberID == 0 {
		return nil, nil
	}
	var balance models.PointBalance
	if err := r.db.Where("member_id = ?", memberID).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// GetBalanceByMemberIDForUpdate 加锁获取会员积分余额
func (r *GormPointRepository) GetBalanceByMemberIDForUpdate(memberID uint) (*models.PointBalance, error) {
	if memberID == 0 {
		return nil, nil
	}
	var balance models.PointBalance
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ?", memberID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// CreateBalance 创建积分余额，已存在时不报错也不覆盖
func (r *GormPointRepository) CreateBalance(balance *models.PointBalance) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}},
		DoNothing: true,
	}).Create(balance).Error
}

// UpdateBalance 更新积分余额
func (r *GormPointRepository) UpdateBalance(balance *models.PointBalance) error {
	return r.db.Save(balance).Error
}

// CreateEntry 写入积分流水
func (r *GormPointRepository) CreateEntry(entry *models.PointLedgerEntry) error {
	return r.db.Create(entry).Error
}

// GetEntryByReference 按幂等参考号获取流水
func (r *GormPointRepository) GetEntryByReference(reference string) (*models.PointLedgerEntry, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var entry models.PointLedgerEntry
	if err := r.db.Where("reference = ?", reference).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries 分页查询积分流水
func (r *GormPointRepository) ListEntries(filter PointEntryListFilter) ([]models.PointLedgerEntry, int64, error) {
	query := r.db.Model(&models.PointLedgerEntry{})
	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if filter.Reason != "" {
		query = query.Where("reason = ?", filter.Reason)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var entries []models.PointLedgerEntry
	if err := query.Order("id desc").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// SumDeltaByMemberID 汇总会员全部流水变动值（用于对账）
func (r *GormPointRepository) SumDeltaByMemberID(memberID uint) (decimal.Decimal, error) {
	var entries []models.PointLedgerEntry
	if err := r.db.Select("delta").Where("member_id = ?", memberID).Find(&entries).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, entry := range entries {
		sum = sum.Add(entry.Delta.Decimal)
	}
	return sum.Round(2), nil
}
