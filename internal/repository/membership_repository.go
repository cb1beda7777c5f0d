package repository

import (
	"errors"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"

	"gorm.io/gorm"
)

// MembershipRepository 会员等级数据访问接口
type MembershipRepository interface {
	WithTx(tx *gorm.DB) *GormMembershipRepository
	CreateTier(tier *models.MembershipTier) error
	UpdateTier(tier *models.MembershipTier) error
	GetTierByID(id uint) (*models.MembershipTier, error)
	ListTiers(onlyActive bool) ([]models.MembershipTier, error)
	GetActiveMemberTier(memberID uint, now time.Time) (*models.MemberTier, error)
	GetMemberTier(memberID uint) (*models.MemberTier, error)
	SaveMemberTier(memberTier *models.MemberTier) error
}

// GormMembershipRepository GORM 会员等级仓储实现
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository 创建会员等级仓储
func NewMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMembershipRepository) WithTx(tx *gorm.DB) *GormMembershipRepository {
	if tx == nil {
		return r
	}
	return &GormMembershipRepository{db: tx}
}

// CreateTier 创建等级
func (r *GormMembershipRepository) CreateTier(tier *models.MembershipTier) error {
	return r.db.Create(tier).Error
}

// UpdateTier 更新等级
func (r *GormMembershipRepository) UpdateTier(tier *models.MembershipTier) error {
	return r.db.Save(tier).Error
}

// GetTierByID 获取等级
func (r *GormMembershipRepository) GetTierByID(id uint) (*models.MembershipTier, error) {
	if id == 0 {
		return nil, nil
	}
	var tier models.MembershipTier
	if err := r.db.First(&tier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

// ListTiers 查询等级列表
func (r *GormMembershipRepository) ListTiers(onlyActive bool) ([]models.MembershipTier, error) {
	query := r.db.Model(&models.MembershipTier{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var tiers []models.MembershipTier
	if err := query.Order("id asc").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// GetActiveMemberTier 获取会员当前生效等级
func (r *GormMembershipRepository) GetActiveMemberTier(memberID uint, now time.Time) (*models.MemberTier, error) {
	var memberTier models.MemberTier
	err := r.db.Preload("Tier").
		Where("member_id = ? AND status = ?", memberID, constants.MemberTierStatusActive).
		Where("expire_at IS NULL OR expire_at > ?", now).
		First(&memberTier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &memberTier, nil
}

// GetMemberTier 获取会员等级记录（不区分状态）
func (r *GormMembershipRepository) GetMemberTier(memberID uint) (*models.MemberTier, error) {
	var memberTier models.MemberTier
	if err := r.db.Preload("Tier").Where("member_id = ?", memberID).First(&memberTier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &memberTier, nil
}

// SaveMemberTier 保存会员等级
func (r *GormMembershipRepository) SaveMemberTier(memberTier *models.MemberTier) error {
	return r.db.Omit("Tier").Save(memberTier).Error
}
