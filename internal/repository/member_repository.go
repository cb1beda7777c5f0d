package repository

import (
	"errors"
	"strings"

	"github.com/member-ledger/internal/models"

	"gorm.io/gorm"
)

// MemberRepository 会员与商家数据访问接口
type MemberRepository interface {
	Create(member *models.Member) error
	GetByID(id uint) (*models.Member, error)
	GetByPhone(phone string) (*models.Member, error)
	List(page, pageSize int, search string) ([]models.Member, int64, error)
	CreateMerchant(merchant *models.Merchant) error
	GetMerchantByID(id uint) (*models.Merchant, error)
}

// GormMemberRepository GORM 会员仓储实现
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会员仓储
func NewMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// Create 创建会员
func (r *GormMemberRepository) Create(member *models.Member) error {
	return r.db.Create(member).Error
}

// GetByID 获取会员
func (r *GormMemberRepository) GetByID(id uint) (*models.Member, error) {
	if id == 0 {
		return nil, nil
	}
	var member models.Member
	if err := r.db.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// GetByPhone 按手机号获取会员
func (r *GormMemberRepository) GetByPhone(phone string) (*models.Member, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	var member models.Member
	if err := r.db.Where("phone = ?", phone).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// List 分页查询会员
func (r *GormMemberRepository) List(page, pageSize int, search string) ([]models.Member, int64, error) {
	query := r.db.Model(&models.Member{})
	query = applyKeywordSearch(query, search, "phone", "nickname")
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)
	var members []models.Member
	if err := query.Order("id desc").Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// CreateMerchant 创建商家
func (r *GormMemberRepository) CreateMerchant(merchant *models.Merchant) error {
	return r.db.Create(merchant).Error
}

// GetMerchantByID 获取商家
func (r *GormMemberRepository) GetMerchantByID(id uint) (*models.Merchant, error) {
	if id == 0 {
		return nil, nil
	}
	var merchant models.Merchant
	if err := r.db.First(&merchant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}
