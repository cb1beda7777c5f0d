package repository

import (
	"errors"

	"github.com/member-ledger/internal/models"

	"gorm.io/gorm"
)

// GoodsRepository 积分商品数据访问接口
type GoodsRepository interface {
	WithTx(tx *gorm.DB) *GormGoodsRepository
	Create(goods *models.Goods) error
	GetByID(id uint) (*models.Goods, error)
	List(page, pageSize int, onlyActive bool) ([]models.Goods, int64, error)
	DecrementStock(id uint, quantity int) (bool, error)
	IncrementStock(id uint, quantity int) error
}

// GormGoodsRepository GORM 积分商品仓储实现
type GormGoodsRepository struct {
	db *gorm.DB
}

// NewGoodsRepository 创建积分商品仓储
func NewGoodsRepository(db *gorm.DB) *GormGoodsRepository {
	return &GormGoodsRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGoodsRepository) WithTx(tx *gorm.DB) *GormGoodsRepository {
	if tx == nil {
		return r
	}
	return &GormGoodsRepository{db: tx}
}

// Create 创建商品
func (r *GormGoodsRepository) Create(goods *models.Goods) error {
	return r.db.Create(goods).Error
}

// GetByID 获取商品
func (r *GormGoodsRepository) GetByID(id uint) (*models.Goods, error) {
	if id == 0 {
		return nil, nil
	}
	var goods models.Goods
	if err := r.db.First(&goods, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &goods, nil
}

// List 分页查询商品
func (r *GormGoodsRepository) List(page, pageSize int, onlyActive bool) ([]models.Goods, int64, error) {
	query := r.db.Model(&models.Goods{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)
	var items []models.Goods
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DecrementStock 条件扣减库存，库存不足时返回 false
func (r *GormGoodsRepository) DecrementStock(id uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	result := r.db.Model(&models.Goods{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementStock 归还库存
func (r *GormGoodsRepository) IncrementStock(id uint, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return r.db.Model(&models.Goods{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
}
