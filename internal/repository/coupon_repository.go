package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCouponRepository

	CreateTemplate(template *models.CouponTemplate) error
	UpdateTemplate(template *models.CouponTemplate) error
	GetTemplateByID(id uint) (*models.CouponTemplate, error)
	ListTemplates(filter CouponTemplateListFilter) ([]models.CouponTemplate, int64, error)
	DecrementTemplateStock(id uint) (bool, error)

	CreateMemberCoupon(coupon *models.MemberCoupon) error
	GetMemberCouponByCode(code string) (*models.MemberCoupon, error)
	GetMemberCouponByCodeForUpdate(code string) (*models.MemberCoupon, error)
	CodeExists(code string) (bool, error)
	MarkMemberCouponUsed(id uint, usedAt time.Time) (bool, error)
	ExpireMemberCoupons(now time.Time) (int64, error)
	ListMemberCoupons(filter MemberCouponListFilter) ([]models.MemberCoupon, int64, error)
	ListUsableByMember(memberID uint, now time.Time) ([]models.MemberCoupon, error)

	CreateVerificationLog(log *models.CouponVerificationLog) error
	GetVerificationLogByCouponID(memberCouponID uint) (*models.CouponVerificationLog, error)
	ListVerificationLogs(filter VerificationLogListFilter) ([]models.CouponVerificationLog, int64, error)
}

// GormCouponRepository GORM 优惠券仓储实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓储
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// Transaction 开启事务
func (r *GormCouponRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// CreateTemplate 创建优惠券模板
func (r *GormCouponRepository) CreateTemplate(template *models.CouponTemplate) error {
	return r.db.Create(template).Error
}

// UpdateTemplate 更新优惠券模板
func (r *GormCouponRepository) UpdateTemplate(template *models.CouponTemplate) error {
	return r.db.Save(template).Error
}

// GetTemplateByID 获取优惠券模板
func (r *GormCouponRepository) GetTemplateByID(id uint) (*models.CouponTemplate, error) {
	if id == 0 {
		return nil, nil
	}
	var template models.CouponTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// ListTemplates 分页查询模板
func (r *GormCouponRepository) ListTemplates(filter CouponTemplateListFilter) ([]models.CouponTemplate, int64, error) {
	query := r.db.Model(&models.CouponTemplate{})
	if filter.MerchantID != 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.SourceFrom != "" {
		query = query.Where("source_from = ?", filter.SourceFrom)
	}
	if filter.AuditStatus != "" {
		query = query.Where("audit_status = ?", filter.AuditStatus)
	}
	query = applyKeywordSearch(query, filter.Search, "name")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var templates []models.CouponTemplate
	if err := query.Order("id desc").Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// DecrementTemplateStock 条件扣减模板库存，库存不足时返回 false
func (r *GormCouponRepository) DecrementTemplateStock(id uint) (bool, error) {
	result := r.db.Model(&models.CouponTemplate{}).
		Where("id = ? AND stock_quantity > 0", id).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateMemberCoupon 创建会员券
func (r *GormCouponRepository) CreateMemberCoupon(coupon *models.MemberCoupon) error {
	return r.db.Create(coupon).Error
}

// GetMemberCouponByCode 按核销码获取会员券
func (r *GormCouponRepository) GetMemberCouponByCode(code string) (*models.MemberCoupon, error) {
	return r.getMemberCouponByCode(r.db, code)
}

// GetMemberCouponByCodeForUpdate 按核销码加锁获取会员券
func (r *GormCouponRepository) GetMemberCouponByCodeForUpdate(code string) (*models.MemberCoupon, error) {
	return r.getMemberCouponByCode(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), code)
}

func (r *GormCouponRepository) getMemberCouponByCode(db *gorm.DB, code string) (*models.MemberCoupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var coupon models.MemberCoupon
	if err := db.Where("coupon_code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// CodeExists 判断核销码是否已存在
func (r *GormCouponRepository) CodeExists(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.MemberCoupon{}).Where("coupon_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkMemberCouponUsed 条件更新为已使用，只有可用状态才会被更新
func (r *GormCouponRepository) MarkMemberCouponUsed(id uint, usedAt time.Time) (bool, error) {
	result := r.db.Model(&models.MemberCoupon{}).
		Where("id = ? AND status = ?", id, constants.CouponStatusUsable).
		Updates(map[string]interface{}{
			"status":     constants.CouponStatusUsed,
			"used_at":    usedAt,
			"updated_at": usedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExpireMemberCoupons 将过期的可用券标记为已过期
func (r *GormCouponRepository) ExpireMemberCoupons(now time.Time) (int64, error) {
	result := r.db.Model(&models.MemberCoupon{}).
		Where("status = ? AND valid_end IS NOT NULL AND valid_end < ?", constants.CouponStatusUsable, now).
		Updates(map[string]interface{}{
			"status":     constants.CouponStatusExpired,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// ListMemberCoupons 分页查询会员券
func (r *GormCouponRepository) ListMemberCoupons(filter MemberCouponListFilter) ([]models.MemberCoupon, int64, error) {
	query := r.db.Model(&models.MemberCoupon{})
	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var coupons []models.MemberCoupon
	if err := query.Order("id desc").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// ListUsableByMember 查询会员当前可用的券
func (r *GormCouponRepository) ListUsableByMember(memberID uint, now time.Time) ([]models.MemberCoupon, error) {
	var coupons []models.MemberCoupon
	err := r.db.Where("member_id = ? AND status = ?", memberID, constants.CouponStatusUsable).
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_end IS NULL OR valid_end >= ?", now).
		Order("valid_end asc, id asc").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

// CreateVerificationLog 写入核销记录
func (r *GormCouponRepository) CreateVerificationLog(log *models.CouponVerificationLog) error {
	return r.db.Create(log).Error
}

// GetVerificationLogByCouponID 按会员券获取核销记录
func (r *GormCouponRepository) GetVerificationLogByCouponID(memberCouponID uint) (*models.CouponVerificationLog, error) {
	if memberCouponID == 0 {
		return nil, nil
	}
	var log models.CouponVerificationLog
	if err := r.db.Where("member_coupon_id = ?", memberCouponID).First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// ListVerificationLogs 分页查询核销记录
func (r *GormCouponRepository) ListVerificationLogs(filter VerificationLogListFilter) ([]models.CouponVerificationLog, int64, error) {
	query := r.db.Model(&models.CouponVerificationLog{})
	if filter.MerchantID != 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if code := strings.TrimSpace(filter.CouponCode); code != "" {
		query = query.Where("coupon_code = ?", code)
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

	var logs []models.CouponVerificationLog
	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
