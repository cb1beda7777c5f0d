package repository

import (
	"errors"
	"time"

	"github.com/member-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository 活动与报名数据访问接口
type ActivityRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormActivityRepository

	Create(activity *models.Activity) error
	GetByID(id uint) (*models.Activity, error)
	List(page, pageSize int, onlyActive bool) ([]models.Activity, int64, error)
	ReserveSeat(id uint) (bool, error)
	ReleaseSeat(id uint) error

	CreateEnrollment(enrollment *models.ActivityEnrollment) error
	GetEnrollment(activityID, memberID uint) (*models.ActivityEnrollment, error)
	GetEnrollmentForUpdate(activityID, memberID uint) (*models.ActivityEnrollment, error)
	GetEnrollmentByOrderID(orderID uint) (*models.ActivityEnrollment, error)
	DeleteEnrollment(id uint) (bool, error)
	TransitionEnrollment(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (bool, error)
	CountEnrollments(activityID uint) (int64, error)
	ListEnrollments(filter EnrollmentListFilter) ([]models.ActivityEnrollment, int64, error)
}

// GormActivityRepository GORM 活动仓储实现
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建活动仓储
func NewActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Transaction 开启事务
func (r *GormActivityRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormActivityRepository) WithTx(tx *gorm.DB) *GormActivityRepository {
	if tx == nil {
		return r
	}
	return &GormActivityRepository{db: tx}
}

// Create 创建活动
func (r *GormActivityRepository) Create(activity *models.Activity) error {
	return r.db.Create(activity).Error
}

// GetByID 获取活动
func (r *GormActivityRepository) GetByID(id uint) (*models.Activity, error) {
	if id == 0 {
		return nil, nil
	}
	var activity models.Activity
	if err := r.db.First(&activity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

// List 分页查询活动
func (r *GormActivityRepository) List(page, pageSize int, onlyActive bool) ([]models.Activity, int64, error) {
	query := r.db.Model(&models.Activity{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)
	var items []models.Activity
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ReserveSeat 条件占用名额（capacity 为 0 表示不限），名额已满时返回 false
func (r *GormActivityRepository) ReserveSeat(id uint) (bool, error) {
	result := r.db.Model(&models.Activity{}).
		Where("id = ? AND (capacity = 0 OR enrolled_count < capacity)", id).
		Update("enrolled_count", gorm.Expr("enrolled_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseSeat 释放名额
func (r *GormActivityRepository) ReleaseSeat(id uint) error {
	return r.db.Model(&models.Activity{}).
		Where("id = ? AND enrolled_count > 0", id).
		Update("enrolled_count", gorm.Expr("enrolled_count - ?", 1)).Error
}

// CreateEnrollment 创建报名记录
func (r *GormActivityRepository) CreateEnrollment(enrollment *models.ActivityEnrollment) error {
	return r.db.Create(enrollment).Error
}

// GetEnrollment 获取会员在活动下的报名记录
func (r *GormActivityRepository) GetEnrollment(activityID, memberID uint) (*models.ActivityEnrollment, error) {
	return r.firstEnrollment(r.db, "activity_id = ? AND member_id = ?", activityID, memberID)
}

// GetEnrollmentForUpdate 加锁获取报名记录
func (r *GormActivityRepository) GetEnrollmentForUpdate(activityID, memberID uint) (*models.ActivityEnrollment, error) {
	return r.firstEnrollment(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), "activity_id = ? AND member_id = ?", activityID, memberID)
}

// GetEnrollmentByOrderID 按订单获取报名记录
func (r *GormActivityRepository) GetEnrollmentByOrderID(orderID uint) (*models.ActivityEnrollment, error) {
	return r.firstEnrollment(r.db, "order_id = ?", orderID)
}

func (r *GormActivityRepository) firstEnrollment(db *gorm.DB, cond string, args ...interface{}) (*models.ActivityEnrollment, error) {
	var enrollment models.ActivityEnrollment
	if err := db.Where(cond, args...).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

// DeleteEnrollment 删除报名记录
func (r *GormActivityRepository) DeleteEnrollment(id uint) (bool, error) {
	result := r.db.Delete(&models.ActivityEnrollment{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TransitionEnrollment 条件更新报名状态
func (r *GormActivityRepository) TransitionEnrollment(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{
		"sign_in_status": toStatus,
		"updated_at":     time.Now(),
	}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.ActivityEnrollment{}).
		Where("id = ? AND sign_in_status IN ?", id, fromStatuses).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountEnrollments 统计活动报名人数
func (r *GormActivityRepository) CountEnrollments(activityID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.ActivityEnrollment{}).Where("activity_id = ?", activityID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListEnrollments 分页查询报名记录
func (r *GormActivityRepository) ListEnrollments(filter EnrollmentListFilter) ([]models.ActivityEnrollment, int64, error) {
	query := r.db.Model(&models.ActivityEnrollment{})
	if filter.ActivityID != 0 {
		query = query.Where("activity_id = ?", filter.ActivityID)
	}
	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if filter.SignInStatus != "" {
		query = query.Where("sign_in_status = ?", filter.SignInStatus)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	var items []models.ActivityEnrollment
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
