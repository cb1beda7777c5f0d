package repository

import (
	"errors"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VolunteerRepository 志愿者打卡数据访问接口
type VolunteerRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormVolunteerRepository

	CreateRecord(record *models.VolunteerRecord) error
	GetRecordByID(id uint) (*models.VolunteerRecord, error)
	GetRecordByIDForUpdate(id uint) (*models.VolunteerRecord, error)
	GetOpenRecord(memberID uint) (*models.VolunteerRecord, error)
	CloseRecord(id uint, updates map[string]interface{}) (bool, error)
	UpdateRecordAudit(id uint, fromAudit string, updates map[string]interface{}) (bool, error)
	ListOpenRecords(limit int) ([]models.VolunteerRecord, error)
	ListRecords(filter VolunteerRecordListFilter) ([]models.VolunteerRecord, int64, error)

	AddManHour(memberID uint, minutes int64) error
	GetManHour(memberID uint) (*models.VolunteerManHour, error)
}

// GormVolunteerRepository GORM 志愿者仓储实现
type GormVolunteerRepository struct {
	db *gorm.DB
}

// NewVolunteerRepository 创建志愿者仓储
func NewVolunteerRepository(db *gorm.DB) *GormVolunteerRepository {
	return &GormVolunteerRepository{db: db}
}

// Transaction 开启事务
func (r *GormVolunteerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormVolunteerRepository) WithTx(tx *gorm.DB) *GormVolunteerRepository {
	if tx == nil {
		return r
	}
	return &GormVolunteerRepository{db: tx}
}

// CreateRecord 创建打卡记录
func (r *GormVolunteerRepository) CreateRecord(record *models.VolunteerRecord) error {
	return r.db.Create(record).Error
}

// GetRecordByID 获取打卡记录
func (r *GormVolunteerRepository) GetRecordByID(id uint) (*models.VolunteerRecord, error) {
	return r.firstRecord(r.db, "id = ?", id)
}

// GetRecordByIDForUpdate 加锁获取打卡记录
func (r *GormVolunteerRepository) GetRecordByIDForUpdate(id uint) (*models.VolunteerRecord, error) {
	return r.firstRecord(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// GetOpenRecord 获取会员最近一条未签退记录
func (r *GormVolunteerRepository) GetOpenRecord(memberID uint) (*models.VolunteerRecord, error) {
	var record models.VolunteerRecord
	err := r.db.Where("member_id = ? AND end_time IS NULL", memberID).
		Order("start_time desc, id desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *GormVolunteerRepository) firstRecord(db *gorm.DB, cond string, args ...interface{}) (*models.VolunteerRecord, error) {
	var record models.VolunteerRecord
	if err := db.Where(cond, args...).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// CloseRecord 条件关闭打卡记录，仅对未签退记录生效
func (r *GormVolunteerRepository) CloseRecord(id uint, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{
		"kind":       constants.VolunteerRecordCheckOut,
		"updated_at": time.Now(),
	}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.VolunteerRecord{}).
		Where("id = ? AND end_time IS NULL", id).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateRecordAudit 条件更新审核状态
func (r *GormVolunteerRepository) UpdateRecordAudit(id uint, fromAudit string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{
		"updated_at": time.Now(),
	}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.VolunteerRecord{}).
		Where("id = ? AND audit_status = ?", id, fromAudit).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListOpenRecords 查询全部未签退记录
func (r *GormVolunteerRepository) ListOpenRecords(limit int) ([]models.VolunteerRecord, error) {
	query := r.db.Where("end_time IS NULL").Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []models.VolunteerRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListRecords 分页查询打卡记录
func (r *GormVolunteerRepository) ListRecords(filter VolunteerRecordListFilter) ([]models.VolunteerRecord, int64, error) {
	query := r.db.Model(&models.VolunteerRecord{})
	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.AuditStatus != "" {
		query = query.Where("audit_status = ?", filter.AuditStatus)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	var records []models.VolunteerRecord
	if err := query.Order("id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// AddManHour 累加服务时长，不存在时创建
func (r *GormVolunteerRepository) AddManHour(memberID uint, minutes int64) error {
	now := time.Now()
	result := r.db.Model(&models.VolunteerManHour{}).
		Where("member_id = ?", memberID).
		Updates(map[string]interface{}{
			"total_minutes": gorm.Expr("total_minutes + ?", minutes),
			"updated_at":    now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return r.db.Create(&models.VolunteerManHour{
		MemberID:     memberID,
		TotalMinutes: minutes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error
}

// GetManHour 获取会员累计服务时长
func (r *GormVolunteerRepository) GetManHour(memberID uint) (*models.VolunteerManHour, error) {
	var hour models.VolunteerManHour
	if err := r.db.Where("member_id = ?", memberID).First(&hour).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hour, nil
}
