package service

import (
	"context"
	"strings"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"gorm.io/gorm"
)

const volunteerAutoRejectRemark = "系统自动审核：未手动签退，请手动补录"

// VolunteerService 志愿服务时长服务
type VolunteerService struct {
	repo     repository.VolunteerRepository
	settings *SettingService
	maxOpen  int
}

// CheckOutInput 签退输入
type CheckOutInput struct {
	RecordID   uint
	EndTime    time.Time
	Approved   bool
	OperatorID uint
	Remark     string
}

// NewVolunteerService 创建志愿服务时长服务
func NewVolunteerService(repo repository.VolunteerRepository, settings *SettingService, maxOpenHours int) *VolunteerService {
	if maxOpenHours <= 0 {
		maxOpenHours = 12
	}
	return &VolunteerService{
		repo:     repo,
		settings: settings,
		maxOpen:  maxOpenHours,
	}
}

// CheckIn 签到，存在未签退记录时失败
func (s *VolunteerService) CheckIn(memberID uint, at time.Time, timeOffset int) (*models.VolunteerRecord, error) {
	if memberID == 0 {
		return nil, ErrMemberNotFound
	}
	if at.IsZero() {
		at = time.Now()
	}
	var record *models.VolunteerRecord
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		open, err := repo.GetOpenRecord(memberID)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrOpenSessionExists
		}
		now := time.Now()
		record = &models.VolunteerRecord{
			MemberID:    memberID,
			StartTime:   at,
			Kind:        constants.VolunteerRecordCheckIn,
			AuditStatus: constants.AuditStatusPending,
			TimeOffset:  timeOffset,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return repo.CreateRecord(record)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("volunteer_checked_in", "member_id", memberID, "record_id", record.ID)
	return record, nil
}

// CheckOut 签退；审核通过时按整分钟累加服务时长
func (s *VolunteerService) CheckOut(input CheckOutInput) (*models.VolunteerRecord, error) {
	if input.EndTime.IsZero() {
		input.EndTime = time.Now()
	}
	var record *models.VolunteerRecord
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetRecordByIDForUpdate(input.RecordID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrVolunteerRecordNotFound
		}
		if current.EndTime != nil {
			return ErrNoOpenSession
		}
		if input.EndTime.Before(current.StartTime) {
			return ErrInvalidCheckOutTime
		}
		minutes := sessionMinutes(current.StartTime, input.EndTime)
		now := time.Now()
		updates := map[string]interface{}{
			"end_time":    input.EndTime,
			"operator_id": input.OperatorID,
			"remark":      strings.TrimSpace(input.Remark),
		}
		if input.Approved {
			updates["audit_status"] = constants.AuditStatusApproved
			updates["audit_time"] = now
			updates["minutes"] = minutes
		}
		closed, err := repo.CloseRecord(current.ID, updates)
		if err != nil {
			return err
		}
		if !closed {
			return ErrNoOpenSession
		}
		if input.Approved && minutes > 0 {
			if err := repo.AddManHour(current.MemberID, minutes); err != nil {
				return err
			}
		}
		refreshed, err := repo.GetRecordByID(current.ID)
		if err != nil {
			return err
		}
		record = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("volunteer_checked_out",
		"record_id", record.ID,
		"member_id", record.MemberID,
		"approved", input.Approved,
		"minutes", record.Minutes,
	)
	return record, nil
}

// AuditRecord 审核已签退的待审记录，通过时累加服务时长
func (s *VolunteerService) AuditRecord(recordID uint, approve bool, remark string) (*models.VolunteerRecord, error) {
	var record *models.VolunteerRecord
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetRecordByIDForUpdate(recordID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrVolunteerRecordNotFound
		}
		if current.EndTime == nil || current.AuditStatus != constants.AuditStatusPending {
			return ErrVolunteerAuditInvalid
		}
		now := time.Now()
		updates := map[string]interface{}{
			"audit_time": now,
		}
		if trimmed := strings.TrimSpace(remark); trimmed != "" {
			updates["remark"] = trimmed
		}
		var minutes int64
		if approve {
			minutes = sessionMinutes(current.StartTime, *current.EndTime)
			updates["audit_status"] = constants.AuditStatusApproved
			updates["minutes"] = minutes
		} else {
			updates["audit_status"] = constants.AuditStatusRejected
		}
		updated, err := repo.UpdateRecordAudit(current.ID, constants.AuditStatusPending, updates)
		if err != nil {
			return err
		}
		if !updated {
			return ErrVolunteerAuditInvalid
		}
		if minutes > 0 {
			if err := repo.AddManHour(current.MemberID, minutes); err != nil {
				return err
			}
		}
		refreshed, err := repo.GetRecordByID(current.ID)
		if err != nil {
			return err
		}
		record = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// TotalMinutes 会员累计服务分钟数
func (s *VolunteerService) TotalMinutes(memberID uint) (int64, error) {
	hour, err := s.repo.GetManHour(memberID)
	if err != nil {
		return 0, err
	}
	if hour == nil {
		return 0, nil
	}
	return hour.TotalMinutes, nil
}

// LastOpenRecord 会员当前未签退记录，没有时返回 nil
func (s *VolunteerService) LastOpenRecord(memberID uint) (*models.VolunteerRecord, error) {
	return s.repo.GetOpenRecord(memberID)
}

// ListRecords 分页查询打卡记录
func (s *VolunteerService) ListRecords(filter repository.VolunteerRecordListFilter) ([]models.VolunteerRecord, int64, error) {
	return s.repo.ListRecords(filter)
}

// ForceCloseAbandoned 强制关闭超时未签退的记录，审核驳回且不计时长
func (s *VolunteerService) ForceCloseAbandoned(ctx context.Context, now time.Time, limit int) (int64, error) {
	maxOpen := time.Duration(s.maxOpen) * time.Hour
	if s.settings != nil {
		maxOpen = s.settings.VolunteerMaxOpen(ctx, s.maxOpen)
	}
	records, err := s.repo.ListOpenRecords(limit)
	if err != nil {
		return 0, err
	}
	var closed int64
	for i := range records {
		record := records[i]
		if !sessionAbandoned(record, now, maxOpen) {
			continue
		}
		ok, err := s.repo.CloseRecord(record.ID, map[string]interface{}{
			"end_time":     now,
			"audit_status": constants.AuditStatusRejected,
			"audit_time":   now,
			"remark":       volunteerAutoRejectRemark,
			"minutes":      int64(0),
		})
		if err != nil {
			logger.Warnw("volunteer_force_close_failed", "record_id", record.ID, "error", err)
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

// sessionAbandoned 按设备时差换算后判断签到是否超过最长时长
func sessionAbandoned(record models.VolunteerRecord, now time.Time, maxOpen time.Duration) bool {
	localNow := now.Add(time.Duration(record.TimeOffset) * time.Hour)
	return record.StartTime.Before(localNow.Add(-maxOpen))
}

func sessionMinutes(start, end time.Time) int64 {
	if end.Before(start) {
		return 0
	}
	return end.Sub(start).Milliseconds() / 60000
}
