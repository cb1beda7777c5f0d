package service

import (
	"context"
	"strings"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/metrics"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnrollmentService 活动报名与签到服务
type EnrollmentService struct {
	activityRepo repository.ActivityRepository
	memberRepo   repository.MemberRepository
	points       *PointsService
}

// SignInfo 会员在活动下的报名状态
type SignInfo struct {
	ActivityID   uint                       `json:"activity_id"`
	MemberID     uint                       `json:"member_id"`
	SignInStatus string                     `json:"sign_in_status"`
	Enrollment   *models.ActivityEnrollment `json:"enrollment,omitempty"`
}

// SignInResult 签到结果
type SignInResult struct {
	Enrollment    *models.ActivityEnrollment `json:"enrollment"`
	PointsAwarded models.Money               `json:"points_awarded"`
}

// NewEnrollmentService 创建报名服务
func NewEnrollmentService(activityRepo repository.ActivityRepository, memberRepo repository.MemberRepository, points *PointsService) *EnrollmentService {
	return &EnrollmentService{
		activityRepo: activityRepo,
		memberRepo:   memberRepo,
		points:       points,
	}
}

// Enroll 免费活动报名，名额通过条件更新占用
func (s *EnrollmentService) Enroll(ctx context.Context, activityID, memberID uint, formData string) (enrollment *models.ActivityEnrollment, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWorkflow("activity_enroll", start, err) }()

	if err := s.ensureMember(memberID); err != nil {
		return nil, err
	}
	now := time.Now()
	err = s.activityRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.activityRepo.WithTx(tx)
		activity, err := repo.GetByID(activityID)
		if err != nil {
			return err
		}
		if activity == nil {
			return ErrActivityNotFound
		}
		if !activityOpen(activity, now) {
			return ErrActivityClosed
		}
		if activity.Price.Decimal.GreaterThan(decimal.Zero) {
			return ErrActivityRequiresPayment
		}
		existing, err := repo.GetEnrollmentForUpdate(activityID, memberID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyRegistered
		}
		reserved, err := repo.ReserveSeat(activityID)
		if err != nil {
			return err
		}
		if !reserved {
			return ErrActivityFull
		}
		enrollment = &models.ActivityEnrollment{
			ActivityID:   activityID,
			MemberID:     memberID,
			SignInStatus: constants.EnrollmentRegistered,
			FormData:     strings.TrimSpace(formData),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.CreateEnrollment(enrollment); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Warnw("activity_enroll_failed",
			"activity_id", activityID,
			"member_id", memberID,
			"kind", string(KindOf(err)),
			"error", err,
		)
		return nil, err
	}
	logger.Infow("activity_enrolled", "activity_id", activityID, "member_id", memberID)
	return enrollment, nil
}

// CancelEnrollment 取消报名：存在记录即删除并释放名额，不存在时视为成功。
// 付费报名随订单取消或退款释放，这里不允许直接删除。
func (s *EnrollmentService) CancelEnrollment(ctx context.Context, activityID, memberID uint) (bool, error) {
	removed := false
	err := s.activityRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.activityRepo.WithTx(tx)
		enrollment, err := repo.GetEnrollmentForUpdate(activityID, memberID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return nil
		}
		if enrollment.OrderID != nil {
			return ErrEnrollmentStatusInvalid
		}
		deleted, err := repo.DeleteEnrollment(enrollment.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return nil
		}
		removed = true
		return repo.ReleaseSeat(activityID)
	})
	if err != nil {
		return false, err
	}
	if removed {
		logger.Infow("activity_enrollment_cancelled", "activity_id", activityID, "member_id", memberID)
	}
	return removed, nil
}

// SignIn 活动签到，配置了签到积分时每次调用都会入账
func (s *EnrollmentService) SignIn(ctx context.Context, activityID, memberID uint) (result *SignInResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWorkflow("activity_sign_in", start, err) }()

	now := time.Now()
	err = s.activityRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.activityRepo.WithTx(tx)
		activity, err := repo.GetByID(activityID)
		if err != nil {
			return err
		}
		if activity == nil {
			return ErrActivityNotFound
		}
		enrollment, err := repo.GetEnrollmentForUpdate(activityID, memberID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return ErrEnrollmentNotFound
		}
		updated, err := repo.TransitionEnrollment(enrollment.ID,
			[]string{constants.EnrollmentRegistered, constants.EnrollmentCheckedIn},
			constants.EnrollmentCheckedIn,
			map[string]interface{}{"sign_in_at": now},
		)
		if err != nil {
			return err
		}
		if !updated {
			return ErrEnrollmentStatusInvalid
		}
		enrollment.SignInStatus = constants.EnrollmentCheckedIn
		enrollment.SignInAt = &now

		awarded := decimal.Zero
		reward := activity.SignInPoints.Decimal.Round(2)
		if reward.GreaterThan(decimal.Zero) && s.points != nil {
			if _, err := s.points.CreditInTx(tx, PointChangeInput{
				MemberID: memberID,
				Amount:   reward,
				Reason:   constants.PointReasonActivitySignIn,
				Remark:   "活动签到：" + activity.Name,
			}); err != nil {
				return err
			}
			awarded = reward
		}
		result = &SignInResult{
			Enrollment:    enrollment,
			PointsAwarded: models.NewMoneyFromDecimal(awarded),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("activity_signed_in",
		"activity_id", activityID,
		"member_id", memberID,
		"points_awarded", result.PointsAwarded.String(),
	)
	return result, nil
}

// SignInfo 查询会员报名状态，未报名时返回 not_registered
func (s *EnrollmentService) SignInfo(activityID, memberID uint) (*SignInfo, error) {
	activity, err := s.activityRepo.GetByID(activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	enrollment, err := s.activityRepo.GetEnrollment(activityID, memberID)
	if err != nil {
		return nil, err
	}
	info := &SignInfo{
		ActivityID:   activityID,
		MemberID:     memberID,
		SignInStatus: constants.EnrollmentNotRegistered,
	}
	if enrollment != nil {
		info.SignInStatus = enrollment.SignInStatus
		info.Enrollment = enrollment
	}
	return info, nil
}

// ListEnrollments 分页查询报名记录
func (s *EnrollmentService) ListEnrollments(filter repository.EnrollmentListFilter) ([]models.ActivityEnrollment, int64, error) {
	return s.activityRepo.ListEnrollments(filter)
}

func (s *EnrollmentService) ensureMember(memberID uint) error {
	if s.memberRepo == nil {
		return nil
	}
	member, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}
	if member.Status == constants.MemberStatusDisabled {
		return ErrMemberDisabled
	}
	return nil
}
