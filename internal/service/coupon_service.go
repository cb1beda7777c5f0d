package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/metrics"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponService 优惠券模板与发放服务
type CouponService struct {
	couponRepo repository.CouponRepository
	memberRepo repository.MemberRepository
}

// CreateCouponTemplateInput 创建优惠券模板输入
type CreateCouponTemplateInput struct {
	Name             string
	Type             string
	Value            decimal.Decimal
	UsageFloor       decimal.Decimal
	Rules            string
	ValidFrom        *time.Time
	ValidEnd         *time.Time
	StockQuantity    int
	ScopeType        string
	ScopeMerchantIDs []uint
	SourceFrom       string
	MerchantID       uint
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, memberRepo repository.MemberRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		memberRepo: memberRepo,
	}
}

// CreateTemplate 创建优惠券模板，商家券需要审核，平台券直接通过
func (s *CouponService) CreateTemplate(input CreateCouponTemplateInput) (*models.CouponTemplate, error) {
	if err := validateCouponTemplateInput(&input); err != nil {
		return nil, err
	}
	scopeRaw, err := encodeScopeMerchantIDs(input.ScopeMerchantIDs)
	if err != nil {
		return nil, err
	}
	auditStatus := constants.AuditStatusApproved
	if input.SourceFrom == constants.CouponSourceMerchant {
		auditStatus = constants.AuditStatusPending
	}
	template := &models.CouponTemplate{
		Name:             strings.TrimSpace(input.Name),
		Type:             input.Type,
		Value:            models.NewMoneyFromDecimal(input.Value),
		UsageFloor:       models.NewMoneyFromDecimal(input.UsageFloor),
		Rules:            strings.TrimSpace(input.Rules),
		ValidFrom:        input.ValidFrom,
		ValidEnd:         input.ValidEnd,
		StockQuantity:    input.StockQuantity,
		ScopeType:        input.ScopeType,
		ScopeMerchantIDs: scopeRaw,
		AuditStatus:      auditStatus,
		SourceFrom:       input.SourceFrom,
		MerchantID:       input.MerchantID,
	}
	if err := s.couponRepo.CreateTemplate(template); err != nil {
		return nil, err
	}
	return template, nil
}

// AuditTemplate 审核商家券模板
func (s *CouponService) AuditTemplate(id uint, approve bool, remark string) (*models.CouponTemplate, error) {
	template, err := s.couponRepo.GetTemplateByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrCouponTemplateNotFound
	}
	if template.AuditStatus != constants.AuditStatusPending {
		return nil, ErrTemplateAuditInvalid
	}
	template.AuditStatus = constants.AuditStatusRejected
	if approve {
		template.AuditStatus = constants.AuditStatusApproved
	}
	template.AuditRemark = strings.TrimSpace(remark)
	if err := s.couponRepo.UpdateTemplate(template); err != nil {
		return nil, err
	}
	return template, nil
}

// GetTemplate 获取优惠券模板
func (s *CouponService) GetTemplate(id uint) (*models.CouponTemplate, error) {
	template, err := s.couponRepo.GetTemplateByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrCouponTemplateNotFound
	}
	return template, nil
}

// ListTemplates 查询优惠券模板
func (s *CouponService) ListTemplates(filter repository.CouponTemplateListFilter) ([]models.CouponTemplate, int64, error) {
	return s.couponRepo.ListTemplates(filter)
}

// Issue 向会员发放一张优惠券，库存不足时失败
func (s *CouponService) Issue(templateID, memberID uint) (coupon *models.MemberCoupon, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWorkflow("coupon_issue", start, err) }()

	member, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if member.Status == constants.MemberStatusDisabled {
		return nil, ErrMemberDisabled
	}

	err = s.couponRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.couponRepo.WithTx(tx)
		now := time.Now()

		template, err := repo.GetTemplateByID(templateID)
		if err != nil {
			return err
		}
		if template == nil {
			return ErrCouponTemplateNotFound
		}
		if template.AuditStatus != constants.AuditStatusApproved {
			return ErrCouponTemplateNotIssued
		}
		if template.ValidEnd != nil && template.ValidEnd.Before(now) {
			return ErrCouponTemplateEnded
		}
		if template.StockQuantity <= 0 {
			return ErrOutOfStock
		}
		decremented, err := repo.DecrementTemplateStock(template.ID)
		if err != nil {
			return err
		}
		if !decremented {
			return ErrOutOfStock
		}

		code, err := s.nextCouponCode(repo, now)
		if err != nil {
			return err
		}
		created := snapshotMemberCoupon(template, memberID, code, now)
		if err := repo.CreateMemberCoupon(created); err != nil {
			if isCouponCodeConflict(err) {
				return ErrCouponCodeExhausted
			}
			return err
		}
		coupon = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

// IssueByPhone 按手机号发放优惠券
func (s *CouponService) IssueByPhone(templateID uint, phone string) (*models.MemberCoupon, error) {
	member, err := s.memberRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return s.Issue(templateID, member.ID)
}

// ListMemberCoupons 查询会员券
func (s *CouponService) ListMemberCoupons(filter repository.MemberCouponListFilter) ([]models.MemberCoupon, int64, error) {
	return s.couponRepo.ListMemberCoupons(filter)
}

// ListUsableForMerchant 查询会员在指定商家可用的券
func (s *CouponService) ListUsableForMerchant(memberID, merchantID uint) ([]models.MemberCoupon, error) {
	coupons, err := s.couponRepo.ListUsableByMember(memberID, time.Now())
	if err != nil {
		return nil, err
	}
	result := make([]models.MemberCoupon, 0, len(coupons))
	for _, coupon := range coupons {
		if merchantInScope(coupon.ScopeType, coupon.ScopeMerchantIDs, merchantID) {
			result = append(result, coupon)
		}
	}
	return result, nil
}

// ExpireStale 将过期的可用券标记为已过期
func (s *CouponService) ExpireStale(now time.Time) (int64, error) {
	return s.couponRepo.ExpireMemberCoupons(now)
}

func (s *CouponService) nextCouponCode(repo *repository.GormCouponRepository, now time.Time) (string, error) {
	for attempt := 0; attempt < couponCodeMaxAttempts; attempt++ {
		code := generateCouponCode(now)
		exists, err := repo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCouponCodeExhausted
}

func snapshotMemberCoupon(template *models.CouponTemplate, memberID uint, code string, now time.Time) *models.MemberCoupon {
	return &models.MemberCoupon{
		TemplateID:       template.ID,
		Name:             template.Name,
		Type:             template.Type,
		Value:            template.Value,
		UsageFloor:       template.UsageFloor,
		Rules:            template.Rules,
		ValidFrom:        template.ValidFrom,
		ValidEnd:         template.ValidEnd,
		CouponCode:       code,
		MemberID:         memberID,
		Status:           constants.CouponStatusUsable,
		ScopeType:        template.ScopeType,
		ScopeMerchantIDs: template.ScopeMerchantIDs,
		SourceFrom:       template.SourceFrom,
		MerchantID:       template.MerchantID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func validateCouponTemplateInput(input *CreateCouponTemplateInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	input.ScopeType = strings.ToLower(strings.TrimSpace(input.ScopeType))
	input.SourceFrom = strings.ToLower(strings.TrimSpace(input.SourceFrom))
	if input.Name == "" {
		return ErrInvalidCouponInput
	}
	switch input.Type {
	case constants.CouponTypeCash, constants.CouponTypeDiscount, constants.CouponTypeGift:
	default:
		return ErrInvalidCouponInput
	}
	if input.Value.IsNegative() || input.UsageFloor.IsNegative() || input.StockQuantity < 0 {
		return ErrInvalidCouponInput
	}
	if input.ValidFrom != nil && input.ValidEnd != nil && input.ValidEnd.Before(*input.ValidFrom) {
		return ErrInvalidCouponInput
	}
	if input.ScopeType == "" {
		input.ScopeType = constants.CouponScopeAllMerchants
	}
	switch input.ScopeType {
	case constants.CouponScopeAllMerchants:
		input.ScopeMerchantIDs = nil
	case constants.CouponScopeSpecificMerchants:
		if len(input.ScopeMerchantIDs) == 0 {
			return ErrInvalidCouponInput
		}
	default:
		return ErrInvalidCouponInput
	}
	switch input.SourceFrom {
	case constants.CouponSourceMerchant:
		if input.MerchantID == 0 {
			return ErrInvalidCouponInput
		}
	case constants.CouponSourcePlatform:
		input.MerchantID = 0
	default:
		return ErrInvalidCouponInput
	}
	return nil
}

func encodeScopeMerchantIDs(ids []uint) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	seen := make(map[uint]struct{}, len(ids))
	normalized := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}
	if len(normalized) == 0 {
		return "", ErrInvalidCouponInput
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeScopeMerchantIDs(raw string) []uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

func merchantInScope(scopeType, scopeRaw string, merchantID uint) bool {
	if scopeType != constants.CouponScopeSpecificMerchants {
		return true
	}
	if merchantID == 0 {
		return false
	}
	for _, id := range decodeScopeMerchantIDs(scopeRaw) {
		if id == merchantID {
			return true
		}
	}
	return false
}

func isCouponCodeConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return isUniqueViolation(err) && strings.Contains(strings.ToLower(err.Error()), "coupon_code")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
