package service

import (
	"strings"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TierLookup 会员等级查询（按调用时刻解析生效等级）
type TierLookup interface {
	ActiveTier(memberID uint, at time.Time) (*models.MembershipTier, error)
}

// MemberService 会员目录服务
type MemberService struct {
	memberRepo     repository.MemberRepository
	membershipRepo repository.MembershipRepository
}

// CreateTierInput 创建会员等级输入
type CreateTierInput struct {
	Name         string
	PointRate    decimal.Decimal
	Price        decimal.Decimal
	DurationDays int
}

// NewMemberService 创建会员目录服务
func NewMemberService(memberRepo repository.MemberRepository, membershipRepo repository.MembershipRepository) *MemberService {
	return &MemberService{
		memberRepo:     memberRepo,
		membershipRepo: membershipRepo,
	}
}

// ActiveTier 获取会员当前生效等级，无生效等级时返回 nil
func (s *MemberService) ActiveTier(memberID uint, at time.Time) (*models.MembershipTier, error) {
	memberTier, err := s.membershipRepo.GetActiveMemberTier(memberID, at)
	if err != nil {
		return nil, err
	}
	if memberTier == nil {
		return nil, nil
	}
	if memberTier.Tier != nil {
		return memberTier.Tier, nil
	}
	return s.membershipRepo.GetTierByID(memberTier.TierID)
}

// GetMemberTier 获取会员等级记录
func (s *MemberService) GetMemberTier(memberID uint) (*models.MemberTier, error) {
	return s.membershipRepo.GetMemberTier(memberID)
}

// GetMember 获取会员
func (s *MemberService) GetMember(id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// GetMemberByPhone 按手机号获取会员
func (s *MemberService) GetMemberByPhone(phone string) (*models.Member, error) {
	member, err := s.memberRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// CreateMember 创建会员
func (s *MemberService) CreateMember(phone, nickname string) (*models.Member, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrInvalidMemberInput
	}
	member := &models.Member{
		Phone:    phone,
		Nickname: strings.TrimSpace(nickname),
		Status:   constants.MemberStatusActive,
	}
	if err := s.memberRepo.Create(member); err != nil {
		return nil, err
	}
	return member, nil
}

// ListMembers 分页查询会员
func (s *MemberService) ListMembers(page, pageSize int, search string) ([]models.Member, int64, error) {
	return s.memberRepo.List(page, pageSize, search)
}

// CreateMerchant 创建商家
func (s *MemberService) CreateMerchant(name string) (*models.Merchant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidMemberInput
	}
	merchant := &models.Merchant{
		Name:   strings.TrimSpace(name),
		Status: constants.MemberStatusActive,
	}
	if err := s.memberRepo.CreateMerchant(merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// GetMerchant 获取商家
func (s *MemberService) GetMerchant(id uint) (*models.Merchant, error) {
	merchant, err := s.memberRepo.GetMerchantByID(id)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}
	return merchant, nil
}

// CreateTier 创建会员等级
func (s *MemberService) CreateTier(input CreateTierInput) (*models.MembershipTier, error) {
	if strings.TrimSpace(input.Name) == "" || input.PointRate.IsNegative() || input.Price.IsNegative() {
		return nil, ErrInvalidMemberInput
	}
	duration := input.DurationDays
	if duration < 0 {
		duration = 0
	}
	tier := &models.MembershipTier{
		Name:         strings.TrimSpace(input.Name),
		PointRate:    models.NewMoneyFromDecimal(input.PointRate),
		Price:        models.NewMoneyFromDecimal(input.Price),
		DurationDays: duration,
		IsActive:     true,
	}
	if err := s.membershipRepo.CreateTier(tier); err != nil {
		return nil, err
	}
	return tier, nil
}

// ListTiers 查询会员等级
func (s *MemberService) ListTiers(onlyActive bool) ([]models.MembershipTier, error) {
	return s.membershipRepo.ListTiers(onlyActive)
}

// GetTier 获取会员等级
func (s *MemberService) GetTier(id uint) (*models.MembershipTier, error) {
	tier, err := s.membershipRepo.GetTierByID(id)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, ErrTierNotFound
	}
	return tier, nil
}

// GetTierInTx 在事务内获取会员等级
func (s *MemberService) GetTierInTx(tx *gorm.DB, id uint) (*models.MembershipTier, error) {
	tier, err := s.membershipRepo.WithTx(tx).GetTierByID(id)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, ErrTierNotFound
	}
	return tier, nil
}

// GrantTier 直接授予会员等级
func (s *MemberService) GrantTier(memberID, tierID uint, now time.Time) (*models.MemberTier, error) {
	return s.GrantTierInTx(nil, memberID, tierID, now)
}

// GrantTierInTx 在事务内授予或续期会员等级
func (s *MemberService) GrantTierInTx(tx *gorm.DB, memberID, tierID uint, now time.Time) (*models.MemberTier, error) {
	repo := s.membershipRepo.WithTx(tx)
	tier, err := repo.GetTierByID(tierID)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, ErrTierNotFound
	}
	current, err := repo.GetMemberTier(memberID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = &models.MemberTier{MemberID: memberID, CreatedAt: now}
	}

	start := now
	sameActive := current.ID != 0 &&
		current.TierID == tier.ID &&
		current.Status == constants.MemberTierStatusActive
	if sameActive && current.ExpireAt == nil {
		current.UpdatedAt = now
		current.Tier = tier
		return current, nil
	}
	if sameActive && current.ExpireAt.After(now) {
		start = *current.ExpireAt
	}

	current.TierID = tier.ID
	current.Status = constants.MemberTierStatusActive
	current.UpdatedAt = now
	if tier.DurationDays > 0 {
		expireAt := start.AddDate(0, 0, tier.DurationDays)
		current.ExpireAt = &expireAt
	} else {
		current.ExpireAt = nil
	}
	if err := repo.SaveMemberTier(current); err != nil {
		return nil, err
	}
	current.Tier = tier
	return current, nil
}
