package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/metrics"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PointsService 积分账本服务
type PointsService struct {
	repo repository.PointRepository
}

// PointChangeInput 积分变动输入
type PointChangeInput struct {
	MemberID  uint
	Amount    decimal.Decimal
	Reason    string
	Remark    string
	Reference string
	OrderID   *uint
}

// BalanceAudit 余额与流水合计对照
type BalanceAudit struct {
	MemberID   uint            `json:"member_id"`
	Balance    decimal.Decimal `json:"balance"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Consistent bool            `json:"consistent"`
}

// NewPointsService 创建积分服务
func NewPointsService(repo repository.PointRepository) *PointsService {
	return &PointsService{repo: repo}
}

// Credit 入账，不做幂等处理：同一事件重复调用会重复入账
func (s *PointsService) Credit(memberID uint, amount decimal.Decimal, reason string) (*models.PointLedgerEntry, error) {
	return s.CreditWithReference(PointChangeInput{MemberID: memberID, Amount: amount, Reason: reason})
}

// Debit 扣减，余额不足时失败
func (s *PointsService) Debit(memberID uint, amount decimal.Decimal, reason string) (*models.PointLedgerEntry, error) {
	return s.DebitWithReference(PointChangeInput{MemberID: memberID, Amount: amount, Reason: reason})
}

// CreditWithReference 带参考号入账，参考号已存在时返回原流水
func (s *PointsService) CreditWithReference(input PointChangeInput) (*models.PointLedgerEntry, error) {
	var entry *models.PointLedgerEntry
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		created, err := s.CreditInTx(tx, input)
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DebitWithReference 带参考号扣减，参考号已存在时返回原流水
func (s *PointsService) DebitWithReference(input PointChangeInput) (*models.PointLedgerEntry, error) {
	var entry *models.PointLedgerEntry
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		created, err := s.DebitInTx(tx, input)
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditInTx 在外部事务内入账
func (s *PointsService) CreditInTx(tx *gorm.DB, input PointChangeInput) (*models.PointLedgerEntry, error) {
	return s.apply(tx, input, false)
}

// DebitInTx 在外部事务内扣减
func (s *PointsService) DebitInTx(tx *gorm.DB, input PointChangeInput) (*models.PointLedgerEntry, error) {
	return s.apply(tx, input, true)
}

// AdminAdjust 管理员调整积分（正数入账，负数扣减）
func (s *PointsService) AdminAdjust(memberID uint, delta decimal.Decimal, remark string) (*models.PointLedgerEntry, error) {
	input := PointChangeInput{
		MemberID: memberID,
		Amount:   delta.Abs(),
		Reason:   constants.PointReasonAdminAdjust,
		Remark:   cleanPointRemark(remark, "管理员调整"),
	}
	if delta.IsNegative() {
		return s.DebitWithReference(input)
	}
	return s.CreditWithReference(input)
}

// GetBalance 查询积分余额（无记录时为 0）
func (s *PointsService) GetBalance(memberID uint) (models.Money, error) {
	balance, err := s.repo.GetBalanceByMemberID(memberID)
	if err != nil {
		return models.ZeroMoney(), err
	}
	if balance == nil {
		return models.ZeroMoney(), nil
	}
	return balance.Balance, nil
}

// ListEntries 查询积分流水
func (s *PointsService) ListEntries(filter repository.PointEntryListFilter) ([]models.PointLedgerEntry, int64, error) {
	return s.repo.ListEntries(filter)
}

// AuditBalance 核对余额与流水合计
func (s *PointsService) AuditBalance(memberID uint) (*BalanceAudit, error) {
	balance, err := s.GetBalance(memberID)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.SumDeltaByMemberID(memberID)
	if err != nil {
		return nil, err
	}
	current := balance.Decimal.Round(2)
	sum = sum.Round(2)
	return &BalanceAudit{
		MemberID:   memberID,
		Balance:    current,
		LedgerSum:  sum,
		Consistent: current.Equal(sum),
	}, nil
}

func (s *PointsService) apply(tx *gorm.DB, input PointChangeInput, debit bool) (*models.PointLedgerEntry, error) {
	if input.MemberID == 0 {
		return nil, ErrMemberNotFound
	}
	amount := input.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if tx == nil {
		return nil, fmt.Errorf("points ledger requires a transaction")
	}
	repo := s.repo.WithTx(tx)

	reference := strings.TrimSpace(input.Reference)
	if reference != "" {
		existing, err := repo.GetEntryByReference(reference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	now := time.Now()
	var balance *models.PointBalance
	var err error
	if debit {
		balance, err = repo.GetBalanceByMemberIDForUpdate(input.MemberID)
		if err != nil {
			return nil, err
		}
		if balance == nil {
			return nil, ErrInsufficientPoints
		}
	} else {
		balance, err = s.ensureBalanceForUpdate(repo, input.MemberID, now)
		if err != nil {
			return nil, err
		}
	}

	before := balance.Balance.Decimal.Round(2)
	delta := amount
	if debit {
		delta = amount.Neg()
	}
	after := before.Add(delta).Round(2)
	if after.LessThan(decimal.Zero) {
		return nil, ErrInsufficientPoints
	}
	balance.Balance = models.NewMoneyFromDecimal(after)
	balance.UpdatedAt = now
	if err := repo.UpdateBalance(balance); err != nil {
		return nil, err
	}

	entry := &models.PointLedgerEntry{
		MemberID:      input.MemberID,
		Delta:         models.NewMoneyFromDecimal(delta),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Reason:        strings.TrimSpace(input.Reason),
		Remark:        cleanPointRemark(input.Remark, input.Reason),
		OrderID:       input.OrderID,
		CreatedAt:     now,
	}
	if reference != "" {
		entry.Reference = &reference
	}
	if err := repo.CreateEntry(entry); err != nil {
		return nil, err
	}

	direction := "in"
	if debit {
		direction = "out"
	}
	metrics.RecordPoints(direction, entry.Reason, amount.InexactFloat64())
	return entry, nil
}

func (s *PointsService) ensureBalanceForUpdate(repo *repository.GormPointRepository, memberID uint, now time.Time) (*models.PointBalance, error) {
	balance, err := repo.GetBalanceByMemberIDForUpdate(memberID)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}
	// 并发首次入账时只有一方插入成功，随后统一加锁读取
	if err := repo.CreateBalance(&models.PointBalance{
		MemberID:  memberID,
		Balance:   models.ZeroMoney(),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, err
	}
	balance, err = repo.GetBalanceByMemberIDForUpdate(memberID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, fmt.Errorf("point balance for member %d not created", memberID)
	}
	return balance, nil
}

func cleanPointRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		remark = strings.TrimSpace(fallback)
	}
	if len([]rune(remark)) > 255 {
		remark = string([]rune(remark)[:255])
	}
	return remark
}

func buildOrderPointReference(orderID uint, action string) string {
	return fmt.Sprintf("order:%d:%s", orderID, action)
}

func buildCouponPointReference(memberCouponID uint) string {
	return fmt.Sprintf("coupon:%d:%s", memberCouponID, constants.PointReasonCouponRedeem)
}
