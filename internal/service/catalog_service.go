package service

import (
	"strings"
	"time"

	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// CatalogService 积分商品与活动目录
type CatalogService struct {
	goodsRepo    repository.GoodsRepository
	activityRepo repository.ActivityRepository
}

// CreateGoodsInput 创建积分商品输入
type CreateGoodsInput struct {
	Name          string
	Price         decimal.Decimal
	StockQuantity int
}

// CreateActivityInput 创建活动输入
type CreateActivityInput struct {
	Name         string
	Capacity     int
	Price        decimal.Decimal
	SignInPoints decimal.Decimal
	StartAt      *time.Time
	EndAt        *time.Time
}

// NewCatalogService 创建目录服务
func NewCatalogService(goodsRepo repository.GoodsRepository, activityRepo repository.ActivityRepository) *CatalogService {
	return &CatalogService{
		goodsRepo:    goodsRepo,
		activityRepo: activityRepo,
	}
}

// CreateGoods 创建积分商品
func (s *CatalogService) CreateGoods(input CreateGoodsInput) (*models.Goods, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.StockQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if input.Price.IsNegative() {
		return nil, ErrInvalidAmount
	}
	goods := &models.Goods{
		Name:          name,
		Price:         models.NewMoneyFromDecimal(input.Price),
		StockQuantity: input.StockQuantity,
		IsActive:      true,
	}
	if err := s.goodsRepo.Create(goods); err != nil {
		return nil, err
	}
	return goods, nil
}

// GetGoods 获取积分商品
func (s *CatalogService) GetGoods(id uint) (*models.Goods, error) {
	goods, err := s.goodsRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if goods == nil {
		return nil, ErrGoodsNotFound
	}
	return goods, nil
}

// ListGoods 分页查询积分商品
func (s *CatalogService) ListGoods(page, pageSize int, onlyActive bool) ([]models.Goods, int64, error) {
	return s.goodsRepo.List(page, pageSize, onlyActive)
}

// CreateActivity 创建活动
func (s *CatalogService) CreateActivity(input CreateActivityInput) (*models.Activity, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Capacity < 0 {
		return nil, ErrInvalidQuantity
	}
	if input.Price.IsNegative() || input.SignInPoints.IsNegative() {
		return nil, ErrInvalidAmount
	}
	activity := &models.Activity{
		Name:         name,
		Capacity:     input.Capacity,
		Price:        models.NewMoneyFromDecimal(input.Price),
		SignInPoints: models.NewMoneyFromDecimal(input.SignInPoints),
		StartAt:      input.StartAt,
		EndAt:        input.EndAt,
		IsActive:     true,
	}
	if err := s.activityRepo.Create(activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// GetActivity 获取活动
func (s *CatalogService) GetActivity(id uint) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// ListActivities 分页查询活动
func (s *CatalogService) ListActivities(page, pageSize int, onlyActive bool) ([]models.Activity, int64, error) {
	return s.activityRepo.List(page, pageSize, onlyActive)
}

// SeatAudit 活动名额计数与报名记录核对结果
type SeatAudit struct {
	ActivityID    uint  `json:"activity_id"`
	Capacity      int   `json:"capacity"`
	EnrolledCount int   `json:"enrolled_count"`
	Enrollments   int64 `json:"enrollments"`
	Consistent    bool  `json:"consistent"`
}

// AuditActivitySeats 核对 enrolled_count 与实际报名行数，并检查未超出容量
func (s *CatalogService) AuditActivitySeats(id uint) (*SeatAudit, error) {
	activity, err := s.GetActivity(id)
	if err != nil {
		return nil, err
	}
	count, err := s.activityRepo.CountEnrollments(activity.ID)
	if err != nil {
		return nil, err
	}
	within := activity.Capacity == 0 || count <= int64(activity.Capacity)
	return &SeatAudit{
		ActivityID:    activity.ID,
		Capacity:      activity.Capacity,
		EnrolledCount: activity.EnrolledCount,
		Enrollments:   count,
		Consistent:    within && int64(activity.EnrolledCount) == count,
	}, nil
}
