package repository

import "time"

// PointEntryListFilter 积分流水查询条件
type PointEntryListFilter struct {
	Page        int
	PageSize    int
	MemberID    uint
	Reason      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponTemplateListFilter 优惠券模板查询条件
type CouponTemplateListFilter struct {
	Page        int
	PageSize    int
	MerchantID  uint
	SourceFrom  string
	AuditStatus string
	Search      string
}

// MemberCouponListFilter 会员券查询条件
type MemberCouponListFilter struct {
	Page     int
	PageSize int
	MemberID uint
	Status   string
}

// VerificationLogListFilter 核销记录查询条件
type VerificationLogListFilter struct {
	Page        int
	PageSize    int
	MerchantID  uint
	MemberID    uint
	CouponCode  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderListFilter 订单查询条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	MemberID    uint
	Kind        string
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// EnrollmentListFilter 活动报名查询条件
type EnrollmentListFilter struct {
	Page         int
	PageSize     int
	ActivityID   uint
	MemberID     uint
	SignInStatus string
}

// VolunteerRecordListFilter 志愿者打卡记录查询条件
type VolunteerRecordListFilter struct {
	Page        int
	PageSize    int
	MemberID    uint
	Kind        string
	AuditStatus string
}
