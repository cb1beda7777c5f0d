package service

import (
	"errors"
	"strings"
	"time"

	"github.com/member-ledger/internal/config"
	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// 令牌主体类型
const (
	SubjectAdmin    = "admin"
	SubjectMember   = "member"
	SubjectMerchant = "merchant"
)

// AuthService 认证服务
type AuthService struct {
	cfg        *config.Config
	adminRepo  repository.AdminRepository
	memberRepo repository.MemberRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository, memberRepo repository.MemberRepository) *AuthService {
	return &AuthService{
		cfg:        cfg,
		adminRepo:  adminRepo,
		memberRepo: memberRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// JWTClaims JWT 声明，Subject 区分管理员、会员与商家
type JWTClaims struct {
	SubjectType string `json:"subject_type"`
	SubjectID   uint   `json:"subject_id"`
	Username    string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成管理员 Token
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	return s.sign(s.cfg.JWT, JWTClaims{
		SubjectType: SubjectAdmin,
		SubjectID:   admin.ID,
		Username:    admin.Username,
	})
}

// ParseJWT 解析管理员 Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	claims, err := s.parse(s.cfg.JWT, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.SubjectType != SubjectAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateMemberJWT 生成会员 Token
func (s *AuthService) GenerateMemberJWT(member *models.Member) (string, time.Time, error) {
	return s.sign(s.cfg.MemberJWT, JWTClaims{
		SubjectType: SubjectMember,
		SubjectID:   member.ID,
		Username:    member.Phone,
	})
}

// GenerateMerchantJWT 生成商家 Token
func (s *AuthService) GenerateMerchantJWT(merchant *models.Merchant) (string, time.Time, error) {
	return s.sign(s.cfg.MemberJWT, JWTClaims{
		SubjectType: SubjectMerchant,
		SubjectID:   merchant.ID,
		Username:    merchant.Name,
	})
}

// ParseSubjectJWT 解析会员或商家 Token 并校验主体类型
func (s *AuthService) ParseSubjectJWT(tokenString, subjectType string) (*JWTClaims, error) {
	claims, err := s.parse(s.cfg.MemberJWT, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.SubjectType != subjectType || claims.SubjectID == 0 {
		return nil, ErrInvalidToken
	}
	if subjectType == SubjectMember && s.memberRepo != nil {
		member, err := s.memberRepo.GetByID(claims.SubjectID)
		if err != nil {
			return nil, err
		}
		if member == nil || member.Status == constants.MemberStatusDisabled {
			return nil, ErrInvalidToken
		}
	}
	if subjectType == SubjectMerchant && s.memberRepo != nil {
		merchant, err := s.memberRepo.GetMerchantByID(claims.SubjectID)
		if err != nil {
			return nil, err
		}
		if merchant == nil || merchant.Status == constants.MemberStatusDisabled {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

func (s *AuthService) sign(cfg config.JWTConfig, claims JWTClaims) (string, time.Time, error) {
	now := time.Now()
	hours := cfg.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (s *AuthService) parse(cfg config.JWTConfig, tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Login 管理员登录
func (s *AuthService) Login(username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	// 更新最后登录时间
	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, "", time.Time{}, err
	}
	return admin, token, expiresAt, nil
}

// ChangePassword 修改管理员密码
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrAdminNotFound
	}

	if err := s.VerifyPassword(admin.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hash
	return s.adminRepo.Update(admin)
}

// EnsureBootstrapAdmin 首次启动时按配置创建超级管理员
func (s *AuthService) EnsureBootstrapAdmin() (*models.Admin, bool, error) {
	username := strings.TrimSpace(s.cfg.Bootstrap.AdminUsername)
	password := s.cfg.Bootstrap.AdminPassword
	if username == "" || password == "" {
		return nil, false, nil
	}
	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	if err := s.ValidatePassword(password); err != nil {
		return nil, false, err
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		Role:         constants.RoleAdmin,
		IsSuper:      true,
		CreatedAt:    time.Now(),
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, false, err
	}
	logger.Infow("bootstrap_admin_created", "username", username)
	return admin, true, nil
}
