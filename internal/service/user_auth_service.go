package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/firewood-bank/backend/internal/config"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserAuthService 账号与认证服务
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	audit    *AuditService
}

// NewUserAuthService 创建认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, audit *AuditService) *UserAuthService {
	return &UserAuthService{cfg: cfg, userRepo: userRepo, audit: audit}
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	HipaaCertified bool   `json:"hipaa_certified"`
	DriverCapable  bool   `json:"driver_capable"`
	jwt.RegisteredClaims
}

// HashPassword 使用 bcrypt 加密密码
func (s *UserAuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *UserAuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合最小长度策略
func (s *UserAuthService) ValidatePassword(password string) error {
	minLength := 8
	if s.cfg != nil && s.cfg.Auth.MinPasswordLength > 0 {
		minLength = s.cfg.Auth.MinPasswordLength
	}
	if len(password) < minLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minLength)
	}
	return nil
}

// GenerateJWT 生成 JWT Token
func (s *UserAuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	expireHours := s.cfg.Auth.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)

	claims := JWTClaims{
		UserID:         user.ID,
		Username:       user.Username,
		Role:           user.Role,
		HipaaCertified: user.HipaaCertified,
		DriverCapable:  user.IsDriver || user.Role == constants.RoleDriver,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.Auth.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *UserAuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Auth.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("%w: invalid token", ErrForbidden)
}

// ActorFromToken 从 Token 构造操作者上下文
func (s *UserAuthService) ActorFromToken(tokenString string) (ActorContext, error) {
	claims, err := s.ParseJWT(tokenString)
	if err != nil {
		return ActorContext{}, err
	}
	return ActorContext{
		UserID:         claims.UserID,
		Username:       claims.Username,
		Role:           claims.Role,
		HipaaCertified: claims.HipaaCertified,
		DriverCapable:  claims.DriverCapable,
	}, nil
}

// Login 用户登录
func (s *UserAuthService) Login(username, password string) (*models.User, string, time.Time, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: invalid username or password", ErrForbidden)
	}
	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: invalid username or password", ErrForbidden)
	}

	tokenString, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Updates(user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventLogin, NewActorFromUser(user))
		return nil
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user.LastLoginAt = &now
	return user, tokenString, expiresAt, nil
}

// ChangePassword 修改本人密码
func (s *UserAuthService) ChangePassword(actor ActorContext, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(actor.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, actor.UserID)
	}
	if err := s.VerifyPassword(user.PasswordHash, oldPassword); err != nil {
		return fmt.Errorf("%w: old password mismatch", ErrForbidden)
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"password_hash":        hash,
			"must_change_password": false,
		}
		if err := s.userRepo.WithTx(tx).Updates(user.ID, updates); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventChangePassword, actor)
		return nil
	})
}

// ResetPassword 管理员重置他人密码，强制下次登录改密
func (s *UserAuthService) ResetPassword(actor ActorContext, username, newPassword string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admin may reset passwords", ErrForbidden)
	}
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"password_hash":        hash,
			"must_change_password": true,
		}
		if err := s.userRepo.WithTx(tx).Updates(user.ID, updates); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventResetPassword, actor)
		return nil
	})
}

// CreateUserInput 创建账号输入
type CreateUserInput struct {
	Username            string
	Name                string
	Email               string
	Telephone           string
	Password            string
	Role                string
	HipaaCertified      bool
	IsDriver            bool
	AvailabilityNotes   string
	DriverLicenseStatus string
	Vehicle             string
}

// CreateUser 创建账号（admin）
func (s *UserAuthService) CreateUser(actor ActorContext, input CreateUserInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admin may create users", ErrForbidden)
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	switch input.Role {
	case constants.RoleAdmin, constants.RoleLead, constants.RoleStaff, constants.RoleDriver, constants.RoleVolunteer:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %s already exists", ErrValidation, username)
	}
	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:            username,
		Name:                input.Name,
		Email:               input.Email,
		Telephone:           input.Telephone,
		PasswordHash:        hash,
		Role:                input.Role,
		HipaaCertified:      input.HipaaCertified,
		IsDriver:            input.IsDriver,
		AvailabilityNotes:   input.AvailabilityNotes,
		DriverLicenseStatus: input.DriverLicenseStatus,
		Vehicle:             input.Vehicle,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers 列出全部账号（admin / lead / staff）
func (s *UserAuthService) ListUsers(actor ActorContext) ([]models.User, error) {
	switch actor.Role {
	case constants.RoleAdmin, constants.RoleLead, constants.RoleStaff:
	default:
		return nil, fmt.Errorf("%w: role %s may not list users", ErrForbidden, actor.Role)
	}
	return s.userRepo.List()
}

// AvailableDrivers 列出具备司机能力的账号
func (s *UserAuthService) AvailableDrivers(actor ActorContext) ([]models.User, error) {
	switch actor.Role {
	case constants.RoleAdmin, constants.RoleLead, constants.RoleStaff:
	default:
		return nil, fmt.Errorf("%w: role %s may not list drivers", ErrForbidden, actor.Role)
	}
	return s.userRepo.ListDrivers()
}
