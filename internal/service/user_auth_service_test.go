package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/config"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	audit := NewAuditService(repository.NewAuditLogRepository(db), authzSvc)
	cfg := &config.Config{
		Auth: config.AuthConfig{SecretKey: "test-secret", ExpireHours: 2, MinPasswordLength: 8},
	}
	return NewUserAuthService(cfg, repository.NewUserRepository(db), audit), db
}

func seedServiceUser(t *testing.T, svc *UserAuthService, db *gorm.DB, username, password, role string, hipaa, driver bool) *models.User {
	t.Helper()
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := models.User{
		Username:       username,
		Name:           username,
		PasswordHash:   hash,
		Role:           role,
		HipaaCertified: hipaa,
		IsDriver:       driver,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return &user
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)
	seedServiceUser(t, svc, db, "hauler", "firewood-pass", constants.RoleDriver, false, true)

	user, token, expiresAt, err := svc.Login("HAULER", "firewood-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login recorded")
	}
	if time.Until(expiresAt) > 2*time.Hour+time.Minute {
		t.Fatalf("token expiry too far out: %v", expiresAt)
	}

	actor, err := svc.ActorFromToken(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "hauler" || actor.Role != constants.RoleDriver || !actor.DriverCapable {
		t.Fatalf("actor context mismatch: %+v", actor)
	}

	var count int64
	if err := db.Model(&models.AuditLog{}).Where("event = ?", constants.AuditEventLogin).Count(&count).Error; err != nil {
		t.Fatalf("count audit rows failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected login audited, got %d rows", count)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)
	seedServiceUser(t, svc, db, "office", "firewood-pass", constants.RoleStaff, false, false)

	if _, _, _, err := svc.Login("office", "wrong"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected wrong password rejected, got: %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "whatever"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected unknown user rejected, got: %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)
	seedServiceUser(t, svc, db, "office", "firewood-pass", constants.RoleStaff, false, false)

	_, token, _, err := svc.Login("office", "firewood-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.ActorFromToken(token + "x"); err == nil {
		t.Fatalf("expected tampered token rejected")
	}
}

func TestChangePassword(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)
	user := seedServiceUser(t, svc, db, "office", "firewood-pass", constants.RoleStaff, false, false)
	actor := NewActorFromUser(user)

	if err := svc.ChangePassword(actor, "wrong", "new-password-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected old password check, got: %v", err)
	}
	if err := svc.ChangePassword(actor, "firewood-pass", "short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected min length check, got: %v", err)
	}
	if err := svc.ChangePassword(actor, "firewood-pass", "new-password-1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, _, err := svc.Login("office", "new-password-1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestResetPasswordAdminOnly(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)
	seedServiceUser(t, svc, db, "office", "firewood-pass", constants.RoleStaff, false, false)

	if err := svc.ResetPassword(staffActor, "office", "reset-pass-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected non-admin reset forbidden, got: %v", err)
	}
	if err := svc.ResetPassword(adminActor, "office", "reset-pass-1"); err != nil {
		t.Fatalf("admin reset failed: %v", err)
	}

	user, _, _, err := svc.Login("office", "reset-pass-1")
	if err != nil {
		t.Fatalf("login after reset failed: %v", err)
	}
	if !user.MustChangePassword {
		t.Fatalf("expected must-change flag after reset")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	if _, err := svc.CreateUser(staffActor, CreateUserInput{Username: "x", Password: "long-enough-1", Role: constants.RoleStaff}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected non-admin create forbidden, got: %v", err)
	}
	if _, err := svc.CreateUser(adminActor, CreateUserInput{Username: "x", Password: "long-enough-1", Role: "boss"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected unknown role rejected, got: %v", err)
	}

	user, err := svc.CreateUser(adminActor, CreateUserInput{
		Username: "hauler",
		Name:     "Hauler",
		Password: "long-enough-1",
		Role:     constants.RoleVolunteer,
		IsDriver: true,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := svc.CreateUser(adminActor, CreateUserInput{Username: "HAULER", Password: "long-enough-1", Role: constants.RoleVolunteer}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected duplicate username rejected, got: %v", err)
	}

	drivers, err := svc.AvailableDrivers(leadActor)
	if err != nil {
		t.Fatalf("list drivers failed: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != user.ID {
		t.Fatalf("expected driver-capable volunteer listed, got %+v", drivers)
	}
}
