package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupMotdServiceTest(t *testing.T) *MotdService {
	t.Helper()
	dsn := fmt.Sprintf("file:motd_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Motd{}, &models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	audit := NewAuditService(repository.NewAuditLogRepository(db), authzSvc)
	return NewMotdService(repository.NewMotdRepository(db), audit, authzSvc)
}

func TestMotdAdminOnlyLifecycle(t *testing.T) {
	svc := setupMotdServiceTest(t)

	if _, err := svc.CreateMotd(staffActor, "Wood lot closed Friday", nil, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected staff motd create forbidden, got: %v", err)
	}
	motd, err := svc.CreateMotd(adminActor, "Wood lot closed Friday", nil, nil)
	if err != nil {
		t.Fatalf("admin motd create failed: %v", err)
	}

	active, err := svc.ListActiveMotds(volActor)
	if err != nil {
		t.Fatalf("volunteer motd list failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected one active motd, got %d", len(active))
	}

	if err := svc.DeleteMotd(leadActor, motd.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected lead motd delete forbidden, got: %v", err)
	}
	if err := svc.DeleteMotd(adminActor, motd.ID); err != nil {
		t.Fatalf("admin motd delete failed: %v", err)
	}
	active, err = svc.ListActiveMotds(volActor)
	if err != nil {
		t.Fatalf("motd list after delete failed: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active motds after delete, got %d", len(active))
	}
}

func TestMotdActiveWindow(t *testing.T) {
	svc := setupMotdServiceTest(t)

	past := time.Now().Add(-48 * time.Hour)
	pastEnd := time.Now().Add(-24 * time.Hour)
	if _, err := svc.CreateMotd(adminActor, "expired notice", &past, &pastEnd); err != nil {
		t.Fatalf("create expired motd failed: %v", err)
	}
	future := time.Now().Add(24 * time.Hour)
	if _, err := svc.CreateMotd(adminActor, "upcoming notice", &future, nil); err != nil {
		t.Fatalf("create future motd failed: %v", err)
	}
	if _, err := svc.CreateMotd(adminActor, "current notice", &past, &future); err != nil {
		t.Fatalf("create current motd failed: %v", err)
	}

	if _, err := svc.CreateMotd(adminActor, "backwards window", &future, &past); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected backwards window rejected, got: %v", err)
	}

	active, err := svc.ListActiveMotds(staffActor)
	if err != nil {
		t.Fatalf("motd list failed: %v", err)
	}
	if len(active) != 1 || active[0].Message != "current notice" {
		t.Fatalf("expected only current notice active, got %+v", active)
	}

	all, err := svc.ListAllMotds(adminActor)
	if err != nil {
		t.Fatalf("motd list all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected three motds total, got %d", len(all))
	}
}
