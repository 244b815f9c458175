package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupChangeRequestServiceTest(t *testing.T) *ChangeRequestService {
	t.Helper()
	dsn := fmt.Sprintf("file:change_request_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.ChangeRequest{}, &models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	audit := NewAuditService(repository.NewAuditLogRepository(db), authzSvc)
	return NewChangeRequestService(repository.NewChangeRequestRepository(db), audit, authzSvc)
}

func TestChangeRequestResolveFlow(t *testing.T) {
	svc := setupChangeRequestServiceTest(t)

	request, err := svc.CreateChangeRequest(volActor, "Update my phone number", "New number is 555-0142")
	if err != nil {
		t.Fatalf("volunteer change request create failed: %v", err)
	}
	if request.Status != constants.ChangeRequestStatusOpen {
		t.Fatalf("expected new request open, got %s", request.Status)
	}

	if _, err := svc.CreateChangeRequest(volActor, " ", "missing title"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected blank title rejected, got: %v", err)
	}

	if err := svc.ResolveChangeRequest(staffActor, request.ID, constants.ChangeRequestStatusApproved, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected staff resolve forbidden, got: %v", err)
	}
	if err := svc.ResolveChangeRequest(leadActor, request.ID, "deferred", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected unknown resolution rejected, got: %v", err)
	}
	if err := svc.BeginReview(volActor, request.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected volunteer review forbidden, got: %v", err)
	}
	if err := svc.BeginReview(leadActor, request.ID); err != nil {
		t.Fatalf("lead begin review failed: %v", err)
	}
	if err := svc.BeginReview(leadActor, request.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected re-review of in_review request rejected, got: %v", err)
	}
	if err := svc.ResolveChangeRequest(leadActor, request.ID, constants.ChangeRequestStatusApproved, "updated in profile"); err != nil {
		t.Fatalf("lead resolve failed: %v", err)
	}

	var resolved models.ChangeRequest
	if err := models.DB.First(&resolved, "id = ?", request.ID).Error; err != nil {
		t.Fatalf("load resolved request failed: %v", err)
	}
	if resolved.Status != constants.ChangeRequestStatusApproved {
		t.Fatalf("expected approved status, got %s", resolved.Status)
	}
	if resolved.ResolvedByUserID != leadActor.UserID {
		t.Fatalf("expected resolver %s, got %s", leadActor.UserID, resolved.ResolvedByUserID)
	}

	// 已裁决的申请不允许二次裁决
	if err := svc.ResolveChangeRequest(adminActor, request.ID, constants.ChangeRequestStatusRejected, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected double resolve rejected, got: %v", err)
	}

	var auditCount int64
	if err := models.DB.Model(&models.AuditLog{}).
		Where("entity_id = ? AND field_name = ?", request.ID, "status").
		Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows failed: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected one status audit row, got %d", auditCount)
	}
}

func TestChangeRequestListScopedToRequester(t *testing.T) {
	svc := setupChangeRequestServiceTest(t)

	if _, err := svc.CreateChangeRequest(volActor, "Swap my Tuesday shift", "Family trip that week"); err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if _, err := svc.CreateChangeRequest(driverActor, "Truck mirror cracked", "Needs replacement before next run"); err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	mine, total, err := svc.ListChangeRequests(volActor, repository.ChangeRequestListFilter{})
	if err != nil {
		t.Fatalf("volunteer list failed: %v", err)
	}
	if total != 1 || len(mine) != 1 || mine[0].RequestedByUserID != volActor.UserID {
		t.Fatalf("expected volunteer to see only own request, got total=%d rows=%d", total, len(mine))
	}

	all, total, err := svc.ListChangeRequests(leadActor, repository.ChangeRequestListFilter{})
	if err != nil {
		t.Fatalf("lead list failed: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected lead to see all requests, got total=%d rows=%d", total, len(all))
	}
}
