package service

import (
	"fmt"
	"strings"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"gorm.io/gorm"
)

// ChangeRequestService 变更申请服务
// 任何角色都可以提交申请；裁决权在 lead / admin。
type ChangeRequestService struct {
	requestRepo repository.ChangeRequestRepository
	audit       *AuditService
	authzSvc    *authz.Service
}

// NewChangeRequestService 创建变更申请服务
func NewChangeRequestService(requestRepo repository.ChangeRequestRepository, audit *AuditService, authzSvc *authz.Service) *ChangeRequestService {
	return &ChangeRequestService{requestRepo: requestRepo, audit: audit, authzSvc: authzSvc}
}

// CreateChangeRequest 提交变更申请
func (s *ChangeRequestService) CreateChangeRequest(actor ActorContext, title, description string) (*models.ChangeRequest, error) {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectChangeRequests, authz.ActionCreate)
	if err != nil {
		return nil, err
	}
	if !allow {
		return nil, fmt.Errorf("%w: role %s may not create change requests", ErrForbidden, actor.Role)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	request := &models.ChangeRequest{
		Title:             title,
		Description:       description,
		RequestedByUserID: actor.UserID,
		Status:            constants.ChangeRequestStatusOpen,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.WithTx(tx).Create(request); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventCreateChangeRequest, actor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// BeginReview 领取变更申请进入审阅（lead / admin）
func (s *ChangeRequestService) BeginReview(actor ActorContext, requestID string) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectChangeRequests, authz.ActionResolve)
	if err != nil {
		return err
	}
	if !allow {
		return fmt.Errorf("%w: role %s may not review change requests", ErrForbidden, actor.Role)
	}
	request, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return err
	}
	if request == nil {
		return fmt.Errorf("%w: change request %s", ErrNotFound, requestID)
	}
	if request.Status != constants.ChangeRequestStatusOpen {
		return fmt.Errorf("%w: change request is %s, not open", ErrValidation, request.Status)
	}
	return s.requestRepo.Updates(request.ID, map[string]interface{}{
		"status": constants.ChangeRequestStatusInReview,
	})
}

// ResolveChangeRequest 裁决变更申请（lead / admin）
func (s *ChangeRequestService) ResolveChangeRequest(actor ActorContext, requestID, resolution, notes string) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectChangeRequests, authz.ActionResolve)
	if err != nil {
		return err
	}
	if !allow {
		return fmt.Errorf("%w: role %s may not resolve change requests", ErrForbidden, actor.Role)
	}
	if resolution != constants.ChangeRequestStatusApproved && resolution != constants.ChangeRequestStatusRejected {
		return fmt.Errorf("%w: resolution must be approved or rejected, got %q", ErrValidation, resolution)
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		requestRepo := s.requestRepo.WithTx(tx)
		request, err := requestRepo.GetByID(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return fmt.Errorf("%w: change request %s", ErrNotFound, requestID)
		}
		if request.Status == constants.ChangeRequestStatusApproved || request.Status == constants.ChangeRequestStatusRejected {
			return fmt.Errorf("%w: change request already resolved as %s", ErrValidation, request.Status)
		}

		updates := map[string]interface{}{
			"status":              resolution,
			"resolution_notes":    notes,
			"resolved_by_user_id": actor.UserID,
		}
		if err := requestRepo.Updates(request.ID, updates); err != nil {
			return err
		}

		oldStatus := request.Status
		s.audit.RecordFieldChange(tx, constants.AuditEventResolveChange, actor,
			models.ChangeRequest{}.TableName(), request.ID, "status", &oldStatus, &resolution)
		return nil
	})
}

// ListChangeRequests 查询变更申请列表
// 非裁决角色只能看到自己提交的申请。
func (s *ChangeRequestService) ListChangeRequests(actor ActorContext, filter repository.ChangeRequestListFilter) ([]models.ChangeRequest, int64, error) {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectChangeRequests, authz.ActionRead)
	if err != nil {
		return nil, 0, err
	}
	if !allow {
		return nil, 0, fmt.Errorf("%w: role %s may not read change requests", ErrForbidden, actor.Role)
	}

	canResolve, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectChangeRequests, authz.ActionResolve)
	if err != nil {
		return nil, 0, err
	}
	if !canResolve {
		filter.RequestedByUserID = actor.UserID
	}
	return s.requestRepo.List(filter)
}
