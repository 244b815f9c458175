package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"gorm.io/gorm"
)

// MotdService 公告横幅服务
type MotdService struct {
	motdRepo repository.MotdRepository
	audit    *AuditService
	authzSvc *authz.Service
}

// NewMotdService 创建公告服务
func NewMotdService(motdRepo repository.MotdRepository, audit *AuditService, authzSvc *authz.Service) *MotdService {
	return &MotdService{motdRepo: motdRepo, audit: audit, authzSvc: authzSvc}
}

// CreateMotd 发布公告（admin）
func (s *MotdService) CreateMotd(actor ActorContext, message string, activeFrom, activeTo *time.Time) (*models.Motd, error) {
	if err := s.enforce(actor, authz.ActionCreate); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: motd message is required", ErrValidation)
	}
	if activeFrom != nil && activeTo != nil && activeTo.Before(*activeFrom) {
		return nil, fmt.Errorf("%w: active window end before start", ErrValidation)
	}

	motd := &models.Motd{
		Message:         trimmed,
		ActiveFrom:      activeFrom,
		ActiveTo:        activeTo,
		CreatedByUserID: actor.UserID,
	}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.motdRepo.WithTx(tx).Create(motd); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventCreateMotd, actor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return motd, nil
}

// DeleteMotd 下线公告（admin）
func (s *MotdService) DeleteMotd(actor ActorContext, motdID string) error {
	if err := s.enforce(actor, authz.ActionDelete); err != nil {
		return err
	}
	motd, err := s.motdRepo.GetByID(motdID)
	if err != nil {
		return err
	}
	if motd == nil {
		return fmt.Errorf("%w: motd %s", ErrNotFound, motdID)
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.motdRepo.WithTx(tx).SoftDelete(motd.ID); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventDeleteMotd, actor)
		return nil
	})
}

// ListActiveMotds 列出当前生效的公告（全角色可见）
func (s *MotdService) ListActiveMotds(actor ActorContext) ([]models.Motd, error) {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectMotd, authz.ActionRead)
	if err != nil {
		return nil, err
	}
	if !allow {
		return nil, fmt.Errorf("%w: role %s may not read motd", ErrForbidden, actor.Role)
	}
	return s.motdRepo.List(true, time.Now())
}

// ListAllMotds 列出全部公告（admin）
func (s *MotdService) ListAllMotds(actor ActorContext) ([]models.Motd, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admin may list all motds", ErrForbidden)
	}
	return s.motdRepo.List(false, time.Now())
}

func (s *MotdService) enforce(actor ActorContext, action string) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectMotd, action)
	if err != nil {
		return err
	}
	if !allow {
		return fmt.Errorf("%w: role %s may not %s motd", ErrForbidden, actor.Role, action)
	}
	return nil
}
