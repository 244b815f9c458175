package service

import (
	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/logger"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"gorm.io/gorm"
)

// AuditService 审计记录服务
// 审计行与触发它的业务写入在同一事务内落库；审计自身失败只记日志不回滚业务。
type AuditService struct {
	auditRepo repository.AuditLogRepository
	authzSvc  *authz.Service
}

// NewAuditService 创建审计服务
func NewAuditService(auditRepo repository.AuditLogRepository, authzSvc *authz.Service) *AuditService {
	return &AuditService{auditRepo: auditRepo, authzSvc: authzSvc}
}

// RecordEvent 追加一条事件级审计行
func (s *AuditService) RecordEvent(tx *gorm.DB, event string, actor ActorContext) {
	entry := &models.AuditLog{
		Event: event,
		Role:  actor.Role,
		Actor: actor.Username,
	}
	if err := s.auditRepo.WithTx(tx).Create(entry); err != nil {
		logger.Errorw("audit event write failed", "event", event, "actor", actor.Username, "error", err)
	}
}

// RecordFieldChange 追加一条字段级审计行
// 新旧值相同（含同时为空）时为空操作；多字段更新由调用方逐字段调用。
func (s *AuditService) RecordFieldChange(tx *gorm.DB, event string, actor ActorContext, entity, entityID, field string, oldValue, newValue *string) {
	if !fieldChanged(oldValue, newValue) {
		return
	}
	entry := &models.AuditLog{
		Event:    event,
		Role:     actor.Role,
		Actor:    actor.Username,
		Entity:   &entity,
		EntityID: &entityID,
		Field:    &field,
		OldValue: copyStringPtr(oldValue),
		NewValue: copyStringPtr(newValue),
	}
	if err := s.auditRepo.WithTx(tx).Create(entry); err != nil {
		logger.Errorw("audit field change write failed",
			"event", event, "entity", entity, "entity_id", entityID, "field", field, "error", err)
	}
}

// ListAuditLogs 审计回看（admin / lead）
func (s *AuditService) ListAuditLogs(actor ActorContext, filter repository.AuditLogListFilter) ([]models.AuditLog, int64, error) {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectAuditLogs, authz.ActionRead)
	if err != nil {
		return nil, 0, err
	}
	if !allow {
		return nil, 0, ErrForbidden
	}
	return s.auditRepo.List(filter)
}

func fieldChanged(oldValue, newValue *string) bool {
	if oldValue == nil && newValue == nil {
		return false
	}
	if oldValue != nil && newValue != nil {
		return *oldValue != *newValue
	}
	return true
}

func copyStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}

func stringPtr(v string) *string {
	return &v
}
