package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"gorm.io/gorm"
)

// ClientService 客户服务
type ClientService struct {
	clientRepo repository.ClientRepository
	audit      *AuditService
	authzSvc   *authz.Service
}

// NewClientService 创建客户服务
func NewClientService(clientRepo repository.ClientRepository, audit *AuditService, authzSvc *authz.Service) *ClientService {
	return &ClientService{clientRepo: clientRepo, audit: audit, authzSvc: authzSvc}
}

// CreateClientInput 创建客户输入
type CreateClientInput struct {
	ClientNumber    string
	ClientTitle     string
	Name            string
	AddressLine1    string
	AddressLine2    string
	City            string
	State           string
	PostalCode      string
	MailingAddress  string
	Telephone       string
	Email           string
	DateOfOnboard   *time.Time
	ReferralSource  string
	ReferringAgency string
	GateCombo       string
	Notes           string
}

// UpdateClientInput 更新客户输入（nil 表示不改动）
type UpdateClientInput struct {
	ClientTitle     *string
	Name            *string
	AddressLine1    *string
	AddressLine2    *string
	City            *string
	State           *string
	PostalCode      *string
	MailingAddress  *string
	Telephone       *string
	Email           *string
	ReferralSource  *string
	ReferringAgency *string
	ApprovalStatus  *string
	DenialReason    *string
	GateCombo       *string
	Notes           *string
}

// CreateClient 创建客户
func (s *ClientService) CreateClient(actor ActorContext, input CreateClientInput) (*models.Client, error) {
	if err := s.enforce(actor, authz.ActionCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrValidation)
	}

	clientNumber := strings.TrimSpace(input.ClientNumber)
	if clientNumber == "" {
		clientNumber = generateClientNumber()
	} else {
		existing, err := s.clientRepo.GetByClientNumber(clientNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: client number %s already exists", ErrValidation, clientNumber)
		}
	}

	client := &models.Client{
		ClientNumber:    clientNumber,
		ClientTitle:     input.ClientTitle,
		Name:            name,
		AddressLine1:    input.AddressLine1,
		AddressLine2:    input.AddressLine2,
		City:            input.City,
		State:           input.State,
		PostalCode:      input.PostalCode,
		MailingAddress:  input.MailingAddress,
		Telephone:       input.Telephone,
		Email:           input.Email,
		DateOfOnboard:   input.DateOfOnboard,
		ReferralSource:  input.ReferralSource,
		ReferringAgency: input.ReferringAgency,
		ApprovalStatus:  constants.ApprovalStatusPending,
		GateCombo:       input.GateCombo,
		Notes:           input.Notes,
		CreatedByUserID: actor.UserID,
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.clientRepo.WithTx(tx).Create(client); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventCreateClient, actor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// UpdateClient 更新客户并逐字段记录审计
func (s *ClientService) UpdateClient(actor ActorContext, clientID string, input UpdateClientInput) error {
	if err := s.enforce(actor, authz.ActionUpdate); err != nil {
		return err
	}
	if input.ApprovalStatus != nil {
		switch *input.ApprovalStatus {
		case constants.ApprovalStatusApproved, constants.ApprovalStatusDenied, constants.ApprovalStatusPending:
		default:
			return fmt.Errorf("%w: unknown approval status %q", ErrValidation, *input.ApprovalStatus)
		}
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		clientRepo := s.clientRepo.WithTx(tx)
		client, err := clientRepo.GetByID(clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("%w: client %s", ErrNotFound, clientID)
		}

		updates := map[string]interface{}{}
		entity := models.Client{}.TableName()
		apply := func(field string, oldValue string, newValue *string) {
			if newValue == nil || *newValue == oldValue {
				return
			}
			updates[field] = *newValue
			s.audit.RecordFieldChange(tx, constants.AuditEventUpdateClient, actor,
				entity, client.ID, field, &oldValue, newValue)
		}

		apply("client_title", client.ClientTitle, input.ClientTitle)
		apply("name", client.Name, input.Name)
		apply("address_line1", client.AddressLine1, input.AddressLine1)
		apply("address_line2", client.AddressLine2, input.AddressLine2)
		apply("city", client.City, input.City)
		apply("state", client.State, input.State)
		apply("postal_code", client.PostalCode, input.PostalCode)
		apply("mailing_address", client.MailingAddress, input.MailingAddress)
		apply("telephone", client.Telephone, input.Telephone)
		apply("email", client.Email, input.Email)
		apply("referral_source", client.ReferralSource, input.ReferralSource)
		apply("referring_agency", client.ReferringAgency, input.ReferringAgency)
		apply("approval_status", client.ApprovalStatus, input.ApprovalStatus)
		apply("denial_reason", client.DenialReason, input.DenialReason)
		apply("gate_combo", client.GateCombo, input.GateCombo)
		apply("notes", client.Notes, input.Notes)

		if len(updates) == 0 {
			return nil
		}
		return clientRepo.Updates(client.ID, updates)
	})
}

// DeleteClient 软删除客户
func (s *ClientService) DeleteClient(actor ActorContext, clientID string) error {
	if err := s.enforce(actor, authz.ActionDelete); err != nil {
		return err
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		clientRepo := s.clientRepo.WithTx(tx)
		client, err := clientRepo.GetByID(clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("%w: client %s", ErrNotFound, clientID)
		}
		if err := clientRepo.SoftDelete(client.ID); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventDeleteClient, actor)
		return nil
	})
}

// GetClient 获取单个客户（投影后）
func (s *ClientService) GetClient(actor ActorContext, clientID string) (*models.Client, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: client %s", ErrNotFound, clientID)
	}
	projected := ProjectClients([]models.Client{*client}, actor)
	return &projected[0], nil
}

// ListClients 查询客户列表（投影后）
func (s *ClientService) ListClients(actor ActorContext, filter repository.ClientListFilter) ([]models.Client, int64, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, 0, err
	}
	clients, total, err := s.clientRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	return ProjectClients(clients, actor), total, nil
}

// CheckNameConflict 模糊子串匹配疑似重复客户
// 启发式提示，不是唯一性约束；录入前由办公室人员人工确认。
func (s *ClientService) CheckNameConflict(actor ActorContext, name string) ([]models.Client, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, nil
	}
	matches, err := s.clientRepo.ListByNameLike(trimmed)
	if err != nil {
		return nil, err
	}
	return ProjectClients(matches, actor), nil
}

func (s *ClientService) enforce(actor ActorContext, action string) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectClients, action)
	if err != nil {
		return err
	}
	if !allow {
		return fmt.Errorf("%w: role %s may not %s clients", ErrForbidden, actor.Role, action)
	}
	return nil
}

func generateClientNumber() string {
	now := time.Now().Format("20060102")
	return fmt.Sprintf("FW%s%s", now, randNumeric(4))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
