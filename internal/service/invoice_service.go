package service

import (
	"fmt"
	"time"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/config"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// invoiceStatusTransitions 发票状态机
var invoiceStatusTransitions = map[string]map[string]bool{
	constants.InvoiceStatusDraft: {
		constants.InvoiceStatusSent: true,
		constants.InvoiceStatusVoid: true,
	},
	constants.InvoiceStatusSent: {
		constants.InvoiceStatusPaid: true,
		constants.InvoiceStatusVoid: true,
	},
}

// InvoiceService 发票服务
// 基于已完成的工单生成建议捐赠发票，不做真实收款。
type InvoiceService struct {
	cfg         *config.Config
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.WorkOrderRepository
	audit       *AuditService
	authzSvc    *authz.Service
}

// NewInvoiceService 创建发票服务
func NewInvoiceService(cfg *config.Config, invoiceRepo repository.InvoiceRepository, orderRepo repository.WorkOrderRepository, audit *AuditService, authzSvc *authz.Service) *InvoiceService {
	return &InvoiceService{
		cfg:         cfg,
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		audit:       audit,
		authzSvc:    authzSvc,
	}
}

// CreateFromWorkOrder 从已完成工单生成发票
func (s *InvoiceService) CreateFromWorkOrder(actor ActorContext, workOrderID, notes string) (*models.Invoice, error) {
	if err := s.enforce(actor, authz.ActionCreate); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(workOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: work order %s", ErrNotFound, workOrderID)
	}
	if order.Status != constants.WorkOrderStatusCompleted {
		return nil, fmt.Errorf("%w: invoices require a completed work order, got %s", ErrValidation, order.Status)
	}

	quantity := order.ResolvedQuantity()
	unitPrice := decimal.NewFromFloat(s.cfg.Invoice.SuggestedDonationPerCord)
	lineTotal := models.NewMoneyFromDecimal(quantity.Decimal.Mul(unitPrice))

	lineItems := models.InvoiceLineItems{
		{
			ID:          uuid.NewString(),
			Description: fmt.Sprintf("Firewood %s - %s cords", order.FulfillmentMode, quantity.Decimal.String()),
			Quantity:    quantity,
			UnitPrice:   models.NewMoneyFromDecimal(unitPrice),
			Total:       lineTotal,
		},
	}

	invoiceNumber, err := s.nextInvoiceNumber()
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		WorkOrderID:   order.ID,
		InvoiceNumber: invoiceNumber,
		InvoiceDate:   time.Now(),
		LineItems:     lineItems,
		Subtotal:      lineTotal,
		Tax:           models.NewMoneyFromDecimal(decimal.Zero),
		Total:         lineTotal,
		ClientID:      order.ClientID,
		ClientNumber:  order.ClientNumber,
		ClientName:    order.ClientName,
		AddressLine1:  order.AddressLine1,
		City:          order.City,
		State:         order.State,
		PostalCode:    order.PostalCode,
		Notes:         notes,
		Status:        constants.InvoiceStatusDraft,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.invoiceRepo.WithTx(tx).Create(invoice); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventCreateInvoice, actor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// UpdateStatus 流转发票状态
func (s *InvoiceService) UpdateStatus(actor ActorContext, invoiceID, nextStatus string) error {
	if err := s.enforce(actor, authz.ActionUpdate); err != nil {
		return err
	}
	invoice, err := s.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return fmt.Errorf("%w: invoice %s", ErrNotFound, invoiceID)
	}
	if invoice.Status == nextStatus {
		return nil
	}
	nexts, ok := invoiceStatusTransitions[invoice.Status]
	if !ok || !nexts[nextStatus] {
		return fmt.Errorf("%w: cannot transition invoice from %s to %s", ErrValidation, invoice.Status, nextStatus)
	}
	return s.invoiceRepo.Updates(invoice.ID, map[string]interface{}{"status": nextStatus})
}

// GetInvoice 获取单张发票
func (s *InvoiceService) GetInvoice(actor ActorContext, invoiceID string) (*models.Invoice, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, invoiceID)
	}
	return invoice, nil
}

// ListInvoices 查询发票列表
func (s *InvoiceService) ListInvoices(actor ActorContext, filter repository.InvoiceListFilter) ([]models.Invoice, int64, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, 0, err
	}
	return s.invoiceRepo.List(filter)
}

func (s *InvoiceService) nextInvoiceNumber() (string, error) {
	count, err := s.invoiceRepo.Count()
	if err != nil {
		return "", err
	}
	prefix := s.cfg.Invoice.NumberPrefix
	if prefix == "" {
		prefix = "FB"
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, time.Now().Year(), count+1), nil
}

func (s *InvoiceService) enforce(actor ActorContext, action string) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectInvoices, action)
	if err != nil {
		return err
	}
	if !allow {
		return fmt.Errorf("%w: role %s may not %s invoices", ErrForbidden, actor.Role, action)
	}
	return nil
}
