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

// InventoryService 库存管理服务
// 负责物料的增删改查；reserved_quantity 只由库存台账修改，这里不提供入口。
type InventoryService struct {
	itemRepo repository.InventoryItemRepository
	audit    *AuditService
	authzSvc *authz.Service
}

// NewInventoryService 创建库存管理服务
func NewInventoryService(itemRepo repository.InventoryItemRepository, audit *AuditService, authzSvc *authz.Service) *InventoryService {
	return &InventoryService{itemRepo: itemRepo, audit: audit, authzSvc: authzSvc}
}

// CreateInventoryItemInput 创建物料输入
type CreateInventoryItemInput struct {
	Name             string
	Category         string
	Unit             string
	QuantityOnHand   models.Quantity
	ReorderThreshold models.Quantity
	ReorderAmount    *models.Quantity
	Notes            string
}

// UpdateInventoryItemInput 更新物料输入（nil 表示不改动）
type UpdateInventoryItemInput struct {
	Name             *string
	Category         *string
	Unit             *string
	QuantityOnHand   *models.Quantity
	ReorderThreshold *models.Quantity
	ReorderAmount    *models.Quantity
	Notes            *string
}

// CreateInventoryItem 创建库存物料
func (s *InventoryService) CreateInventoryItem(actor ActorContext, input CreateInventoryItemInput) (*models.InventoryItem, error) {
	if err := s.enforce(actor, authz.ActionCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrValidation)
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, fmt.Errorf("%w: item unit is required", ErrValidation)
	}
	if input.QuantityOnHand.Decimal.IsNegative() || input.ReorderThreshold.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: quantities must not be negative", ErrValidation)
	}

	item := &models.InventoryItem{
		Name:             name,
		Category:         input.Category,
		Unit:             unit,
		QuantityOnHand:   input.QuantityOnHand,
		ReorderThreshold: input.ReorderThreshold,
		ReorderAmount:    input.ReorderAmount,
		Notes:            input.Notes,
		CreatedByUserID:  actor.UserID,
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.WithTx(tx).Create(item); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventCreateInventoryItem, actor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateInventoryItem 更新库存物料并逐字段记录审计
// 在库量可以手工盘点修正，但不能低于当前预留量。
func (s *InventoryService) UpdateInventoryItem(actor ActorContext, itemID string, input UpdateInventoryItemInput) error {
	if err := s.enforce(actor, authz.ActionUpdate); err != nil {
		return err
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		itemRepo := s.itemRepo.WithTx(tx)
		item, err := itemRepo.GetByIDForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: inventory item %s", ErrNotFound, itemID)
		}

		updates := map[string]interface{}{}
		entity := models.InventoryItem{}.TableName()
		applyString := func(field string, oldValue string, newValue *string) {
			if newValue == nil || *newValue == oldValue {
				return
			}
			updates[field] = *newValue
			s.audit.RecordFieldChange(tx, constants.AuditEventUpdateInventoryItem, actor,
				entity, item.ID, field, &oldValue, newValue)
		}
		applyQuantity := func(field string, oldValue models.Quantity, newValue *models.Quantity) {
			if newValue == nil || newValue.Decimal.Equal(oldValue.Decimal) {
				return
			}
			updates[field] = *newValue
			old := oldValue.Decimal.String()
			next := newValue.Decimal.String()
			s.audit.RecordFieldChange(tx, constants.AuditEventUpdateInventoryItem, actor,
				entity, item.ID, field, &old, &next)
		}

		applyString("name", item.Name, input.Name)
		applyString("category", item.Category, input.Category)
		applyString("unit", item.Unit, input.Unit)
		applyString("notes", item.Notes, input.Notes)
		applyQuantity("reorder_threshold", item.ReorderThreshold, input.ReorderThreshold)

		if input.QuantityOnHand != nil {
			if input.QuantityOnHand.Decimal.IsNegative() {
				return fmt.Errorf("%w: on-hand quantity must not be negative", ErrValidation)
			}
			if input.QuantityOnHand.Decimal.LessThan(item.ReservedQuantity.Decimal) {
				return fmt.Errorf("%w: on-hand quantity %s below reserved %s",
					ErrValidation, input.QuantityOnHand.Decimal.String(), item.ReservedQuantity.Decimal.String())
			}
			applyQuantity("quantity_on_hand", item.QuantityOnHand, input.QuantityOnHand)
		}
		if input.ReorderAmount != nil {
			old := ""
			if item.ReorderAmount != nil {
				old = item.ReorderAmount.Decimal.String()
			}
			next := input.ReorderAmount.Decimal.String()
			if old != next {
				updates["reorder_amount"] = *input.ReorderAmount
				s.audit.RecordFieldChange(tx, constants.AuditEventUpdateInventoryItem, actor,
					entity, item.ID, "reorder_amount", &old, &next)
			}
		}

		if len(updates) == 0 {
			return nil
		}
		return itemRepo.Updates(item.ID, updates)
	})
}

// DeleteInventoryItem 软删除库存物料（仍有预留时拒绝）
func (s *InventoryService) DeleteInventoryItem(actor ActorContext, itemID string) error {
	if err := s.enforce(actor, authz.ActionDelete); err != nil {
		return err
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		itemRepo := s.itemRepo.WithTx(tx)
		item, err := itemRepo.GetByIDForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: inventory item %s", ErrNotFound, itemID)
		}
		if item.ReservedQuantity.Decimal.Sign() > 0 {
			return fmt.Errorf("%w: item %q still has reserved stock", ErrValidation, item.Name)
		}
		if err := itemRepo.SoftDelete(item.ID); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventDeleteInventoryItem, actor)
		return nil
	})
}

// GetInventoryItem 获取单个库存物料
func (s *InventoryService) GetInventoryItem(actor ActorContext, itemID string) (*models.InventoryItem, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: inventory item %s", ErrNotFound, itemID)
	}
	return item, nil
}

// ListInventoryItems 查询库存列表
func (s *InventoryService) ListInventoryItems(actor ActorContext, filter repository.InventoryListFilter) ([]models.InventoryItem, int64, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, 0, err
	}
	return s.itemRepo.List(filter)
}

// ListLowStockItems 列出可用量低于补货阈值的物料
func (s *InventoryService) ListLowStockItems(actor ActorContext) ([]models.InventoryItem, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	items, _, err := s.itemRepo.List(repository.InventoryListFilter{})
	if err != nil {
		return nil, err
	}
	low := make([]models.InventoryItem, 0)
	for _, item := range items {
		if item.Available().Decimal.LessThanOrEqual(item.ReorderThreshold.Decimal) {
			low = append(low, item)
		}
	}
	return low, nil
}

func (s *InventoryService) enforce(actor ActorContext, action string) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectInventory, action)
	if err != nil {
		return err
	}
	if !allow {
		return fmt.Errorf("%w: role %s may not %s inventory", ErrForbidden, actor.Role, action)
	}
	return nil
}
