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

// allowedTransitions 工单状态机
// cancelled 可从任意非终态进入；completed 与 cancelled 为终态。
var allowedTransitions = map[string]map[string]bool{
	constants.WorkOrderStatusDraft: {
		constants.WorkOrderStatusScheduled: true,
		constants.WorkOrderStatusCancelled: true,
	},
	constants.WorkOrderStatusScheduled: {
		constants.WorkOrderStatusInProgress: true,
		constants.WorkOrderStatusCompleted:  true,
		constants.WorkOrderStatusDelivered:  true,
		constants.WorkOrderStatusIssue:      true,
		constants.WorkOrderStatusCancelled:  true,
	},
	constants.WorkOrderStatusInProgress: {
		constants.WorkOrderStatusCompleted: true,
		constants.WorkOrderStatusDelivered: true,
		constants.WorkOrderStatusIssue:     true,
		constants.WorkOrderStatusCancelled: true,
	},
	constants.WorkOrderStatusDelivered: {
		constants.WorkOrderStatusCompleted: true,
		constants.WorkOrderStatusIssue:     true,
	},
	constants.WorkOrderStatusIssue: {
		constants.WorkOrderStatusInProgress: true,
		constants.WorkOrderStatusCancelled:  true,
	},
}

// driverTargetStatuses 司机能力操作者允许进入的目标状态白名单
var driverTargetStatuses = map[string]bool{
	constants.WorkOrderStatusInProgress: true,
	constants.WorkOrderStatusDelivered:  true,
	constants.WorkOrderStatusCompleted:  true,
	constants.WorkOrderStatusIssue:      true,
}

// mileageRequiredStatuses 需要里程数的目标状态
var mileageRequiredStatuses = map[string]bool{
	constants.WorkOrderStatusCompleted: true,
	constants.WorkOrderStatusDelivered: true,
}

// WorkOrderService 工单服务
// 状态流转、库存调整、日历联动与审计写入在同一事务内完成。
type WorkOrderService struct {
	orderRepo  repository.WorkOrderRepository
	eventRepo  repository.DeliveryEventRepository
	clientRepo repository.ClientRepository
	ledger     *InventoryLedger
	audit      *AuditService
	authzSvc   *authz.Service
}

// NewWorkOrderService 创建工单服务
func NewWorkOrderService(orderRepo repository.WorkOrderRepository, eventRepo repository.DeliveryEventRepository, clientRepo repository.ClientRepository, ledger *InventoryLedger, audit *AuditService, authzSvc *authz.Service) *WorkOrderService {
	return &WorkOrderService{
		orderRepo:  orderRepo,
		eventRepo:  eventRepo,
		clientRepo: clientRepo,
		ledger:     ledger,
		audit:      audit,
		authzSvc:   authzSvc,
	}
}

// CreateWorkOrderInput 创建工单输入
type CreateWorkOrderInput struct {
	ClientID            string
	Directions          string
	GateCombo           string
	Notes               string
	HeatSourceGas       bool
	HeatSourceElectric  bool
	HeatSourceOther     string
	ScheduledDate       *time.Time
	Status              string
	FulfillmentMode     string
	DeliverySizeCords   models.Quantity
	PickupQuantityCords models.Quantity
	Assignees           []string
	PairedOrderID       *string
}

// UpdateWorkOrderInput 更新工单输入（nil 表示不改动）
type UpdateWorkOrderInput struct {
	Directions    *string
	GateCombo     *string
	Notes         *string
	ScheduledDate *time.Time
	ClearSchedule bool
}

// CreateWorkOrder 创建工单
// 固化客户快照与库存绑定；初始为占用状态时在同一事务内预留库存。
func (s *WorkOrderService) CreateWorkOrder(actor ActorContext, input CreateWorkOrderInput) (*models.WorkOrder, error) {
	if err := s.enforce(actor, authz.ActionCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ClientID) == "" {
		return nil, fmt.Errorf("%w: client_id is required", ErrValidation)
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = constants.WorkOrderStatusDraft
	}
	if status != constants.WorkOrderStatusDraft && status != constants.WorkOrderStatusScheduled {
		return nil, fmt.Errorf("%w: initial status must be draft or scheduled, got %q", ErrValidation, status)
	}
	if status == constants.WorkOrderStatusScheduled && input.ScheduledDate == nil {
		return nil, fmt.Errorf("%w: scheduled status requires a scheduled date", ErrValidation)
	}

	mode := strings.TrimSpace(input.FulfillmentMode)
	if mode == "" {
		mode = constants.FulfillmentModeDelivery
	}
	if mode != constants.FulfillmentModeDelivery && mode != constants.FulfillmentModePickup {
		return nil, fmt.Errorf("%w: unknown fulfillment mode %q", ErrValidation, mode)
	}
	if input.DeliverySizeCords.Decimal.IsNegative() || input.PickupQuantityCords.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: cord quantities must not be negative", ErrValidation)
	}

	client, err := s.clientRepo.GetByID(input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: client %s", ErrNotFound, input.ClientID)
	}

	trackedItem, err := s.ledger.ResolveTrackedItem()
	if err != nil {
		return nil, err
	}

	order := &models.WorkOrder{
		ClientID:            client.ID,
		ClientNumber:        client.ClientNumber,
		ClientTitle:         client.ClientTitle,
		ClientName:          client.Name,
		AddressLine1:        client.AddressLine1,
		AddressLine2:        client.AddressLine2,
		City:                client.City,
		State:               client.State,
		PostalCode:          client.PostalCode,
		Telephone:           client.Telephone,
		Email:               client.Email,
		Directions:          input.Directions,
		GateCombo:           input.GateCombo,
		Notes:               input.Notes,
		HeatSourceGas:       input.HeatSourceGas,
		HeatSourceElectric:  input.HeatSourceElectric,
		HeatSourceOther:     input.HeatSourceOther,
		ScheduledDate:       input.ScheduledDate,
		Status:              status,
		FulfillmentMode:     mode,
		DeliverySizeCords:   input.DeliverySizeCords,
		PickupQuantityCords: input.PickupQuantityCords,
		Assignees:           normalizeAssignees(input.Assignees),
		TrackedItemID:       trackedItem.ID,
		CreatedByUserID:     actor.UserID,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.Create(order); err != nil {
			return err
		}

		if err := s.ledger.AdjustForTransition(tx, order.TrackedItemID, constants.WorkOrderStatusDraft, status, order.ResolvedQuantity()); err != nil {
			return err
		}

		if order.ScheduledDate != nil {
			if err := s.createLinkedEvent(tx, order); err != nil {
				return err
			}
		}

		if input.PairedOrderID != nil && *input.PairedOrderID != "" {
			paired, err := orderRepo.GetByIDForUpdate(*input.PairedOrderID)
			if err != nil {
				return err
			}
			if paired == nil {
				return fmt.Errorf("%w: paired order %s", ErrNotFound, *input.PairedOrderID)
			}
			if err := orderRepo.Updates(paired.ID, map[string]interface{}{"paired_order_id": order.ID}); err != nil {
				return err
			}
			if err := orderRepo.Updates(order.ID, map[string]interface{}{"paired_order_id": paired.ID}); err != nil {
				return err
			}
			order.PairedOrderID = &paired.ID
		}

		s.audit.RecordEvent(tx, constants.AuditEventCreateWorkOrder, actor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// TransitionStatus 流转工单状态
// 状态读取、库存调整与状态写入在同一事务内，任一失败整体回滚。
func (s *WorkOrderService) TransitionStatus(actor ActorContext, orderID, nextStatus string, mileage *float64) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectWorkOrders, authz.ActionTransition)
	if err != nil {
		return err
	}
	if !allow && !actor.DriverCapable {
		return fmt.Errorf("%w: role %s may not transition work orders", ErrForbidden, actor.Role)
	}

	capabilityOnly := !allow && actor.DriverCapable
	driverLike := capabilityOnly || actor.Role == constants.RoleDriver
	if driverLike && !driverTargetStatuses[nextStatus] {
		return fmt.Errorf("%w: driver may not set status %q", ErrForbidden, nextStatus)
	}
	if mileage != nil && !actor.DriverCapable {
		return fmt.Errorf("%w: only drivers may report mileage", ErrForbidden)
	}
	if mileage != nil && *mileage < 0 {
		return fmt.Errorf("%w: mileage must not be negative", ErrValidation)
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: work order %s", ErrNotFound, orderID)
		}

		current := order.Status
		if !isTransitionAllowed(current, nextStatus) {
			return fmt.Errorf("%w: cannot transition from %s to %s", ErrValidation, current, nextStatus)
		}
		if mileageRequiredStatuses[nextStatus] && mileage == nil && order.Mileage == nil {
			return fmt.Errorf("%w: status %s requires mileage", ErrValidation, nextStatus)
		}

		if current != nextStatus {
			if err := s.ledger.AdjustForTransition(tx, order.TrackedItemID, current, nextStatus, order.ResolvedQuantity()); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": nextStatus}
		if mileage != nil {
			updates["mileage"] = *mileage
		}
		if err := orderRepo.Updates(order.ID, updates); err != nil {
			return err
		}

		if nextStatus == constants.WorkOrderStatusCancelled {
			if err := s.removeLinkedEvent(tx, order.ID); err != nil {
				return err
			}
		}

		s.audit.RecordFieldChange(tx, constants.AuditEventUpdateWorkOrder, actor,
			models.WorkOrder{}.TableName(), order.ID, "status", &current, &nextStatus)
		return nil
	})
}

// UpdateWorkOrder 更新工单可编辑字段并逐字段记录审计
func (s *WorkOrderService) UpdateWorkOrder(actor ActorContext, orderID string, input UpdateWorkOrderInput) error {
	if err := s.enforce(actor, authz.ActionUpdate); err != nil {
		return err
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: work order %s", ErrNotFound, orderID)
		}

		updates := map[string]interface{}{}
		entity := models.WorkOrder{}.TableName()

		applyStringField := func(field string, oldValue string, newValue *string) {
			if newValue == nil || *newValue == oldValue {
				return
			}
			updates[field] = *newValue
			s.audit.RecordFieldChange(tx, constants.AuditEventUpdateWorkOrder, actor,
				entity, order.ID, field, &oldValue, newValue)
		}
		applyStringField("directions", order.Directions, input.Directions)
		applyStringField("gate_combo", order.GateCombo, input.GateCombo)
		applyStringField("notes", order.Notes, input.Notes)

		if input.ClearSchedule {
			if order.ScheduledDate != nil {
				oldDate := formatDatePtr(order.ScheduledDate)
				updates["scheduled_date"] = nil
				s.audit.RecordFieldChange(tx, constants.AuditEventUpdateWorkOrder, actor,
					entity, order.ID, "scheduled_date", oldDate, nil)
				if err := s.removeLinkedEvent(tx, order.ID); err != nil {
					return err
				}
			}
		} else if input.ScheduledDate != nil {
			if order.ScheduledDate == nil || !order.ScheduledDate.Equal(*input.ScheduledDate) {
				oldDate := formatDatePtr(order.ScheduledDate)
				newDate := formatDatePtr(input.ScheduledDate)
				updates["scheduled_date"] = *input.ScheduledDate
				s.audit.RecordFieldChange(tx, constants.AuditEventUpdateWorkOrder, actor,
					entity, order.ID, "scheduled_date", oldDate, newDate)
				if err := s.syncLinkedEventDate(tx, order, *input.ScheduledDate); err != nil {
					return err
				}
			}
		}

		if len(updates) == 0 {
			return nil
		}
		return orderRepo.Updates(order.ID, updates)
	})
}

// UpdateAssignees 更新指派列表并镜像到关联日历事件（admin / lead）
func (s *WorkOrderService) UpdateAssignees(actor ActorContext, orderID string, assignees []string) error {
	if err := s.enforce(actor, authz.ActionAssign); err != nil {
		return err
	}

	normalized := normalizeAssignees(assignees)

	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: work order %s", ErrNotFound, orderID)
		}

		oldList := strings.Join(order.Assignees, ",")
		newList := strings.Join(normalized, ",")
		if oldList == newList {
			return nil
		}

		if err := orderRepo.Updates(order.ID, map[string]interface{}{"assignees_json": normalized}); err != nil {
			return err
		}

		eventRepo := s.eventRepo.WithTx(tx)
		event, err := eventRepo.GetByWorkOrderID(order.ID)
		if err != nil {
			return err
		}
		if event != nil {
			if err := eventRepo.Updates(event.ID, map[string]interface{}{"assigned_user_ids_json": normalized}); err != nil {
				return err
			}
		}

		s.audit.RecordFieldChange(tx, constants.AuditEventUpdateAssignees, actor,
			models.WorkOrder{}.TableName(), order.ID, "assignees", &oldList, &newList)
		return nil
	})
}

// UnlinkPair 解除工单配对（双向）
func (s *WorkOrderService) UnlinkPair(actor ActorContext, orderID string) error {
	if err := s.enforce(actor, authz.ActionUpdate); err != nil {
		return err
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: work order %s", ErrNotFound, orderID)
		}
		if order.PairedOrderID == nil {
			return nil
		}

		pairedID := *order.PairedOrderID
		if err := orderRepo.Updates(order.ID, map[string]interface{}{"paired_order_id": nil}); err != nil {
			return err
		}
		if err := orderRepo.Updates(pairedID, map[string]interface{}{"paired_order_id": nil}); err != nil {
			return err
		}

		s.audit.RecordFieldChange(tx, constants.AuditEventUpdateWorkOrder, actor,
			models.WorkOrder{}.TableName(), order.ID, "paired_order_id", &pairedID, nil)
		return nil
	})
}

// GetWorkOrder 获取单条工单（投影后）
func (s *WorkOrderService) GetWorkOrder(actor ActorContext, orderID string) (*models.WorkOrder, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: work order %s", ErrNotFound, orderID)
	}
	projected := ProjectWorkOrders([]models.WorkOrder{*order}, actor)
	if len(projected) == 0 {
		return nil, fmt.Errorf("%w: work order %s", ErrNotFound, orderID)
	}
	return &projected[0], nil
}

// ListWorkOrders 查询工单列表（投影后）
// 指派过滤生效时返回的总数为过滤后的行数。
func (s *WorkOrderService) ListWorkOrders(actor ActorContext, filter repository.WorkOrderListFilter) ([]models.WorkOrder, int64, error) {
	if err := s.enforce(actor, authz.ActionRead); err != nil {
		return nil, 0, err
	}
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	projected := ProjectWorkOrders(orders, actor)
	if actor.FieldViewRestricted() {
		total = int64(len(projected))
	}
	return projected, total, nil
}

// DeleteWorkOrder 软删除工单（仅终态；admin）
func (s *WorkOrderService) DeleteWorkOrder(actor ActorContext, orderID string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admin may delete work orders", ErrForbidden)
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: work order %s", ErrNotFound, orderID)
		}
		if order.Status != constants.WorkOrderStatusCompleted && order.Status != constants.WorkOrderStatusCancelled {
			return fmt.Errorf("%w: only completed or cancelled orders can be deleted", ErrValidation)
		}
		if err := orderRepo.SoftDelete(order.ID); err != nil {
			return err
		}
		if err := s.removeLinkedEvent(tx, order.ID); err != nil {
			return err
		}
		s.audit.RecordEvent(tx, constants.AuditEventUpdateWorkOrder, actor)
		return nil
	})
}

func (s *WorkOrderService) enforce(actor ActorContext, action string) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectWorkOrders, action)
	if err != nil {
		return err
	}
	if !allow {
		return fmt.Errorf("%w: role %s may not %s work orders", ErrForbidden, actor.Role, action)
	}
	return nil
}

func (s *WorkOrderService) createLinkedEvent(tx *gorm.DB, order *models.WorkOrder) error {
	event := &models.DeliveryEvent{
		Title:           fmt.Sprintf("Delivery - %s", order.ClientName),
		EventType:       constants.DeliveryEventTypeDelivery,
		WorkOrderID:     &order.ID,
		StartDate:       *order.ScheduledDate,
		AssignedUserIDs: order.Assignees,
		CreatedByUserID: order.CreatedByUserID,
	}
	return s.eventRepo.WithTx(tx).Create(event)
}

func (s *WorkOrderService) syncLinkedEventDate(tx *gorm.DB, order *models.WorkOrder, date time.Time) error {
	eventRepo := s.eventRepo.WithTx(tx)
	event, err := eventRepo.GetByWorkOrderID(order.ID)
	if err != nil {
		return err
	}
	if event == nil {
		scheduled := *order
		scheduled.ScheduledDate = &date
		return s.createLinkedEvent(tx, &scheduled)
	}
	return eventRepo.Updates(event.ID, map[string]interface{}{"start_date": date})
}

func (s *WorkOrderService) removeLinkedEvent(tx *gorm.DB, orderID string) error {
	eventRepo := s.eventRepo.WithTx(tx)
	event, err := eventRepo.GetByWorkOrderID(orderID)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}
	return eventRepo.SoftDelete(event.ID)
}

func isTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func normalizeAssignees(assignees []string) models.StringArray {
	seen := make(map[string]bool, len(assignees))
	result := make(models.StringArray, 0, len(assignees))
	for _, name := range assignees {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, trimmed)
	}
	return result
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
