package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"
)

// DeliveryEventService 配送日历服务
// 与工单关联的事件由工单服务维护，这里只管理独立事件（会议、劳动日等）。
type DeliveryEventService struct {
	eventRepo repository.DeliveryEventRepository
	authzSvc  *authz.Service
}

// NewDeliveryEventService 创建日历服务
func NewDeliveryEventService(eventRepo repository.DeliveryEventRepository, authzSvc *authz.Service) *DeliveryEventService {
	return &DeliveryEventService{eventRepo: eventRepo, authzSvc: authzSvc}
}

// CreateEventInput 创建日历事件输入
type CreateEventInput struct {
	Title           string
	Description     string
	EventType       string
	StartDate       time.Time
	EndDate         *time.Time
	ColorCode       string
	AssignedUserIDs []string
}

// CreateEvent 创建独立日历事件（lead / admin）
func (s *DeliveryEventService) CreateEvent(actor ActorContext, input CreateEventInput) (*models.DeliveryEvent, error) {
	if err := s.enforce(actor, authz.ActionCreate); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: event title is required", ErrValidation)
	}
	eventType := input.EventType
	if eventType == "" {
		eventType = constants.DeliveryEventTypeWorkday
	}
	switch eventType {
	case constants.DeliveryEventTypeDelivery, constants.DeliveryEventTypeMeeting, constants.DeliveryEventTypeWorkday:
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrValidation, eventType)
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: event end before start", ErrValidation)
	}

	event := &models.DeliveryEvent{
		Title:           title,
		Description:     input.Description,
		EventType:       eventType,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		ColorCode:       input.ColorCode,
		AssignedUserIDs: normalizeAssignees(input.AssignedUserIDs),
		CreatedByUserID: actor.UserID,
	}
	if err := s.eventRepo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEventInput 更新日历事件输入（nil 表示不改动）
type UpdateEventInput struct {
	Title           *string
	Description     *string
	StartDate       *time.Time
	EndDate         *time.Time
	ColorCode       *string
	AssignedUserIDs []string
}

// UpdateEvent 更新独立日历事件（lead / admin）
// 工单关联事件的日期与指派由工单服务联动维护，这里拒绝直接改动。
func (s *DeliveryEventService) UpdateEvent(actor ActorContext, eventID string, input UpdateEventInput) error {
	if err := s.enforce(actor, authz.ActionUpdate); err != nil {
		return err
	}
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("%w: delivery event %s", ErrNotFound, eventID)
	}
	if event.WorkOrderID != nil {
		return fmt.Errorf("%w: events linked to a work order are managed through the work order", ErrValidation)
	}

	updates := map[string]interface{}{}
	if input.Title != nil && *input.Title != event.Title {
		updates["title"] = *input.Title
	}
	if input.Description != nil && *input.Description != event.Description {
		updates["description"] = *input.Description
	}
	if input.StartDate != nil && !input.StartDate.Equal(event.StartDate) {
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}
	if input.ColorCode != nil && *input.ColorCode != event.ColorCode {
		updates["color_code"] = *input.ColorCode
	}
	if input.AssignedUserIDs != nil {
		updates["assigned_user_ids_json"] = normalizeAssignees(input.AssignedUserIDs)
	}
	if len(updates) == 0 {
		return nil
	}
	return s.eventRepo.Updates(event.ID, updates)
}

// DeleteEvent 删除独立日历事件（lead / admin）
func (s *DeliveryEventService) DeleteEvent(actor ActorContext, eventID string) error {
	if err := s.enforce(actor, authz.ActionDelete); err != nil {
		return err
	}
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("%w: delivery event %s", ErrNotFound, eventID)
	}
	if event.WorkOrderID != nil {
		return fmt.Errorf("%w: events linked to a work order are managed through the work order", ErrValidation)
	}
	return s.eventRepo.SoftDelete(event.ID)
}

// ListEvents 查询日历事件（投影后）
func (s *DeliveryEventService) ListEvents(actor ActorContext, filter repository.DeliveryEventListFilter) ([]models.DeliveryEvent, int64, error) {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectDeliveryEvents, authz.ActionRead)
	if err != nil {
		return nil, 0, err
	}
	if !allow {
		return nil, 0, fmt.Errorf("%w: role %s may not read delivery events", ErrForbidden, actor.Role)
	}
	events, total, err := s.eventRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	projected := ProjectDeliveryEvents(events, actor)
	if actor.FieldViewRestricted() {
		total = int64(len(projected))
	}
	return projected, total, nil
}

func (s *DeliveryEventService) enforce(actor ActorContext, action string) error {
	allow, err := s.authzSvc.EnforceRole(actor.Role, authz.ObjectDeliveryEvents, action)
	if err != nil {
		return err
	}
	if !allow {
		return fmt.Errorf("%w: role %s may not %s delivery events", ErrForbidden, actor.Role, action)
	}
	return nil
}
