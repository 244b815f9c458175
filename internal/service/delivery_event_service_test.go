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

func setupDeliveryEventServiceTest(t *testing.T) *DeliveryEventService {
	t.Helper()
	dsn := fmt.Sprintf("file:delivery_event_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.DeliveryEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return NewDeliveryEventService(repository.NewDeliveryEventRepository(db), authzSvc)
}

func TestCreateStandaloneEvent(t *testing.T) {
	svc := setupDeliveryEventServiceTest(t)

	if _, err := svc.CreateEvent(staffActor, CreateEventInput{Title: "Splitting day", StartDate: time.Now()}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected staff event create forbidden, got: %v", err)
	}
	if _, err := svc.CreateEvent(leadActor, CreateEventInput{Title: " ", StartDate: time.Now()}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected blank title rejected, got: %v", err)
	}
	start := time.Now()
	end := start.Add(-time.Hour)
	if _, err := svc.CreateEvent(leadActor, CreateEventInput{Title: "Backwards", StartDate: start, EndDate: &end}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected end-before-start rejected, got: %v", err)
	}
	if _, err := svc.CreateEvent(leadActor, CreateEventInput{Title: "Mystery", EventType: "party", StartDate: start}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected unknown event type rejected, got: %v", err)
	}

	event, err := svc.CreateEvent(leadActor, CreateEventInput{
		Title:           "Splitting day",
		StartDate:       start,
		AssignedUserIDs: []string{" Helper ", "helper", "Hauler"},
	})
	if err != nil {
		t.Fatalf("lead event create failed: %v", err)
	}
	if event.EventType != constants.DeliveryEventTypeWorkday {
		t.Fatalf("expected workday default type, got %s", event.EventType)
	}
	if len(event.AssignedUserIDs) != 2 {
		t.Fatalf("expected deduplicated assignees, got %v", event.AssignedUserIDs)
	}
}

func TestEventsLinkedToWorkOrderAreLocked(t *testing.T) {
	svc := setupDeliveryEventServiceTest(t)

	orderID := "wo-locked"
	linked := &models.DeliveryEvent{
		Title:       "Delivery - Yazzie",
		EventType:   constants.DeliveryEventTypeDelivery,
		StartDate:   time.Now(),
		WorkOrderID: &orderID,
	}
	if err := models.DB.Create(linked).Error; err != nil {
		t.Fatalf("seed linked event failed: %v", err)
	}

	newTitle := "Renamed"
	if err := svc.UpdateEvent(leadActor, linked.ID, UpdateEventInput{Title: &newTitle}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected linked event update rejected, got: %v", err)
	}
	if err := svc.DeleteEvent(adminActor, linked.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected linked event delete rejected, got: %v", err)
	}
}

func TestListEventsAssignmentFilter(t *testing.T) {
	svc := setupDeliveryEventServiceTest(t)

	if _, err := svc.CreateEvent(leadActor, CreateEventInput{
		Title:           "Monthly meeting",
		EventType:       constants.DeliveryEventTypeMeeting,
		StartDate:       time.Now(),
		AssignedUserIDs: []string{"Helper"},
	}); err != nil {
		t.Fatalf("create event failed: %v", err)
	}
	if _, err := svc.CreateEvent(leadActor, CreateEventInput{
		Title:           "Yard cleanup",
		StartDate:       time.Now(),
		AssignedUserIDs: []string{"Hauler"},
	}); err != nil {
		t.Fatalf("create event failed: %v", err)
	}

	all, total, err := svc.ListEvents(staffActor, repository.DeliveryEventListFilter{})
	if err != nil {
		t.Fatalf("staff event list failed: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected staff to see both events, got total=%d rows=%d", total, len(all))
	}

	mine, total, err := svc.ListEvents(volActor, repository.DeliveryEventListFilter{})
	if err != nil {
		t.Fatalf("volunteer event list failed: %v", err)
	}
	if total != 1 || len(mine) != 1 || mine[0].Title != "Monthly meeting" {
		t.Fatalf("expected volunteer to see only assigned event, got total=%d rows=%d", total, len(mine))
	}

	driverView, total, err := svc.ListEvents(driverActor, repository.DeliveryEventListFilter{})
	if err != nil {
		t.Fatalf("driver event list failed: %v", err)
	}
	if total != 1 || len(driverView) != 1 || driverView[0].Title != "Yard cleanup" {
		t.Fatalf("expected driver to see only assigned event, got total=%d rows=%d", total, len(driverView))
	}
}
