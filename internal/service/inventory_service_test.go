package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupInventoryServiceTest(t *testing.T) (*InventoryService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryItem{}, &models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	audit := NewAuditService(repository.NewAuditLogRepository(db), authzSvc)
	return NewInventoryService(repository.NewInventoryItemRepository(db), audit, authzSvc), db
}

func TestCreateInventoryItemValidation(t *testing.T) {
	svc, _ := setupInventoryServiceTest(t)

	if _, err := svc.CreateInventoryItem(staffActor, CreateInventoryItemInput{Unit: "cord"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected name required, got: %v", err)
	}
	if _, err := svc.CreateInventoryItem(staffActor, CreateInventoryItemInput{Name: "Firewood"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected unit required, got: %v", err)
	}
	if _, err := svc.CreateInventoryItem(volActor, CreateInventoryItemInput{Name: "Firewood", Unit: "cord"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected volunteer create forbidden, got: %v", err)
	}

	item, err := svc.CreateInventoryItem(staffActor, CreateInventoryItemInput{
		Name:           "Seasoned Firewood",
		Unit:           "cord",
		QuantityOnHand: models.NewQuantityFromFloat(12.5),
	})
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if !item.Available().Decimal.Equal(models.NewQuantityFromFloat(12.5).Decimal) {
		t.Fatalf("expected available 12.5, got %s", item.Available().Decimal.String())
	}
}

func TestUpdateInventoryItemFieldDiff(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	item, err := svc.CreateInventoryItem(staffActor, CreateInventoryItemInput{
		Name:           "Seasoned Firewood",
		Unit:           "cord",
		QuantityOnHand: models.NewQuantityFromFloat(10),
	})
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	onHand := models.NewQuantityFromFloat(15)
	sameName := "Seasoned Firewood"
	if err := svc.UpdateInventoryItem(staffActor, item.ID, UpdateInventoryItemInput{
		Name:           &sameName,
		QuantityOnHand: &onHand,
	}); err != nil {
		t.Fatalf("update item failed: %v", err)
	}

	var rows []models.AuditLog
	if err := db.Where("entity = ? AND entity_id = ?", "inventory_items", item.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load audit rows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one audit row for on-hand change, got %d", len(rows))
	}
	if *rows[0].Field != "quantity_on_hand" || *rows[0].OldValue != "10" || *rows[0].NewValue != "15" {
		t.Fatalf("unexpected audit diff: %+v", rows[0])
	}
}

func TestUpdateInventoryItemRejectsOnHandBelowReserved(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	item := seedStockItem(t, db, "Seasoned Firewood", 10, 6)

	onHand := models.NewQuantityFromFloat(4)
	err := svc.UpdateInventoryItem(staffActor, item.ID, UpdateInventoryItemInput{QuantityOnHand: &onHand})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected on-hand below reserved rejected, got: %v", err)
	}
}

func TestDeleteInventoryItemWithReservationRejected(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	reserved := seedStockItem(t, db, "Seasoned Firewood", 10, 2)
	free := seedStockItem(t, db, "Green Wood", 5, 0)

	if err := svc.DeleteInventoryItem(leadActor, reserved.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected delete with reservations rejected, got: %v", err)
	}
	if err := svc.DeleteInventoryItem(staffActor, free.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected staff delete forbidden, got: %v", err)
	}
	if err := svc.DeleteInventoryItem(leadActor, free.ID); err != nil {
		t.Fatalf("lead delete failed: %v", err)
	}
}

func TestListLowStockItems(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	low := models.InventoryItem{
		Name:             "Chain Oil",
		Unit:             "gal",
		QuantityOnHand:   models.NewQuantityFromFloat(2),
		ReorderThreshold: models.NewQuantityFromFloat(3),
	}
	if err := db.Create(&low).Error; err != nil {
		t.Fatalf("create low item failed: %v", err)
	}
	ok := models.InventoryItem{
		Name:             "Seasoned Firewood",
		Unit:             "cord",
		QuantityOnHand:   models.NewQuantityFromFloat(20),
		ReorderThreshold: models.NewQuantityFromFloat(5),
	}
	if err := db.Create(&ok).Error; err != nil {
		t.Fatalf("create ok item failed: %v", err)
	}

	items, err := svc.ListLowStockItems(leadActor)
	if err != nil {
		t.Fatalf("low stock list failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Chain Oil" {
		t.Fatalf("expected only chain oil below threshold, got %+v", items)
	}
}
