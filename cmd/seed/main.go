package main

import (
	"time"

	"github.com/firewood-bank/backend/internal/app"
	"github.com/firewood-bank/backend/internal/config"
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/logger"
	"github.com/firewood-bank/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	if _, err := app.Bootstrap(app.Options{Config: cfg, Migrate: true}); err != nil {
		logger.StdLogger().Fatalf("Failed to bootstrap: %v", err)
	}
	stdLog := logger.StdLogger()

	// 每个角色一个示例账号（密码与用户名相同，仅供演示）
	users := []models.User{
		{Username: "marge", Name: "Marge Begay", Role: constants.RoleLead, HipaaCertified: true},
		{Username: "stan", Name: "Stan Curtis", Role: constants.RoleStaff},
		{Username: "ray", Name: "Ray Tsosie", Role: constants.RoleDriver, IsDriver: true, Vehicle: "1-ton flatbed"},
		{Username: "june", Name: "June Platero", Role: constants.RoleVolunteer},
		{Username: "walt", Name: "Walt Yazzie", Role: constants.RoleVolunteer, IsDriver: true, Vehicle: "Own pickup"},
	}
	for _, u := range users {
		var existing models.User
		if err := models.DB.Where("LOWER(username) = ?", u.Username).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", u.Username)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Username), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password for %s: %v", u.Username, err)
		}
		u.PasswordHash = string(hash)
		u.MustChangePassword = true
		if err := models.DB.Create(&u).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", u.Username, err)
		} else {
			stdLog.Printf("Created user: %s (%s)", u.Username, u.Role)
		}
	}

	// 柴薪库存（台账跟踪的库存记录）与少量耗材
	items := []models.InventoryItem{
		{
			Name:             "Seasoned firewood",
			Category:         "firewood",
			Unit:             "cord",
			QuantityOnHand:   models.NewQuantityFromFloat(42),
			ReorderThreshold: models.NewQuantityFromFloat(10),
		},
		{
			Name:             "Bar and chain oil",
			Category:         "saw supplies",
			Unit:             "gal",
			QuantityOnHand:   models.NewQuantityFromFloat(12),
			ReorderThreshold: models.NewQuantityFromFloat(4),
		},
		{
			Name:             "Chainsaw chains (20in)",
			Category:         "saw supplies",
			Unit:             "pcs",
			QuantityOnHand:   models.NewQuantityFromFloat(18),
			ReorderThreshold: models.NewQuantityFromFloat(6),
		},
	}
	for _, item := range items {
		var existing models.InventoryItem
		if err := models.DB.Where("name = ?", item.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Inventory item already exists: %s", item.Name)
			continue
		}
		if err := models.DB.Create(&item).Error; err != nil {
			stdLog.Printf("Failed to create inventory item %s: %v", item.Name, err)
		} else {
			stdLog.Printf("Created inventory item: %s (%s %s)", item.Name, item.QuantityOnHand, item.Unit)
		}
	}

	// 演示客户
	onboard := time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC)
	clients := []models.Client{
		{
			ClientNumber:   "FW20241003001",
			ClientTitle:    "Ms.",
			Name:           "Alice Manygoats",
			AddressLine1:   "12 Juniper Rd",
			City:           "Chinle",
			State:          "AZ",
			PostalCode:     "86503",
			Telephone:      "555-0134",
			DateOfOnboard:  &onboard,
			ApprovalStatus: constants.ApprovalStatusApproved,
			GateCombo:      "4417",
			Notes:          "Dogs in yard, call ahead",
		},
		{
			ClientNumber:   "FW20241003002",
			Name:           "Tom Nez",
			AddressLine1:   "HC 61 Box 220",
			City:           "Ganado",
			State:          "AZ",
			PostalCode:     "86505",
			Telephone:      "555-0188",
			ApprovalStatus: constants.ApprovalStatusPending,
		},
	}
	for _, client := range clients {
		var existing models.Client
		if err := models.DB.Where("client_number = ?", client.ClientNumber).First(&existing).Error; err == nil {
			stdLog.Printf("Client already exists: %s", client.ClientNumber)
			continue
		}
		if err := models.DB.Create(&client).Error; err != nil {
			stdLog.Printf("Failed to create client %s: %v", client.ClientNumber, err)
		} else {
			stdLog.Printf("Created client: %s (%s)", client.Name, client.ClientNumber)
		}
	}

	stdLog.Println("Seed data loaded.")
}
