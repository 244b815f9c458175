package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryItem 库存物料表
// 不变量：0 ≤ reserved_quantity ≤ quantity_on_hand，仅库存台账允许修改预留量。
type InventoryItem struct {
	ID               string         `gorm:"type:varchar(36);primarykey" json:"id"` // UUID 主键
	Name             string         `gorm:"type:varchar(200);index;not null" json:"name"`
	Category         string         `gorm:"type:varchar(100)" json:"category,omitempty"` // 链锯、链条油、头盔等
	Unit             string         `gorm:"type:varchar(50);not null" json:"unit"`       // cord / pcs / gal
	QuantityOnHand   Quantity       `gorm:"type:decimal(12,3);not null;default:0" json:"quantity_on_hand"`
	ReservedQuantity Quantity       `gorm:"type:decimal(12,3);not null;default:0" json:"reserved_quantity"`
	ReorderThreshold Quantity       `gorm:"type:decimal(12,3);not null;default:0" json:"reorder_threshold"`
	ReorderAmount    *Quantity      `gorm:"type:decimal(12,3)" json:"reorder_amount,omitempty"`
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedByUserID  string         `gorm:"type:varchar(36);index" json:"created_by_user_id,omitempty"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"` // 软删除
}

// TableName 指定表名
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// BeforeCreate 生成 UUID 主键
func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Available 可用量 = 在库量 - 预留量
func (i *InventoryItem) Available() Quantity {
	return NewQuantityFromDecimal(i.QuantityOnHand.Decimal.Sub(i.ReservedQuantity.Decimal))
}
