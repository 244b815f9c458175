package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkOrder 工单表
// 创建时冗余一份客户快照，后续客户资料变更不回写工单。
type WorkOrder struct {
	ID           string `gorm:"type:varchar(36);primarykey" json:"id"` // UUID 主键
	ClientID     string `gorm:"type:varchar(36);index;not null" json:"client_id"`
	ClientNumber string `gorm:"type:varchar(50);index" json:"client_number"`
	ClientTitle  string `gorm:"type:varchar(20)" json:"client_title,omitempty"`
	ClientName   string `gorm:"type:varchar(200);not null" json:"client_name"`
	AddressLine1 string `gorm:"type:varchar(255)" json:"address_line1,omitempty"`
	AddressLine2 string `gorm:"type:varchar(255)" json:"address_line2,omitempty"`
	City         string `gorm:"type:varchar(100)" json:"city,omitempty"`
	State        string `gorm:"type:varchar(50)" json:"state,omitempty"`
	PostalCode   string `gorm:"type:varchar(20)" json:"postal_code,omitempty"`
	Telephone    string `gorm:"type:varchar(50)" json:"telephone,omitempty"`
	Email        string `gorm:"type:varchar(200)" json:"email,omitempty"`
	Directions   string `gorm:"type:text" json:"directions,omitempty"` // 路线说明
	GateCombo    string `gorm:"type:varchar(100)" json:"gate_combo,omitempty"` // 大门密码（敏感）
	Notes        string `gorm:"type:text" json:"notes,omitempty"`

	HeatSourceGas      bool   `gorm:"not null;default:false" json:"heat_source_gas"`
	HeatSourceElectric bool   `gorm:"not null;default:false" json:"heat_source_electric"`
	HeatSourceOther    string `gorm:"type:varchar(200)" json:"heat_source_other,omitempty"`

	ScheduledDate       *time.Time  `gorm:"index" json:"scheduled_date,omitempty"`
	Status              string      `gorm:"type:varchar(20);index;not null;default:'draft'" json:"status"`
	FulfillmentMode     string      `gorm:"type:varchar(20);not null;default:'delivery'" json:"fulfillment_mode"` // delivery / pickup
	DeliverySizeCords   Quantity    `gorm:"type:decimal(12,3);not null;default:0" json:"delivery_size_cords"`
	PickupQuantityCords Quantity    `gorm:"type:decimal(12,3);not null;default:0" json:"pickup_quantity_cords"`
	Assignees           StringArray `gorm:"column:assignees_json;type:json" json:"assignees"` // 指派人用户名列表
	Mileage             *float64    `json:"mileage,omitempty"`                                // 司机回填里程
	TrackedItemID       string      `gorm:"type:varchar(36);index" json:"tracked_item_id,omitempty"` // 创建时解析的库存绑定
	PairedOrderID       *string     `gorm:"type:varchar(36);index" json:"paired_order_id,omitempty"` // 配对工单（送柴+回收）

	CreatedByUserID string         `gorm:"type:varchar(36);index" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"` // 软删除
}

// TableName 指定表名
func (WorkOrder) TableName() string {
	return "work_orders"
}

// BeforeCreate 生成 UUID 主键
func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// ResolvedQuantity 按履约方式换算本单占用的柴量
func (w *WorkOrder) ResolvedQuantity() Quantity {
	if w.FulfillmentMode == "pickup" {
		return w.PickupQuantityCords
	}
	return w.DeliverySizeCords
}
