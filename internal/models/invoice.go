package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceLineItem 发票行项目
type InvoiceLineItem struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Quantity    Quantity `json:"quantity"`
	UnitPrice   Money    `json:"unit_price"`
	Total       Money    `json:"total"`
}

// InvoiceLineItems 发票行项目列表（JSON 序列化存储）
type InvoiceLineItems []InvoiceLineItem

// Value 实现 driver.Valuer 接口
func (l InvoiceLineItems) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *InvoiceLineItems) Scan(value interface{}) error {
	if value == nil {
		*l = InvoiceLineItems{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, l)
}

// Invoice 发票表（建议捐赠额，不做真实收款）
type Invoice struct {
	ID            string           `gorm:"type:varchar(36);primarykey" json:"id"`
	WorkOrderID   string           `gorm:"type:varchar(36);index;not null" json:"work_order_id"`
	InvoiceNumber string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	InvoiceDate   time.Time        `gorm:"index;not null" json:"invoice_date"`
	LineItems     InvoiceLineItems `gorm:"column:line_items_json;type:json" json:"line_items"`
	Subtotal      Money            `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Tax           Money            `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Total         Money            `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	// 客户快照（开票时固化）
	ClientID     string `gorm:"type:varchar(36);index" json:"client_id"`
	ClientNumber string `gorm:"type:varchar(50)" json:"client_number"`
	ClientName   string `gorm:"type:varchar(200)" json:"client_name"`
	AddressLine1 string `gorm:"type:varchar(255)" json:"address_line1,omitempty"`
	City         string `gorm:"type:varchar(100)" json:"city,omitempty"`
	State        string `gorm:"type:varchar(50)" json:"state,omitempty"`
	PostalCode   string `gorm:"type:varchar(20)" json:"postal_code,omitempty"`

	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	Status    string         `gorm:"type:varchar(20);index;not null;default:'draft'" json:"status"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // 软删除
}

// TableName 指定表名
func (Invoice) TableName() string {
	return "invoices"
}

// BeforeCreate 生成 UUID 主键
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
