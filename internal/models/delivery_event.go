package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryEvent 配送日历事件表
// 可选 1:1 关联工单；关联事件的指派人列表与工单保持同步。
// 软删除墓碑保留 work_order_id，存活行的唯一性由工单服务维护。
type DeliveryEvent struct {
	ID              string         `gorm:"type:varchar(36);primarykey" json:"id"` // UUID 主键
	Title           string         `gorm:"type:varchar(255);not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	EventType       string         `gorm:"type:varchar(20);index;not null;default:'delivery'" json:"event_type"`
	WorkOrderID     *string        `gorm:"type:varchar(36);index" json:"work_order_id,omitempty"`
	StartDate       time.Time      `gorm:"index;not null" json:"start_date"`
	EndDate         *time.Time     `json:"end_date,omitempty"`
	ColorCode       string         `gorm:"type:varchar(20)" json:"color_code,omitempty"`
	AssignedUserIDs StringArray    `gorm:"column:assigned_user_ids_json;type:json" json:"assigned_user_ids"`
	CreatedByUserID string         `gorm:"type:varchar(36);index" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"` // 软删除
}

// TableName 指定表名
func (DeliveryEvent) TableName() string {
	return "delivery_events"
}

// BeforeCreate 生成 UUID 主键
func (e *DeliveryEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
