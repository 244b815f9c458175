package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog 审计日志表
// 说明：仅追加，不更新不删除；entity/entity_id/field/old/new 仅字段级变更行携带。
type AuditLog struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Event     string    `gorm:"type:varchar(100);index;not null" json:"event"`
	Role      string    `gorm:"type:varchar(20);index;not null;default:''" json:"role"`
	Actor     string    `gorm:"type:varchar(100);index;not null;default:''" json:"actor"`
	Entity    *string   `gorm:"type:varchar(100);index" json:"entity,omitempty"`
	EntityID  *string   `gorm:"type:varchar(36);index" json:"entity_id,omitempty"`
	Field     *string   `gorm:"type:varchar(100)" json:"field,omitempty"`
	OldValue  *string   `gorm:"type:text" json:"old_value,omitempty"`
	NewValue  *string   `gorm:"type:text" json:"new_value,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate 生成 UUID 主键
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
