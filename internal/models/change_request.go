package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChangeRequest 变更申请工单表
type ChangeRequest struct {
	ID                string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Title             string         `gorm:"type:varchar(255);not null" json:"title"`
	Description       string         `gorm:"type:text;not null" json:"description"`
	RequestedByUserID string         `gorm:"type:varchar(36);index;not null" json:"requested_by_user_id"`
	Status            string         `gorm:"type:varchar(20);index;not null;default:'open'" json:"status"`
	ResolutionNotes   string         `gorm:"type:text" json:"resolution_notes,omitempty"`
	ResolvedByUserID  string         `gorm:"type:varchar(36)" json:"resolved_by_user_id,omitempty"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"` // 软删除
}

// TableName 指定表名
func (ChangeRequest) TableName() string {
	return "change_requests"
}

// BeforeCreate 生成 UUID 主键
func (c *ChangeRequest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
