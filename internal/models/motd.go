package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Motd 公告横幅表
type Motd struct {
	ID              string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Message         string         `gorm:"type:text;not null" json:"message"`
	ActiveFrom      *time.Time     `gorm:"index" json:"active_from,omitempty"`
	ActiveTo        *time.Time     `gorm:"index" json:"active_to,omitempty"`
	CreatedByUserID string         `gorm:"type:varchar(36);index" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"` // 软删除
}

// TableName 指定表名
func (Motd) TableName() string {
	return "motds"
}

// BeforeCreate 生成 UUID 主键
func (m *Motd) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
