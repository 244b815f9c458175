package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client 受助客户表
type Client struct {
	ID              string         `gorm:"type:varchar(36);primarykey" json:"id"` // UUID 主键
	ClientNumber    string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"client_number"` // 客户编号
	ClientTitle     string         `gorm:"type:varchar(20)" json:"client_title,omitempty"`             // 称谓
	Name            string         `gorm:"type:varchar(200);index;not null" json:"name"`
	AddressLine1    string         `gorm:"type:varchar(255)" json:"address_line1,omitempty"`
	AddressLine2    string         `gorm:"type:varchar(255)" json:"address_line2,omitempty"`
	City            string         `gorm:"type:varchar(100)" json:"city,omitempty"`
	State           string         `gorm:"type:varchar(50)" json:"state,omitempty"`
	PostalCode      string         `gorm:"type:varchar(20)" json:"postal_code,omitempty"`
	MailingAddress  string         `gorm:"type:varchar(500)" json:"mailing_address,omitempty"` // 与实际地址不同时填写
	Telephone       string         `gorm:"type:varchar(50)" json:"telephone,omitempty"`
	Email           string         `gorm:"type:varchar(200)" json:"email,omitempty"`
	DateOfOnboard   *time.Time     `json:"date_of_onboarding,omitempty"`
	ReferralSource  string         `gorm:"type:varchar(200)" json:"how_did_they_hear_about_us,omitempty"`
	ReferringAgency string         `gorm:"type:varchar(200)" json:"referring_agency,omitempty"`
	ApprovalStatus  string         `gorm:"type:varchar(20);index;not null;default:'pending'" json:"approval_status"`
	DenialReason    string         `gorm:"type:text" json:"denial_reason,omitempty"`
	GateCombo       string         `gorm:"type:varchar(100)" json:"gate_combo,omitempty"` // 大门密码（敏感）
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`              // 入户备注（敏感）
	CreatedByUserID string         `gorm:"type:varchar(36);index" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"` // 软删除
}

// TableName 指定表名
func (Client) TableName() string {
	return "clients"
}

// BeforeCreate 生成 UUID 主键
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
