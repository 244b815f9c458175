package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 志愿者/员工账号表
type User struct {
	ID                  string         `gorm:"type:varchar(36);primarykey" json:"id"`       // UUID 主键
	Username            string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"` // 登录名
	Name                string         `gorm:"type:varchar(200);not null" json:"name"`      // 姓名
	Email               string         `gorm:"type:varchar(200);index" json:"email,omitempty"`
	Telephone           string         `gorm:"type:varchar(50)" json:"telephone,omitempty"`
	PasswordHash        string         `gorm:"type:varchar(200);not null" json:"-"` // 密码哈希（不外发）
	Role                string         `gorm:"type:varchar(20);index;not null;default:'volunteer'" json:"role"`
	HipaaCertified      bool           `gorm:"not null;default:false" json:"hipaa_certified"` // HIPAA 认证标记
	IsDriver            bool           `gorm:"not null;default:false" json:"is_driver"`       // 司机能力标记
	AvailabilityNotes   string         `gorm:"type:text" json:"availability_notes,omitempty"`
	DriverLicenseStatus string         `gorm:"type:varchar(100)" json:"driver_license_status,omitempty"`
	Vehicle             string         `gorm:"type:varchar(200)" json:"vehicle,omitempty"`
	MustChangePassword  bool           `gorm:"not null;default:false" json:"must_change_password"`
	LastLoginAt         *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"` // 软删除
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 生成 UUID 主键
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
