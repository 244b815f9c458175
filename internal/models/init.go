package models

import (
	"strings"

	"github.com/firewood-bank/backend/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "firewood123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Username:           strings.TrimSpace(username),
		Name:               "Administrator",
		PasswordHash:       string(hash),
		Role:               "admin",
		HipaaCertified:     true,
		MustChangePassword: password == "firewood123",
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "firewood123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}

	return nil
}
