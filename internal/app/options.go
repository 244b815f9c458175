package app

import "github.com/firewood-bank/backend/internal/config"

// Options 应用启动选项
type Options struct {
	Config *config.Config
	// Migrate 启动时自动迁移表结构
	Migrate bool
	// AdminUsername / AdminPassword 首次启动时创建的管理员账号，空则使用默认值
	AdminUsername string
	AdminPassword string
}
