package app

import (
	"errors"

	"github.com/firewood-bank/backend/internal/logger"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/provider"
)

// Bootstrap 应用启动入口
// 按顺序完成：日志、数据库、迁移、容器装配、默认管理员。
// 桌面端壳层调用一次，之后通过返回的 Container 使用各服务。
func Bootstrap(opts Options) (*provider.Container, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	logger.Init(cfg.App.Mode, cfg.Log.ToLoggerOptions())

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		logger.Errorw("bootstrap_init_db_failed", "error", err)
		return nil, err
	}
	if opts.Migrate {
		if err := models.AutoMigrate(); err != nil {
			logger.Errorw("bootstrap_migrate_failed", "error", err)
			return nil, err
		}
	}

	container := provider.NewContainer(cfg)

	if err := models.InitDefaultAdmin(opts.AdminUsername, opts.AdminPassword); err != nil {
		logger.Errorw("bootstrap_init_default_admin_failed", "error", err)
		return nil, err
	}

	logger.Infow("app_ready", "mode", cfg.App.Mode, "driver", cfg.Database.Driver)
	return container, nil
}

// MustBootstrap Bootstrap 的 panic 版本，供命令行入口使用
func MustBootstrap(opts Options) *provider.Container {
	container, err := Bootstrap(opts)
	if err != nil {
		panic(err)
	}
	return container
}
