package config

import (
	"fmt"
	"strings"

	"github.com/firewood-bank/backend/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Invoice   InvoiceConfig   `mapstructure:"invoice"`
}

// AppConfig 运行模式配置
type AppConfig struct {
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// AuthConfig 本地会话令牌配置
type AuthConfig struct {
	SecretKey         string `mapstructure:"secret"`
	ExpireHours       int    `mapstructure:"expire_hours"`
	MinPasswordLength int    `mapstructure:"min_password_length"`
}

// InventoryConfig 柴薪库存绑定配置
// 台账按名称/单位模式解析受跟踪的柴薪库存记录。
type InventoryConfig struct {
	StockNamePatterns []string `mapstructure:"stock_name_patterns"`
	StockUnitPatterns []string `mapstructure:"stock_unit_patterns"`
}

// InvoiceConfig 发票配置
type InvoiceConfig struct {
	SuggestedDonationPerCord float64 `mapstructure:"suggested_donation_per_cord"`
	NumberPrefix             string  `mapstructure:"number_prefix"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")   // 从 cmd/* 运行时
	viper.AddConfigPath("./etc")

	viper.SetDefault("app.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "firewood-bank.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 5)
	viper.SetDefault("log.max_age_days", 14)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/firewood-bank.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("auth.secret", "change-me-in-production")
	viper.SetDefault("auth.expire_hours", 12)
	viper.SetDefault("auth.min_password_length", 8)
	viper.SetDefault("inventory.stock_name_patterns", []string{"wood", "cord"})
	viper.SetDefault("inventory.stock_unit_patterns", []string{"cord"})
	viper.SetDefault("invoice.suggested_donation_per_cord", 0)
	viper.SetDefault("invoice.number_prefix", "FB")

	viper.SetEnvPrefix("FB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("config.yml not found, using defaults")
		} else {
			fmt.Printf("read config failed: %v, using defaults\n", err)
		}
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Printf("parse config failed: %v, using defaults\n", err)
	}
	return &cfg
}
