// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PaymentConfig struct {
	Dana struct {
		MerchantID  string `yaml:"merchant_id"`
		SecretKey   string `yaml:"secret_key"`
		CallbackURL string `yaml:"callback_url"`
		Sandbox     bool   `yaml:"sandbox"`
	} `yaml:"dana"`
	// Window is how long a QR attempt stays payable. Defaults to 600s.
	Window time.Duration `yaml:"window"`
}

type SchedulerConfig struct {
	PaymentExpiryInterval time.Duration `yaml:"payment_expiry_interval"`
	LifecycleInterval     time.Duration `yaml:"lifecycle_interval"`
	ReminderInterval      time.Duration `yaml:"reminder_interval"`
	ReminderWindowDays    int           `yaml:"reminder_window_days"`
}

type AdminConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Admin     AdminConfig     `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Payment.Window <= 0 {
		cfg.Payment.Window = 600 * time.Second
	}
	if cfg.Scheduler.PaymentExpiryInterval <= 0 {
		cfg.Scheduler.PaymentExpiryInterval = 30 * time.Second
	}
	if cfg.Scheduler.LifecycleInterval <= 0 {
		cfg.Scheduler.LifecycleInterval = time.Hour
	}
	if cfg.Scheduler.ReminderInterval <= 0 {
		cfg.Scheduler.ReminderInterval = 24 * time.Hour
	}
	if cfg.Scheduler.ReminderWindowDays <= 0 {
		cfg.Scheduler.ReminderWindowDays = 7
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if !dev {
		if cfg.Payment.Dana.MerchantID == "" || cfg.Payment.Dana.SecretKey == "" {
			return nil, errors.New("payment.dana.merchant_id and secret_key are required outside dev mode")
		}
		if cfg.Admin.JWTSecret == "" {
			return nil, errors.New("admin.jwt_secret is required outside dev mode")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
