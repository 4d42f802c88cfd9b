package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log   Logger     `mapstructure:"logger"`
	DB    Database   `mapstructure:"database"`
	API   API        `mapstructure:"api"`
	Auth  Auth       `mapstructure:"auth"`
	Vault Vault      `mapstructure:"vault"`
	Kite  KiteConfig `mapstructure:"kite"`
	Cache Cache      `mapstructure:"cache"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Auth struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

type Vault struct {
	// EncryptionKey must be exactly 32 bytes (AES-256).
	EncryptionKey string `mapstructure:"encryption_key"`
}

type KiteConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	LoginBaseURL     string        `mapstructure:"login_base_url"`
	BaseTimeout      time.Duration `mapstructure:"base_timeout"`
	MaxRequestPerSec int           `mapstructure:"max_request_per_sec"`
	// AllowUnknownIndex restores the legacy sizing of an unrecognized
	// index with lot size 1 instead of rejecting the order.
	AllowUnknownIndex bool `mapstructure:"allow_unknown_index"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	PnLExpiration     time.Duration `mapstructure:"pnl_expiration"`
}

func Load() (*Config, error) {
	// .env is optional, real environment variables win either way.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Vault.EncryptionKey) != 32 {
		return nil, fmt.Errorf("vault encryption key must be 32 bytes, got %d", len(cfg.Vault.EncryptionKey))
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt secret is required")
	}
	if cfg.Auth.TokenExpiry == 0 {
		cfg.Auth.TokenExpiry = 24 * time.Hour
	}
	if cfg.Kite.BaseTimeout == 0 {
		cfg.Kite.BaseTimeout = 5 * time.Second
	}

	return &cfg, nil
}
