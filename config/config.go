package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from environment variables.
// Everything is injected from here; no package reads os.Getenv at runtime.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int    `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"` // comma separated
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig contains the cache address. Empty means caching is disabled.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// AuthConfig contains token signing settings.
type AuthConfig struct {
	Secret          string `mapstructure:"secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// StorageConfig contains the content directory for uploaded files.
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DSN builds a gorm/pgx compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Origins splits the comma separated allowed origins list.
func (a APIConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(a.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", "http://localhost:3000,http://localhost:8000")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "docvault")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "")
	v.SetDefault("auth.token_ttl_minutes", 1440)
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("log.level", "info")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"api.port":               "PORT",
		"api.allowed_origins":    "ALLOWED_ORIGINS",
		"database.host":          "DB_HOST",
		"database.port":          "DB_PORT",
		"database.name":          "DB_NAME",
		"database.user":          "DB_USER",
		"database.password":      "DB_PASSWORD",
		"database.sslmode":       "DB_SSLMODE",
		"redis.addr":             "REDIS_ADDR",
		"auth.secret":            "AUTH_SECRET",
		"auth.token_ttl_minutes": "TOKEN_TTL_MINUTES",
		"storage.upload_dir":     "UPLOAD_DIR",
		"log.level":              "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.Auth.Secret == "" {
		return errors.New("AUTH_SECRET must be set")
	}
	if cfg.Auth.TokenTTLMinutes <= 0 {
		return errors.New("TOKEN_TTL_MINUTES must be positive")
	}
	if cfg.Storage.UploadDir == "" {
		return errors.New("UPLOAD_DIR must be set")
	}
	return nil
}
