package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	JWT         JWTConfig      `mapstructure:"jwt"`
	Accrual     AccrualConfig  `mapstructure:"accrual"`
	Referral    ReferralConfig `mapstructure:"referral"`
	Tracing     TracingConfig  `mapstructure:"tracing"`
	Admin       AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Host           string   `mapstructure:"host"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	AccessTTL int    `mapstructure:"access_token_ttl"`
	Issuer    string `mapstructure:"issuer"`
}

// AccrualConfig tunes the profit recomputation worker
type AccrualConfig struct {
	// Interval between accrual passes, in seconds
	IntervalSeconds int `mapstructure:"interval_seconds"`
	// WindowDays is the length of the daily profit series
	WindowDays int `mapstructure:"window_days"`
}

// ReferralConfig tunes the referral bonus applied on approved deposits
type ReferralConfig struct {
	// BonusPercent of an approved deposit credited to the referrer
	BonusPercent float64 `mapstructure:"bonus_percent"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	CollectorURL string  `mapstructure:"collector_url"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	Insecure     bool    `mapstructure:"insecure"`
}

// AdminConfig bootstraps the back-office account on first start
type AdminConfig struct {
	Email string `mapstructure:"email"`
	// PasswordHash is a bcrypt hash; plaintext admin passwords are never
	// stored or compared.
	PasswordHash string `mapstructure:"password_hash"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if present
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "simpleprofit")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	viper.SetDefault("jwt.access_token_ttl", 604800) // 7 days
	viper.SetDefault("jwt.issuer", "simpleprofit")

	// The dashboard polls every minute; the worker matches it
	viper.SetDefault("accrual.interval_seconds", 60)
	viper.SetDefault("accrual.window_days", 30)

	viper.SetDefault("referral.bonus_percent", 5.0)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.collector_url", "localhost:4317")
	viper.SetDefault("tracing.sample_rate", 1.0)
	viper.SetDefault("tracing.insecure", false)

	viper.SetDefault("admin.email", "admin@simpleprofit.local")
}

func validate(cfg *Config) error {
	if cfg.Environment == "production" {
		if cfg.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if cfg.Admin.PasswordHash == "" {
			return fmt.Errorf("admin.password_hash is required in production")
		}
	}

	if cfg.Accrual.IntervalSeconds <= 0 {
		return fmt.Errorf("accrual.interval_seconds must be positive")
	}

	if cfg.Accrual.WindowDays <= 0 {
		return fmt.Errorf("accrual.window_days must be positive")
	}

	if cfg.Referral.BonusPercent < 0 {
		return fmt.Errorf("referral.bonus_percent cannot be negative")
	}

	return nil
}
