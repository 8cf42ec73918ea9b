package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	QRToken  QRTokenConfig  `mapstructure:"qrtoken"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Risk     RiskConfig     `mapstructure:"risk"`
	AES      AESConfig      `mapstructure:"aes"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig configures the session tokens issued at login.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// QRTokenConfig configures the signed payment tokens.
type QRTokenConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// PaymentConfig holds settlement parameters.
type PaymentConfig struct {
	FeeBps      int64 `mapstructure:"fee_bps"` // Platform fee in basis points
	RechargeMin int64 `mapstructure:"recharge_min"`
	RechargeMax int64 `mapstructure:"recharge_max"`
}

// RiskConfig holds the fraud scoring rule parameters.
type RiskConfig struct {
	HighAmountThreshold int64         `mapstructure:"high_amount_threshold"`
	HighAmountScore     int           `mapstructure:"high_amount_score"`
	BurstCount          int           `mapstructure:"burst_count"`
	BurstWindow         time.Duration `mapstructure:"burst_window"`
	BurstScore          int           `mapstructure:"burst_score"`
	NewAccountMaxAge    time.Duration `mapstructure:"new_account_max_age"`
	NewAccountThreshold int64         `mapstructure:"new_account_threshold"`
	NewAccountScore     int           `mapstructure:"new_account_score"`
	SuspiciousScore     int           `mapstructure:"suspicious_score"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CPL_ (Campus Payment Ledger).
// Nested keys use underscore: CPL_DATABASE_HOST, CPL_QRTOKEN_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "campus_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "campus-payment-ledger")
	v.SetDefault("qrtoken.secret", "")
	v.SetDefault("qrtoken.ttl", "60s")
	v.SetDefault("payment.fee_bps", 200)
	v.SetDefault("payment.recharge_min", 10)
	v.SetDefault("payment.recharge_max", 10000)
	v.SetDefault("risk.high_amount_threshold", 1000)
	v.SetDefault("risk.high_amount_score", 30)
	v.SetDefault("risk.burst_count", 5)
	v.SetDefault("risk.burst_window", "5m")
	v.SetDefault("risk.burst_score", 40)
	v.SetDefault("risk.new_account_max_age", "168h")
	v.SetDefault("risk.new_account_threshold", 500)
	v.SetDefault("risk.new_account_score", 25)
	v.SetDefault("risk.suspicious_score", 60)
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: CPL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("CPL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
