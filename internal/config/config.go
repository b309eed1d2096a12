package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Compliance   ComplianceConfig
	Verification VerificationConfig
	Email        EmailConfig
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the unified Redis connection settings.
// Supported modes: single, sentinel, cluster.
type RedisConfig struct {
	Mode     string   `mapstructure:"mode"`
	Addrs    []string `mapstructure:"addrs"`
	Addr     string   `mapstructure:"addr"`
	Password string   `mapstructure:"password"`
	DB       int      `mapstructure:"db"`

	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
}

// ComplianceConfig holds consent settings.
type ComplianceConfig struct {
	// TermsVersion is recorded on acknowledgments when the client omits one.
	TermsVersion string `mapstructure:"terms_version"`
	// TierCacheTTLSec bounds how long the soft gate may serve a cached tier.
	TierCacheTTLSec int `mapstructure:"tier_cache_ttl_sec"`
}

// VerificationConfig holds external age verification settings.
type VerificationConfig struct {
	Provider        string `mapstructure:"provider"`
	Endpoint        string `mapstructure:"endpoint"`
	APIKey          string `mapstructure:"api_key"`
	StartTimeoutSec int    `mapstructure:"start_timeout_sec"`
	SessionTTLHours int    `mapstructure:"session_ttl_hours"`
	FrontendURL     string `mapstructure:"frontend_url"`

	// OperatorToken gates the manual-override and audit-export endpoints.
	// Operator-only; never issued to ordinary users.
	OperatorToken string `mapstructure:"operator_token"`
}

// EmailConfig holds transactional email settings.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// PostgresConnectionString builds the PostgreSQL DSN.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads the configuration file and environment overrides.
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	// Secrets and connection details can always come from the environment.
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	vip.BindEnv("compliance.terms_version", "COMPLIANCE_TERMS_VERSION")

	vip.BindEnv("verification.provider", "VERIFICATION_PROVIDER")
	vip.BindEnv("verification.endpoint", "VERIFICATION_ENDPOINT")
	vip.BindEnv("verification.api_key", "VERIFICATION_API_KEY")
	vip.BindEnv("verification.operator_token", "VERIFICATION_OPERATOR_TOKEN")
	vip.BindEnv("verification.frontend_url", "VERIFICATION_FRONTEND_URL")

	vip.BindEnv("email.enabled", "EMAIL_ENABLED")
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	vip.BindEnv("server.port", "SERVER_PORT")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Config file '%s' not found, relying on environment/defaults.", configPath)
			} else {
				log.Printf("Warning: could not read config file '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Loaded configuration ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Verification Provider: %s", cfg.Verification.Provider)
		log.Printf("Email Enabled: %t", cfg.Email.Enabled)
	}

	return &cfg, nil
}
