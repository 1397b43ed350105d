package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr                    string
	DatabaseURL             string
	JWTSecret               string
	DataEncryptionKey       string
	Environment             string
	SeedTenantName          string
	SeedAdminEmail          string
	SeedAdminPassword       string
	SeedSystemAdminEmail    string
	SeedSystemAdminPassword string
	SeedPayrollEmail        string
	SeedPayrollPassword     string
	EmailFrom               string
	EmailEnabled            bool
	SMTPHost                string
	SMTPPort                int
	SMTPUser                string
	SMTPPassword            string
	SMTPUseTLS              bool
	RunMigrations           bool
	RunSeed                 bool
	MaxBodyBytes            int64
	RateLimitPerMinute      int
	MetricsEnabled          bool
	ShutdownTimeout         time.Duration
	WorkEmailDomain         string
	InitialPassword         string
	HolderPolicy            string
}

var defaults = map[string]any{
	"APP_ADDR":                      ":8080",
	"DATABASE_URL":                  "",
	"JWT_SECRET":                    "",
	"DATA_ENCRYPTION_KEY":           "",
	"APP_ENV":                       "development",
	"SEED_TENANT_NAME":              "Default Tenant",
	"SEED_ADMIN_EMAIL":              "",
	"SEED_ADMIN_PASSWORD":           "",
	"SEED_SYSTEM_ADMIN_EMAIL":       "",
	"SEED_SYSTEM_ADMIN_PASSWORD":    "",
	"SEED_PAYROLL_MANAGER_EMAIL":    "",
	"SEED_PAYROLL_MANAGER_PASSWORD": "",
	"EMAIL_FROM":                    "no-reply@example.com",
	"EMAIL_ENABLED":                 false,
	"SMTP_HOST":                     "",
	"SMTP_PORT":                     587,
	"SMTP_USER":                     "",
	"SMTP_PASSWORD":                 "",
	"SMTP_USE_TLS":                  true,
	"RUN_MIGRATIONS":                true,
	"RUN_SEED":                      true,
	"MAX_BODY_BYTES":                1048576,
	"RATE_LIMIT_PER_MINUTE":         60,
	"METRICS_ENABLED":               true,
	"SHUTDOWN_TIMEOUT":              "15s",
	"ONBOARDING_WORK_EMAIL_DOMAIN":  "company.com",
	"ONBOARDING_INITIAL_PASSWORD":   "Welcome@2024",
	"ONBOARDING_HOLDER_POLICY":      "first_listed",
}

// Load reads configuration from the environment, optionally layered over the
// file named by CONFIG_FILE. Environment values always win.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	return Config{
		Addr:                    v.GetString("APP_ADDR"),
		DatabaseURL:             v.GetString("DATABASE_URL"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		DataEncryptionKey:       v.GetString("DATA_ENCRYPTION_KEY"),
		Environment:             v.GetString("APP_ENV"),
		SeedTenantName:          v.GetString("SEED_TENANT_NAME"),
		SeedAdminEmail:          v.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminPassword:       v.GetString("SEED_ADMIN_PASSWORD"),
		SeedSystemAdminEmail:    v.GetString("SEED_SYSTEM_ADMIN_EMAIL"),
		SeedSystemAdminPassword: v.GetString("SEED_SYSTEM_ADMIN_PASSWORD"),
		SeedPayrollEmail:        v.GetString("SEED_PAYROLL_MANAGER_EMAIL"),
		SeedPayrollPassword:     v.GetString("SEED_PAYROLL_MANAGER_PASSWORD"),
		EmailFrom:               v.GetString("EMAIL_FROM"),
		EmailEnabled:            v.GetBool("EMAIL_ENABLED"),
		SMTPHost:                v.GetString("SMTP_HOST"),
		SMTPPort:                v.GetInt("SMTP_PORT"),
		SMTPUser:                v.GetString("SMTP_USER"),
		SMTPPassword:            v.GetString("SMTP_PASSWORD"),
		SMTPUseTLS:              v.GetBool("SMTP_USE_TLS"),
		RunMigrations:           v.GetBool("RUN_MIGRATIONS"),
		RunSeed:                 v.GetBool("RUN_SEED"),
		MaxBodyBytes:            v.GetInt64("MAX_BODY_BYTES"),
		RateLimitPerMinute:      v.GetInt("RATE_LIMIT_PER_MINUTE"),
		MetricsEnabled:          v.GetBool("METRICS_ENABLED"),
		ShutdownTimeout:         v.GetDuration("SHUTDOWN_TIMEOUT"),
		WorkEmailDomain:         v.GetString("ONBOARDING_WORK_EMAIL_DOMAIN"),
		InitialPassword:         v.GetString("ONBOARDING_INITIAL_PASSWORD"),
		HolderPolicy:            v.GetString("ONBOARDING_HOLDER_POLICY"),
	}, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if strings.TrimSpace(c.WorkEmailDomain) == "" {
		return fmt.Errorf("ONBOARDING_WORK_EMAIL_DOMAIN must not be empty")
	}
	if len(c.InitialPassword) < 8 {
		return fmt.Errorf("ONBOARDING_INITIAL_PASSWORD must be at least 8 characters")
	}
	switch c.HolderPolicy {
	case "first_listed", "earliest_created":
	default:
		return fmt.Errorf("ONBOARDING_HOLDER_POLICY must be first_listed or earliest_created")
	}
	return nil
}
