package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cabinfolio-backend/internal/policy"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Vault        VaultConfig        `yaml:"vault"`
	Accounting   AccountingConfig   `yaml:"accounting"`
	Reservations ReservationsConfig `yaml:"reservations"`
	Policy       PolicyConfig       `yaml:"policy"`
	JWT          JWTConfig          `yaml:"jwt"`
	Email        EmailConfig        `yaml:"email"`
	Log          LogConfig          `yaml:"log"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// VaultConfig contains credential encryption settings
type VaultConfig struct {
	Passphrase string `yaml:"passphrase"`
	Salt       string `yaml:"salt"`
}

// AccountingConfig contains the accounting authorization server settings.
// AdminOwnerRef is the single designated identity whose credential is
// used for the centralized accounting integration; it is explicit
// configuration, never a role lookup at runtime.
type AccountingConfig struct {
	TokenURL       string `yaml:"token_url"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	AdminOwnerRef  string `yaml:"admin_owner_ref"`
	AdminEmail     string `yaml:"admin_email"`
}

// ReservationsConfig contains the external reservation system settings
type ReservationsConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PolicyConfig contains booking policy thresholds; zero values fall back
// to the package defaults.
type PolicyConfig struct {
	MinNights         int `yaml:"min_nights"`
	MaxNights         int `yaml:"max_nights"`
	AdvanceHours      int `yaml:"advance_hours"`
	CancellationHours int `yaml:"cancellation_hours"`
	AnnualDayLimit    int `yaml:"annual_day_limit"`
}

// Rules converts the config section into policy rules with defaults
// applied.
func (p PolicyConfig) Rules() policy.Rules {
	return policy.Rules{
		MinNights:         p.MinNights,
		MaxNights:         p.MaxNights,
		AdvanceHours:      p.AdvanceHours,
		CancellationHours: p.CancellationHours,
		AnnualDayLimit:    p.AnnualDayLimit,
	}.Normalize()
}

// JWTConfig contains owner API token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	FlagAllowanceCloseouts string `yaml:"flag_allowance_closeouts"`
	SweepReconciliation    string `yaml:"sweep_reconciliation"`
	RefreshCredentials     string `yaml:"refresh_credentials"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Secrets
	if val := os.Getenv("VAULT_PASSPHRASE"); val != "" {
		c.Vault.Passphrase = val
	}
	if val := os.Getenv("VAULT_SALT"); val != "" {
		c.Vault.Salt = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("ACCOUNTING_CLIENT_ID"); val != "" {
		c.Accounting.ClientID = val
	}
	if val := os.Getenv("ACCOUNTING_CLIENT_SECRET"); val != "" {
		c.Accounting.ClientSecret = val
	}
	if val := os.Getenv("RESERVATIONS_API_KEY"); val != "" {
		c.Reservations.APIKey = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Vault.Passphrase == "" {
		return fmt.Errorf("vault passphrase is required")
	}
	if len(c.Vault.Passphrase) < 32 {
		return fmt.Errorf("vault passphrase must be at least 32 characters")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	if c.Reservations.BaseURL == "" {
		return fmt.Errorf("reservations base URL is required")
	}
	if c.Reservations.TimeoutSeconds == 0 {
		c.Reservations.TimeoutSeconds = 15
	}

	if c.Accounting.TokenURL == "" {
		return fmt.Errorf("accounting token URL is required")
	}
	if c.Accounting.AdminOwnerRef == "" {
		return fmt.Errorf("accounting admin owner ref is required")
	}
	if c.Accounting.TimeoutSeconds == 0 {
		c.Accounting.TimeoutSeconds = 10
	}

	// Scheduler defaults
	if c.Scheduler.FlagAllowanceCloseouts == "" {
		c.Scheduler.FlagAllowanceCloseouts = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.SweepReconciliation == "" {
		c.Scheduler.SweepReconciliation = "0 0 3 * * *" // 3 AM UTC
	}
	if c.Scheduler.RefreshCredentials == "" {
		c.Scheduler.RefreshCredentials = "0 */30 * * * *" // every 30 minutes
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
