package config

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bcnelson/sentinelguard/internal/logging"
	"github.com/caarlos0/env/v9"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Executor ExecutorConfig
	Audit    AuditConfig
	Auth     AuthConfig
	OIDC     OIDCConfig
	Log      logging.Config
}

// OIDCConfig holds OIDC authentication configuration.
type OIDCConfig struct {
	Enabled         bool          `env:"OIDC_ENABLED" envDefault:"false"`
	IssuerURL       string        `env:"OIDC_ISSUER_URL"`
	ClientID        string        `env:"OIDC_CLIENT_ID"`
	ClientSecret    string        `env:"OIDC_CLIENT_SECRET"`
	RedirectURL     string        `env:"OIDC_REDIRECT_URL"`
	Scopes          string        `env:"OIDC_SCOPES" envDefault:"openid,email,profile"`
	SessionSecret   string        `env:"OIDC_SESSION_SECRET"`
	SessionDuration time.Duration `env:"OIDC_SESSION_DURATION" envDefault:"12h"`
	AllowedDomains  string        `env:"OIDC_ALLOWED_DOMAINS"`

	RequireVerifiedEmail bool `env:"OIDC_REQUIRE_VERIFIED_EMAIL" envDefault:"true"`
}

// GetScopes returns the OIDC scopes as a slice.
func (c *OIDCConfig) GetScopes() []string {
	if c.Scopes == "" {
		return []string{"openid", "email", "profile"}
	}
	scopes := strings.Split(c.Scopes, ",")
	for i := range scopes {
		scopes[i] = strings.TrimSpace(scopes[i])
	}
	return scopes
}

// GetAllowedDomains returns the allowed domains as a slice.
func (c *OIDCConfig) GetAllowedDomains() []string {
	if c.AllowedDomains == "" {
		return nil
	}
	domains := strings.Split(c.AllowedDomains, ",")
	for i := range domains {
		domains[i] = strings.TrimSpace(domains[i])
	}
	return domains
}

// GetSessionSecretBytes returns the session secret as bytes.
func (c *OIDCConfig) GetSessionSecretBytes() ([]byte, error) {
	if c.SessionSecret == "" {
		return nil, fmt.Errorf("OIDC_SESSION_SECRET is required")
	}
	// 64 hex chars = 32 bytes
	if len(c.SessionSecret) == 64 {
		decoded, err := hex.DecodeString(c.SessionSecret)
		if err == nil {
			return decoded, nil
		}
	}
	if len(c.SessionSecret) != 32 {
		return nil, fmt.Errorf("OIDC_SESSION_SECRET must be 32 bytes (or 64 hex characters)")
	}
	return []byte(c.SessionSecret), nil
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"SERVER_PORT" envDefault:"8765"`
}

// Storage backends.
const (
	BackendFile = "file"
	BackendSQL  = "sql"
)

// StorageConfig selects where the whitelist, audit log and API keys live.
type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataDir string `env:"SG_DATA_DIR"`
	Driver  string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DSN     string `env:"DB_DSN"`
}

// ResolveDSN returns the configured DSN, or a sqlite file inside dataDir.
func (c *StorageConfig) ResolveDSN(dataDir string) string {
	if c.DSN != "" {
		return c.DSN
	}
	return filepath.Join(dataDir, "sentinelguard.db")
}

// ExecutorConfig holds privileged command execution settings.
type ExecutorConfig struct {
	Shell    string        `env:"EXECUTOR_SHELL" envDefault:"powershell"`
	Timeout  time.Duration `env:"EXECUTOR_TIMEOUT" envDefault:"30s"`
	FileShim string        `env:"EXECUTOR_FILE_SHIM"` // fixture file; disables PowerShell
}

// AuditConfig holds audit log settings.
type AuditConfig struct {
	MaxEvents int `env:"AUDIT_MAX_EVENTS" envDefault:"1000"`
}

// AuthConfig holds API key settings.
type AuthConfig struct {
	BootstrapAPIKey string `env:"BOOTSTRAP_API_KEY"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Storage); err != nil {
		return nil, fmt.Errorf("parsing storage config: %w", err)
	}
	if err := env.Parse(&cfg.Executor); err != nil {
		return nil, fmt.Errorf("parsing executor config: %w", err)
	}
	if err := env.Parse(&cfg.Audit); err != nil {
		return nil, fmt.Errorf("parsing audit config: %w", err)
	}
	if err := env.Parse(&cfg.Auth); err != nil {
		return nil, fmt.Errorf("parsing auth config: %w", err)
	}
	if err := env.Parse(&cfg.OIDC); err != nil {
		return nil, fmt.Errorf("parsing oidc config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}

	switch c.Storage.Backend {
	case BackendFile:
	case BackendSQL:
		switch c.Storage.Driver {
		case "sqlite3", "postgres":
		default:
			return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be file or sql, got %q", c.Storage.Backend)
	}

	if c.Executor.Timeout <= 0 {
		return fmt.Errorf("EXECUTOR_TIMEOUT must be positive")
	}
	if c.Audit.MaxEvents <= 0 {
		return fmt.Errorf("AUDIT_MAX_EVENTS must be positive")
	}

	if err := c.Log.Validate(); err != nil {
		return err
	}

	if c.OIDC.Enabled {
		if c.OIDC.IssuerURL == "" {
			return fmt.Errorf("OIDC_ISSUER_URL is required when OIDC is enabled")
		}
		if c.OIDC.ClientID == "" {
			return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC is enabled")
		}
		if c.OIDC.ClientSecret == "" {
			return fmt.Errorf("OIDC_CLIENT_SECRET is required when OIDC is enabled")
		}
		if c.OIDC.RedirectURL == "" {
			return fmt.Errorf("OIDC_REDIRECT_URL is required when OIDC is enabled")
		}
		if _, err := c.OIDC.GetSessionSecretBytes(); err != nil {
			return err
		}
	}

	return nil
}

// UseFileShim returns true if fixtures replace PowerShell.
func (c *Config) UseFileShim() bool {
	return c.Executor.FileShim != ""
}
