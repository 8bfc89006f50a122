package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8765", cfg.Server.Addr())
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "sqlite3", cfg.Storage.Driver)
	assert.Equal(t, "powershell", cfg.Executor.Shell)
	assert.Equal(t, 30*time.Second, cfg.Executor.Timeout)
	assert.Equal(t, 1000, cfg.Audit.MaxEvents)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.UseFileShim())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "sql")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/sg")
	t.Setenv("EXECUTOR_FILE_SHIM", "fixtures.json")
	t.Setenv("EXECUTOR_TIMEOUT", "5s")
	t.Setenv("AUDIT_MAX_EVENTS", "50")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/sg", cfg.Storage.ResolveDSN("/ignored"))
	assert.True(t, cfg.UseFileShim())
	assert.Equal(t, 5*time.Second, cfg.Executor.Timeout)
	assert.Equal(t, 50, cfg.Audit.MaxEvents)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("EXECUTOR_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestStorageConfig_ResolveDSN(t *testing.T) {
	c := StorageConfig{}
	dsn := c.ResolveDSN("/data")
	assert.True(t, strings.HasSuffix(dsn, "sentinelguard.db"))
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8765},
		Storage:  StorageConfig{Backend: BackendFile, Driver: "sqlite3"},
		Executor: ExecutorConfig{Shell: "powershell", Timeout: time.Second},
		Audit:    AuditConfig{MaxEvents: 1000},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "SERVER_PORT"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "s3" }, "STORAGE_BACKEND"},
		{"bad driver", func(c *Config) {
			c.Storage.Backend = BackendSQL
			c.Storage.Driver = "mysql"
		}, "DB_DRIVER"},
		{"zero timeout", func(c *Config) { c.Executor.Timeout = 0 }, "EXECUTOR_TIMEOUT"},
		{"zero cap", func(c *Config) { c.Audit.MaxEvents = 0 }, "AUDIT_MAX_EVENTS"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "LOG_FORMAT"},
		{"oidc without issuer", func(c *Config) { c.OIDC.Enabled = true }, "OIDC_ISSUER_URL"},
		{"oidc short secret", func(c *Config) {
			c.OIDC = OIDCConfig{
				Enabled:       true,
				IssuerURL:     "https://idp.example.com",
				ClientID:      "sg",
				ClientSecret:  "secret",
				RedirectURL:   "http://127.0.0.1:8765/auth/callback",
				SessionSecret: "short",
			}
		}, "OIDC_SESSION_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOIDCConfig_Helpers(t *testing.T) {
	c := OIDCConfig{Scopes: "openid, email", AllowedDomains: "example.com, corp.example.com"}
	assert.Equal(t, []string{"openid", "email"}, c.GetScopes())
	assert.Equal(t, []string{"example.com", "corp.example.com"}, c.GetAllowedDomains())

	c.SessionSecret = strings.Repeat("ab", 32)
	secret, err := c.GetSessionSecretBytes()
	require.NoError(t, err)
	assert.Len(t, secret, 32)

	c.SessionSecret = strings.Repeat("x", 32)
	secret, err = c.GetSessionSecretBytes()
	require.NoError(t, err)
	assert.Len(t, secret, 32)
}
