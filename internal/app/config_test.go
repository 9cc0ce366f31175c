package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:    defaultAddr,
		Storage: StorageConfig{Driver: DriverSQLite, SQLitePath: "data/drinks.db"},
		Auth: AuthConfig{
			Issuer:   "https://tenant.auth.example/",
			Audience: "drinks",
			JWKSURL:  "https://tenant.auth.example/.well-known/jwks.json",
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "sqlite ok", mutate: func(*Config) {}},
		{name: "postgres ok", mutate: func(c *Config) {
			c.Storage.Driver = DriverPostgres
			c.Storage.DatabaseURL = "postgres://localhost/drinks"
		}},
		{name: "postgres without url", mutate: func(c *Config) {
			c.Storage.Driver = DriverPostgres
		}, wantErr: "database URL is required"},
		{name: "sqlite without path", mutate: func(c *Config) {
			c.Storage.SQLitePath = ""
		}, wantErr: "sqlite path is required"},
		{name: "unknown driver", mutate: func(c *Config) {
			c.Storage.Driver = "mysql"
		}, wantErr: `unknown storage driver "mysql"`},
		{name: "no issuer", mutate: func(c *Config) {
			c.Auth.Issuer = ""
		}, wantErr: "auth issuer"},
		{name: "no audience", mutate: func(c *Config) {
			c.Auth.Audience = ""
		}, wantErr: "auth audience"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAuthConfigApplyDomain(t *testing.T) {
	for _, domain := range []string{"tenant.us.auth0.com", "https://tenant.us.auth0.com/"} {
		a := AuthConfig{Domain: domain}
		a.applyDomain()
		assert.Equal(t, "https://tenant.us.auth0.com/", a.Issuer)
		assert.Equal(t, "https://tenant.us.auth0.com/.well-known/jwks.json", a.JWKSURL)
	}

	a := AuthConfig{Domain: "tenant.us.auth0.com", Issuer: "https://custom/", JWKSURL: "https://keys/jwks.json"}
	a.applyDomain()
	assert.Equal(t, "https://custom/", a.Issuer)
	assert.Equal(t, "https://keys/jwks.json", a.JWKSURL)

	got := a.Authenticator()
	assert.Equal(t, "https://custom/", got.Issuer)
	assert.Equal(t, "https://keys/jwks.json", got.JWKSURL)
}

func TestConfigPlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/drinks")
	t.Setenv("PORT", "9090")

	cfg := validConfig()
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://platform/drinks", cfg.Storage.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	cfg = validConfig()
	cfg.Addr = "127.0.0.1:1234"
	cfg.Storage.DatabaseURL = "postgres://explicit/drinks"
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://explicit/drinks", cfg.Storage.DatabaseURL)
	assert.Equal(t, "127.0.0.1:1234", cfg.Addr)
}
