package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/drinks-api/internal/auth"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (DRINKS_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Storage   StorageConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StorageConfig selects and configures the drink store.
type StorageConfig struct {
	Driver      string `default:"postgres" usage:"Storage driver: postgres or sqlite" flag:"storage-driver"`
	DatabaseURL string `usage:"PostgreSQL connection URL (DRINKS_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SQLitePath  string `default:"data/drinks.db" usage:"SQLite database file" flag:"sqlite-path"`
}

// AuthConfig describes the identity provider that issues bearer tokens.
type AuthConfig struct {
	Domain   string `usage:"Identity provider domain, e.g. tenant.us.auth0.com" flag:"auth-domain"`
	Issuer   string `usage:"Expected token issuer (default https://<domain>/)" flag:"auth-issuer"`
	Audience string `usage:"Expected token audience" flag:"auth-audience"`
	JWKSURL  string `usage:"JWKS URL (default https://<domain>/.well-known/jwks.json)" flag:"auth-jwks-url"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window, 0 disables"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "DRINKS",
		Files:     []string{"config.yaml", "/etc/drinks/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	cfg.Auth.applyDomain()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected driver and the identity provider are
// fully configured.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required: set DRINKS_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite path is required: set DRINKS_STORAGE_SQLITE_PATH")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Auth.Issuer == "" || c.Auth.JWKSURL == "" {
		return errors.New("auth issuer and JWKS URL are required: set DRINKS_AUTH_DOMAIN")
	}
	if c.Auth.Audience == "" {
		return errors.New("auth audience is required: set DRINKS_AUTH_AUDIENCE")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's DRINKS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Storage.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// applyDomain derives the issuer and JWKS URL from Domain when they are not
// set explicitly.
func (a *AuthConfig) applyDomain() {
	domain := strings.TrimSuffix(strings.TrimPrefix(a.Domain, "https://"), "/")
	if domain == "" {
		return
	}
	if a.Issuer == "" {
		a.Issuer = "https://" + domain + "/"
	}
	if a.JWKSURL == "" {
		a.JWKSURL = "https://" + domain + "/.well-known/jwks.json"
	}
}

// Authenticator returns the auth package configuration.
func (a AuthConfig) Authenticator() auth.Config {
	return auth.Config{
		Issuer:   a.Issuer,
		Audience: a.Audience,
		JWKSURL:  a.JWKSURL,
	}
}
