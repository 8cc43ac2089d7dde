package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Storage StorageConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.App.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env         string   `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Host        string   `envconfig:"STOREFRONT_APP_HOST" default:"127.0.0.1"`
	Port        string   `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel    string   `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat   string   `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Addr is the listen address for the local HTTP surface.
func (a AppConfig) Addr() string {
	return net.JoinHostPort(a.Host, a.Port)
}

// validate refuses a wildcard CORS origin in prod: the local surface acts
// with the signed-in account's token.
func (a AppConfig) validate() error {
	if !a.IsProd() {
		return nil
	}
	for _, o := range a.CORSOrigins {
		if strings.TrimSpace(o) == "*" {
			return fmt.Errorf("cors origin %q is not allowed in %s", o, a.Env)
		}
	}
	return nil
}

// APIConfig points at the remote storefront API.
type APIConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_API_BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"15s"`
}

// StorageConfig selects where the cart and session are persisted.
type StorageConfig struct {
	Driver    string `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"sqlite"`
	Path      string `envconfig:"STOREFRONT_STORAGE_PATH" default:"storefront.db"`
	DSN       string `envconfig:"STOREFRONT_STORAGE_DSN"`
	RedisURL  string `envconfig:"STOREFRONT_REDIS_URL"`
	KeyPrefix string `envconfig:"STOREFRONT_STORAGE_KEY_PREFIX" default:"storefront"`
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(s.Driver) {
	case StorageMemory:
		return nil
	case StorageSQLite:
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("storage path is required for driver %q", s.Driver)
		}
		return nil
	case StorageMySQL, StoragePostgres:
		if strings.TrimSpace(s.DSN) == "" {
			return fmt.Errorf("storage dsn is required for driver %q", s.Driver)
		}
		return nil
	case StorageRedis:
		if strings.TrimSpace(s.RedisURL) == "" {
			return fmt.Errorf("redis url is required for driver %q", s.Driver)
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}
