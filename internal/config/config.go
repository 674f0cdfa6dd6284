package config

import (
	"net"
	"strconv"
	"time"

	"github.com/maxviazov/taskboard-service/internal/logger"
	"github.com/maxviazov/taskboard-service/internal/pagination"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logger     logger.Config    `mapstructure:"logger" validate:"-"` // validated by logger.New after defaults
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Pagination PaginationConfig `mapstructure:"pagination"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name" validate:"required"`
	Version         string        `mapstructure:"version"`
	Env             string        `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// PostgresConfig: credentials are expected from APP_POSTGRES_* env, never the YAML file.
type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required"`
	Port              int    `mapstructure:"port" validate:"min=1,max=65535"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	DBName            string `mapstructure:"db" validate:"required"`
	SSLMode           string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"min=1"`
	MinConns          int32  `mapstructure:"min_conns" validate:"min=0,ltefield=MaxConns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`   // seconds
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`  // seconds
	HealthCheckPeriod int    `mapstructure:"health_check_period"` // seconds
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer     string        `mapstructure:"issuer"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	BcryptCost int           `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

// RedisConfig: when Enabled is false the dashboard is computed on every request.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"min=0"`
	DashboardTTL time.Duration `mapstructure:"dashboard_ttl" validate:"gt=0"`
}

// PaginationConfig: the max_* values bound what clients may ask the range calculator for.
type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" validate:"min=1,ltefield=MaxPageSize"`
	MaxPageSize     int `mapstructure:"max_page_size" validate:"min=1"`
	SiblingCount    int `mapstructure:"sibling_count" validate:"min=0,ltefield=MaxSiblingCount"`
	MaxSiblingCount int `mapstructure:"max_sibling_count" validate:"min=0"`
	MaxRangePages   int `mapstructure:"max_range_pages" validate:"min=1"`
}

// RangeLimits converts the bounds for the pagination package.
func (p PaginationConfig) RangeLimits() pagination.Limits {
	return pagination.Limits{MaxSiblings: p.MaxSiblingCount, MaxPages: p.MaxRangePages}
}

// Addr is the listen address of the HTTP server.
func (a AppConfig) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}
