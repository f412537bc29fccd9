package config

import (
	"fmt"
	"time"
)

// DatabaseConfig selects where charts, surveys, waypoints and the mapping
// claims live. SQLite is the single-process default; postgres lets several
// automation processes share one exploration claim table.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// URL wins over the discrete postgres fields when set
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// Path is the sqlite file; empty means an in-memory database
	Path string `mapstructure:"path"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig only applies to postgres
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// DSN is the driver connection string for the configured type
func (c DatabaseConfig) DSN() string {
	switch c.Type {
	case "postgres":
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	default:
		if c.Path == "" {
			return ":memory:"
		}
		return c.Path
	}
}
