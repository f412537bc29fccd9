package config

import "fmt"

// MetricsConfig controls the Prometheus endpoint served during `run`
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Path    string `mapstructure:"path"`
}

// Address is the listen address, host:port
func (c MetricsConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
