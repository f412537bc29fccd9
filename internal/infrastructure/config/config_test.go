package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, "api:\n  token: abc\n")

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.API.Token)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 2, cfg.API.RateLimit.Requests)
	assert.Equal(t, config.DefaultContractThreshold, cfg.Automation.ContractThreshold)
	assert.Equal(t, 10*time.Second, cfg.Automation.ErrorPause)
	assert.True(t, cfg.Automation.UseSurveys)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	// Arrange
	path := writeConfig(t, "api:\n  token: from-file\nautomation:\n  contract_threshold: 0.5\n")
	t.Setenv("ST_API_TOKEN", "from-env")
	t.Setenv("ST_EXPLORATION_JUMP_TO_UNMAPPED", "true")

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Token)
	assert.Equal(t, 0.5, cfg.Automation.ContractThreshold)
	assert.True(t, cfg.Exploration.JumpToUnmapped)
}

func TestLoadConfig_ReadsShipAssignments(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
automation:
  ships:
    - symbol: MINER-1
      job: mining
      site: X1-AB12-B2
      market: X1-AB12-A1
      exclude: [ICE_WATER, QUARTZ_SAND]
    - symbol: SCOUT-1
      job: explore
`)

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	require.Len(t, cfg.Automation.Ships, 2)
	assert.Equal(t, "X1-AB12-B2", cfg.Automation.Ships[0].MiningSite)
	assert.Equal(t, []string{"ICE_WATER", "QUARTZ_SAND"}, cfg.Automation.Ships[0].Exclude)
	assert.Equal(t, "explore", cfg.Automation.Ships[1].Job)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"threshold above one", "automation:\n  contract_threshold: 1.5\n"},
		{"threshold of one", "automation:\n  contract_threshold: 1\n"},
		{"unknown log format", "logging:\n  format: xml\n"},
		{"unknown job", "automation:\n  ships:\n    - symbol: S\n      job: trade\n"},
		{"negative concurrency", "automation:\n  max_concurrent_ships: -1\n"},
		{"ship assigned twice", "automation:\n  ships:\n    - symbol: S-1\n      job: explore\n    - symbol: s-1\n      job: explore\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestRequireToken(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, config.RequireToken(cfg))

	cfg.API.Token = "abc"
	assert.NoError(t, config.RequireToken(cfg))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{"sqlite file", config.DatabaseConfig{Type: "sqlite", Path: "fleet.db"}, "fleet.db"},
		{"sqlite in memory", config.DatabaseConfig{Type: "sqlite"}, ":memory:"},
		{"postgres url wins", config.DatabaseConfig{Type: "postgres", URL: "postgresql://u@db/st", Host: "ignored"}, "postgresql://u@db/st"},
		{
			"postgres fields",
			config.DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "st", Password: "pw", Name: "fleet", SSLMode: "disable"},
			"host=db port=5432 user=st password=pw dbname=fleet sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestMetricsConfig_Address(t *testing.T) {
	cfg := config.MetricsConfig{Host: "0.0.0.0", Port: 9100}

	assert.Equal(t, "0.0.0.0:9100", cfg.Address())
}
