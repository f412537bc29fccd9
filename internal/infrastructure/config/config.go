package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	API         APIConfig         `mapstructure:"api"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Automation  AutomationConfig  `mapstructure:"automation"`
	Exploration ExplorationConfig `mapstructure:"exploration"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.spacetraders")
		}
	}

	v.SetEnvPrefix("ST") // ST_ prefix for SpaceTraders
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	v.SetDefault("automation.use_surveys", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_URL and SPACETRADERS_TOKEN are honoured without the ST_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}
	if token := os.Getenv("SPACETRADERS_TOKEN"); token != "" && v.GetString("api.token") == "" {
		v.Set("api.token", token)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so every key that may
// come purely from the environment is bound explicitly.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"database.type", "database.url", "database.path",
		"api.base_url", "api.token", "api.timeout",
		"logging.level", "logging.format", "logging.output", "logging.file_path",
		"metrics.enabled", "metrics.host", "metrics.port",
		"automation.contract_threshold", "automation.max_concurrent_ships", "automation.pid_file",
		"automation.auto_fulfill", "automation.use_surveys", "automation.contract_market",
		"exploration.jump_to_unmapped",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
