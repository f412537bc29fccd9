package config

import "time"

// AutomationConfig tunes the per-ship loops run by the automation driver
type AutomationConfig struct {
	// Held fraction of cargo capacity of the contract good above which the
	// contract loop delivers instead of mining more
	ContractThreshold float64 `mapstructure:"contract_threshold" validate:"gt=0,lt=1"`

	// Market where contract loops sell surplus ore; empty sells at the mining site
	ContractMarket string `mapstructure:"contract_market"`

	// Fulfil a contract automatically once its deliveries are complete
	AutoFulfill bool `mapstructure:"auto_fulfill"`

	// Upper bound on ship loops running at once (0 = unlimited)
	MaxConcurrentShips int `mapstructure:"max_concurrent_ships" validate:"min=0"`

	// Pause before a loop iteration is retried after a recoverable error
	ErrorPause time.Duration `mapstructure:"error_pause"`

	// Pause between two iterations of a one-step loop (exploration)
	IdlePause time.Duration `mapstructure:"idle_pause"`

	// Stop a loop after this many consecutive failed iterations (0 = never)
	MaxConsecutiveFailures int `mapstructure:"max_consecutive_failures" validate:"min=0"`

	// Mining loops extract with the best stored survey of their site
	UseSurveys bool `mapstructure:"use_surveys"`

	// Single-instance lock for the run command
	PIDFile string `mapstructure:"pid_file"`

	// Ships started by the run command when no --assign flag is given
	Ships []ShipAssignmentConfig `mapstructure:"ships" validate:"dive"`
}

// ShipAssignmentConfig binds a ship to a job in the config file
type ShipAssignmentConfig struct {
	Symbol     string   `mapstructure:"symbol" validate:"required"`
	Job        string   `mapstructure:"job" validate:"required,oneof=mining contract survey explore sell"`
	MiningSite string   `mapstructure:"site"`
	Market     string   `mapstructure:"market"`
	Exclude    []string `mapstructure:"exclude"`
	ContractID string   `mapstructure:"contract"`
}

// ExplorationConfig holds exploration orchestrator settings
type ExplorationConfig struct {
	// Jump to a connected UN_MAPPED system once the current one is MAPPED
	JumpToUnmapped bool `mapstructure:"jump_to_unmapped"`
}
