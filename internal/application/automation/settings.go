package automation

import (
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/config"
)

const (
	defaultErrorPause = 10 * time.Second
	defaultIdlePause  = 5 * time.Second
)

// Settings tunes how ship loops repeat and recover
type Settings struct {
	AutoFulfill            bool
	UseSurveys             bool
	MaxConcurrentShips     int
	MaxConsecutiveFailures int
	ErrorPause             time.Duration
	IdlePause              time.Duration
}

// SettingsFromConfig maps the automation section of the configuration
func SettingsFromConfig(cfg config.AutomationConfig) Settings {
	return Settings{
		AutoFulfill:            cfg.AutoFulfill,
		UseSurveys:             cfg.UseSurveys,
		MaxConcurrentShips:     cfg.MaxConcurrentShips,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		ErrorPause:             cfg.ErrorPause,
		IdlePause:              cfg.IdlePause,
	}
}

func (s Settings) withDefaults() Settings {
	if s.ErrorPause <= 0 {
		s.ErrorPause = defaultErrorPause
	}
	if s.IdlePause <= 0 {
		s.IdlePause = defaultIdlePause
	}
	return s
}
