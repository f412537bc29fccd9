package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks loaded configuration against the struct tags plus the
// cross-field rules registered in NewValidator
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterStructValidation(databaseStructLevel, DatabaseConfig{})
	v.RegisterStructValidation(automationStructLevel, AutomationConfig{})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s: failed %q (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid configuration:\n  %s", strings.Join(messages, "\n  "))
}

// postgres needs either a URL or a host to connect to
func databaseStructLevel(sl validator.StructLevel) {
	db := sl.Current().Interface().(DatabaseConfig)
	if db.Type == "postgres" && db.URL == "" && db.Host == "" {
		sl.ReportError(db.Host, "Host", "host", "required_without_url", "")
	}
}

// a ship can only run one loop
func automationStructLevel(sl validator.StructLevel) {
	automation := sl.Current().Interface().(AutomationConfig)
	seen := make(map[string]bool, len(automation.Ships))
	for i, ship := range automation.Ships {
		symbol := strings.ToUpper(ship.Symbol)
		if symbol != "" && seen[symbol] {
			sl.ReportError(ship.Symbol, fmt.Sprintf("Ships[%d].Symbol", i), "symbol", "unique_ship", "")
		}
		seen[symbol] = true
	}
}

func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// RequireToken checks that an agent token is configured. Only commands that
// talk to the game need one.
func RequireToken(cfg *Config) error {
	if strings.TrimSpace(cfg.API.Token) == "" {
		return errors.New("no API token configured: set ST_API_TOKEN, SPACETRADERS_TOKEN or api.token")
	}
	return nil
}
