package config

// LoggingConfig shapes the slog handler every routine logs through
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// Output is stdout, stderr or file; file appends to FilePath
	Output   string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// IncludeCaller adds file:line to each record
	IncludeCaller bool `mapstructure:"include_caller"`
}
