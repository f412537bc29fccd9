package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/logging"
)

func TestShipLogger_WritesMetadataAndBoundShip(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger := logging.NewShipLogger(base).ForShip("AGENT-1")

	// Act
	logger.Log("WARNING", "Extraction on cooldown", map[string]interface{}{"cooldown_seconds": 42})

	// Assert
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "Extraction on cooldown", record["msg"])
	assert.Equal(t, "AGENT-1", record["ship_symbol"])
	assert.Equal(t, float64(42), record["cooldown_seconds"])
}

func TestShipLogger_RespectsLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger := logging.NewShipLogger(base)

	// Act
	logger.Log("DEBUG", "hidden", nil)
	logger.Log("ERROR", "shown", nil)

	// Assert
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
