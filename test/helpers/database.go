package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory sqlite database closed when t ends
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = database.Close(db) })

	return db
}
