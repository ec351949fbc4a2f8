package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/empire-go/internal/infrastructure/database"
)

// NewTestDB opens a private migrated in-memory SQLite database that is
// closed when the test ends. Unlike SharedTestDB it needs no truncation.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "open in-memory village store")
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
