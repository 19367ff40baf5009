package sqlite

import (
	"database/sql"
	"testing"

	"github.com/banshee-data/moc/internal/db"
	"github.com/banshee-data/moc/internal/monitoring"
	"github.com/banshee-data/moc/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

// setupTestDB opens a migrated database in a temp directory.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(testutil.TempDBPath(t))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d.DB
}
