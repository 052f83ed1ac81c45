// Package testutil provides shared test helpers for setting up vaults,
// databases, and derived-field registries.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/laguz/internal/field"
	"github.com/starford/laguz/internal/index"
	"github.com/starford/laguz/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "laguz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestRegistry creates a field registry over db with the given reporter
// (nil silences warnings).
func TestRegistry(t *testing.T, db *index.DB, report field.Reporter) *field.Registry {
	t.Helper()
	return field.New(db.Conn(), report)
}
