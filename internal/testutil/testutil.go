// Package testutil provides shared test helpers for building export trees
// and temporary databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arlberg/slack2md/internal/index"
	"github.com/arlberg/slack2md/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "slack2md-test-*.db")
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

// TestTree creates a temporary directory with a storage.Provider over it.
func TestTree(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content at rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	abs := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// WriteExportMeta writes minimal channels.json and users.json into dir:
// channel C1 "general", user U1 "alice" (no display name, no avatar).
func WriteExportMeta(t *testing.T, dir string) {
	t.Helper()
	WriteFile(t, dir, "channels.json", `[{"id":"C1","name":"general"}]`)
	WriteFile(t, dir, "users.json", `[{"id":"U1","name":"alice"}]`)
}
