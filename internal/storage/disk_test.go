package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDatabaseSizeBytes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "results.db")

	got, err := DatabaseSizeBytes(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("missing database: got %d bytes, want 0", got)
	}

	if err := os.WriteFile(db, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DatabaseSizeBytes(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("database only: got %d bytes, want 5", got)
	}

	if err := os.WriteFile(db+"-wal", []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(db+"-shm", []byte("z"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DatabaseSizeBytes(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 9 {
		t.Errorf("with wal and shm: got %d bytes, want 9", got)
	}

	got, err = DatabaseSizeBytes("")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("empty path: got %d bytes, want 0", got)
	}
}
