package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hasangumus0707/spendsmart/internal/config"
	"github.com/hasangumus0707/spendsmart/internal/logger"
)

func quietContext(ctx context.Context) context.Context {
	return logger.WithContext(ctx, logger.NewWithWriter(io.Discard))
}

func TestRun_ClosesDatabaseWhenMigrationFails(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "spendsmart.db")

	// An expenses table without a category column makes the index in the
	// first migration fail.
	raw, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := raw.Exec(`CREATE TABLE expenses (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create conflicting table: %v", err)
	}
	raw.Close()

	cfg := &config.Config{
		Port:           ":0",
		StorageDriver:  config.DriverSQLite,
		DatabasePath:   dbPath,
		RequestTimeout: time.Second,
	}

	err = run(quietContext(context.Background()), cfg)
	if err == nil {
		t.Fatal("expected migration error")
	}

	// SQLite checkpoints and removes the WAL file when the last connection closes.
	if _, err := os.Stat(dbPath + "-wal"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected WAL file to be gone after run returned, stat err = %v", err)
	}
}

func TestRun_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Port: ":0", StorageDriver: "mongo", RequestTimeout: time.Second}
	if err := run(quietContext(context.Background()), cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestRun_StopsWhenContextCancelled(t *testing.T) {
	cfg := &config.Config{
		Port:           ":0",
		StorageDriver:  config.DriverMemory,
		RequestTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(quietContext(context.Background()))
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
