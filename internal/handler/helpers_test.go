package handler_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hasangumus0707/spendsmart/internal/repository/sqlite"
	"github.com/hasangumus0707/spendsmart/internal/service"
)

func newTestService(t *testing.T) *service.ExpenseService {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return service.NewExpenseService(db.Expenses())
}
