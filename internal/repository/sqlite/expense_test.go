package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hasangumus0707/spendsmart/internal/domain"
	"github.com/hasangumus0707/spendsmart/internal/repository/repotest"
	"github.com/hasangumus0707/spendsmart/internal/repository/sqlite"
)

func TestExpenseRepository(t *testing.T) {
	repotest.RunExpenseRepository(t, func(t *testing.T) domain.ExpenseRepository {
		return sqlite.NewExpenseRepository(newTestDB(t))
	})
}

func TestExpenseRepository_ClosedDatabase(t *testing.T) {
	db := newTestDB(t)
	repo := db.Expenses()
	db.Close()

	_, err := repo.List(context.Background())
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	_, err = repo.GetByID(context.Background(), 1)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
