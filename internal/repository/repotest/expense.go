// Package repotest holds the behavioral suite every domain.ExpenseRepository
// backend must pass.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasangumus0707/spendsmart/internal/domain"
)

// Factory returns an empty repository for a single subtest.
type Factory func(t *testing.T) domain.ExpenseRepository

// RunExpenseRepository exercises the full repository contract against the
// backend built by newRepo.
func RunExpenseRepository(t *testing.T, newRepo Factory) {
	t.Run("Create", func(t *testing.T) { testCreate(t, newRepo(t)) })
	t.Run("GetByID", func(t *testing.T) { testGetByID(t, newRepo(t)) })
	t.Run("GetByID_ExactValues", func(t *testing.T) { testGetByIDExactValues(t, newRepo(t)) })
	t.Run("GetByID_NotFound", func(t *testing.T) { testGetByIDNotFound(t, newRepo(t)) })
	t.Run("List", func(t *testing.T) { testList(t, newRepo(t)) })
	t.Run("List_Empty", func(t *testing.T) { testListEmpty(t, newRepo(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newRepo(t)) })
	t.Run("Update_ApplyError", func(t *testing.T) { testUpdateApplyError(t, newRepo(t)) })
	t.Run("Update_NotFound", func(t *testing.T) { testUpdateNotFound(t, newRepo(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newRepo(t)) })
	t.Run("Delete_IDsNotReused", func(t *testing.T) { testIDsNotReused(t, newRepo(t)) })
	t.Run("ConcurrentUpdates", func(t *testing.T) { testConcurrentUpdates(t, newRepo(t)) })
}

func newExpense(amount string, category string) *domain.Expense {
	return &domain.Expense{
		Amount:      decimal.RequireFromString(amount),
		Description: "test " + category,
		Category:    category,
		Date:        time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
	}
}

func mustCreate(t *testing.T, repo domain.ExpenseRepository, e *domain.Expense) {
	t.Helper()
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func testCreate(t *testing.T, repo domain.ExpenseRepository) {
	e := newExpense("12.50", "food")
	mustCreate(t, repo, e)

	if e.ID == 0 {
		t.Fatal("expected expense ID to be set after create")
	}
	if e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
		t.Fatal("expected CreatedAt and UpdatedAt to be set")
	}
}

func testGetByID(t *testing.T, repo domain.ExpenseRepository) {
	e := newExpense("12.50", "food")
	mustCreate(t, repo, e)

	found, err := repo.GetByID(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.ID != e.ID {
		t.Fatalf("expected id %d, got %d", e.ID, found.ID)
	}
	if !found.Amount.Equal(e.Amount) {
		t.Fatalf("expected amount %s, got %s", e.Amount, found.Amount)
	}
	if found.Description != e.Description || found.Category != e.Category {
		t.Fatalf("expected %q/%q, got %q/%q", e.Description, e.Category, found.Description, found.Category)
	}
	if !found.Date.Equal(e.Date) {
		t.Fatalf("expected date %v, got %v", e.Date, found.Date)
	}
}

func testGetByIDExactValues(t *testing.T, repo domain.ExpenseRepository) {
	for _, amount := range []string{"0", "0.05", "0.10", "1234.56", "999999999999.99"} {
		e := newExpense(amount, strings.Repeat("€", domain.MaxCategoryLength))
		mustCreate(t, repo, e)

		found, err := repo.GetByID(context.Background(), e.ID)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", amount, err)
		}
		if !found.Amount.Equal(decimal.RequireFromString(amount)) {
			t.Fatalf("expected amount %s, got %s", amount, found.Amount)
		}
		if found.Category != e.Category {
			t.Fatalf("expected category of %d runes to round-trip, got %q", domain.MaxCategoryLength, found.Category)
		}
	}
}

func testGetByIDNotFound(t *testing.T, repo domain.ExpenseRepository) {
	_, err := repo.GetByID(context.Background(), 99999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testList(t *testing.T, repo domain.ExpenseRepository) {
	r1 := newExpense("1.00", "a")
	r2 := newExpense("2.00", "b")
	mustCreate(t, repo, r1)
	mustCreate(t, repo, r2)

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(list))
	}
	// Insertion order.
	if list[0].ID != r1.ID || list[1].ID != r2.ID {
		t.Fatalf("expected ids [%d %d], got [%d %d]", r1.ID, r2.ID, list[0].ID, list[1].ID)
	}
}

func testListEmpty(t *testing.T, repo domain.ExpenseRepository) {
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no expenses, got %d", len(list))
	}
}

func testUpdate(t *testing.T, repo domain.ExpenseRepository) {
	ctx := context.Background()
	e := newExpense("10", "food")
	mustCreate(t, repo, e)

	updated, err := repo.Update(ctx, e.ID, func(cur *domain.Expense) error {
		cur.Amount = decimal.RequireFromString("99.99")
		cur.Category = "travel"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != e.ID {
		t.Fatalf("expected id %d, got %d", e.ID, updated.ID)
	}

	found, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !found.Amount.Equal(decimal.RequireFromString("99.99")) {
		t.Fatalf("expected amount 99.99, got %s", found.Amount)
	}
	if found.Category != "travel" {
		t.Fatalf("expected category travel, got %q", found.Category)
	}
	if found.Description != e.Description {
		t.Fatalf("expected description %q to be kept, got %q", e.Description, found.Description)
	}
}

func testUpdateApplyError(t *testing.T, repo domain.ExpenseRepository) {
	ctx := context.Background()
	e := newExpense("10", "food")
	mustCreate(t, repo, e)

	errRejected := errors.New("rejected")
	_, err := repo.Update(ctx, e.ID, func(cur *domain.Expense) error {
		cur.Amount = decimal.NewFromInt(-1)
		return errRejected
	})
	if !errors.Is(err, errRejected) {
		t.Fatalf("expected apply error, got %v", err)
	}

	found, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !found.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected amount to stay 10, got %s", found.Amount)
	}
}

func testUpdateNotFound(t *testing.T, repo domain.ExpenseRepository) {
	called := false
	_, err := repo.Update(context.Background(), 99999, func(*domain.Expense) error {
		called = true
		return nil
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if called {
		t.Fatal("apply must not run for a missing expense")
	}
}

func testDelete(t *testing.T, repo domain.ExpenseRepository) {
	ctx := context.Background()
	e := newExpense("3", "misc")
	mustCreate(t, repo, e)

	if err := repo.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func testIDsNotReused(t *testing.T, repo domain.ExpenseRepository) {
	ctx := context.Background()
	first := newExpense("1", "a")
	second := newExpense("2", "b")
	mustCreate(t, repo, first)
	mustCreate(t, repo, second)

	// Deleting the highest ID is the case a plain max(id)+1 would reuse.
	if err := repo.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	third := newExpense("3", "c")
	mustCreate(t, repo, third)
	if third.ID == second.ID || third.ID == first.ID {
		t.Fatalf("expected a fresh id, got %d (used: %d, %d)", third.ID, first.ID, second.ID)
	}
}

func testConcurrentUpdates(t *testing.T, repo domain.ExpenseRepository) {
	ctx := context.Background()
	e := newExpense("0", "counter")
	mustCreate(t, repo, e)

	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := repo.Update(ctx, e.ID, func(cur *domain.Expense) error {
					cur.Amount = cur.Amount.Add(decimal.NewFromInt(1))
					return nil
				})
				if err != nil {
					errs <- fmt.Errorf("update: %w", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	found, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	want := decimal.NewFromInt(workers * perWorker)
	if !found.Amount.Equal(want) {
		t.Fatalf("expected amount %s after concurrent increments, got %s", want, found.Amount)
	}
}
