package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hasangumus0707/spendsmart/internal/domain"
)

// ExpenseService is the expense store: it validates records and delegates
// persistence to a domain.ExpenseRepository.
type ExpenseService struct {
	expenses domain.ExpenseRepository
	now      func() time.Time
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenses domain.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenses: expenses, now: time.Now}
}

// Add validates and persists a new expense. The returned record carries
// the identifier assigned by the store. A zero Date defaults to today.
func (s *ExpenseService) Add(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	expense.ID = 0
	if expense.Date.IsZero() {
		expense.Date = s.today()
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := s.expenses.Create(ctx, &expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return &expense, nil
}

// Get returns the expense with the given ID.
func (s *ExpenseService) Get(ctx context.Context, id int64) (*domain.Expense, error) {
	return s.expenses.GetByID(ctx, id)
}

// List returns every stored expense in insertion order.
func (s *ExpenseService) List(ctx context.Context) ([]domain.Expense, error) {
	return s.expenses.List(ctx)
}

// Update applies the set fields of upd to the expense with the given ID.
// An invalid result is rejected and the stored record stays unchanged.
func (s *ExpenseService) Update(ctx context.Context, id int64, upd domain.ExpenseUpdate) (*domain.Expense, error) {
	updated, err := s.expenses.Update(ctx, id, func(e *domain.Expense) error {
		upd.Apply(e)
		if e.Date.IsZero() {
			e.Date = s.today()
		}
		return e.Validate()
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes the expense with the given ID. Removing an expense that
// does not exist, including one already removed, returns domain.ErrNotFound.
func (s *ExpenseService) Remove(ctx context.Context, id int64) error {
	return s.expenses.Delete(ctx, id)
}

func (s *ExpenseService) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}
