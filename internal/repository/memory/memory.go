// Package memory provides an in-process expense store. Data is lost when
// the process exits.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hasangumus0707/spendsmart/internal/domain"
)

// DB implements domain.Database without any external storage.
type DB struct {
	expenses *ExpenseRepository
}

// New constructs a ready-to-use in-memory database.
func New() *DB {
	return &DB{expenses: NewExpenseRepository()}
}

// Migrate is a no-op; there is no schema.
func (db *DB) Migrate(ctx context.Context) error { return nil }

func (db *DB) Expenses() domain.ExpenseRepository { return db.expenses }

func (db *DB) Close() error { return nil }

// ExpenseRepository is an in-memory domain.ExpenseRepository.
// It is safe for concurrent use.
type ExpenseRepository struct {
	mu     sync.RWMutex
	lastID int64
	order  []int64
	data   map[int64]domain.Expense
}

// NewExpenseRepository constructs an empty repository.
func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{
		data: make(map[int64]domain.Expense),
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	// lastID only grows, so deleted IDs are never handed out again.
	r.lastID++
	expense.ID = r.lastID
	expense.Date = expense.Date.UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	r.data[expense.ID] = *expense
	r.order = append(r.order, expense.ID)
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	r.mu.RLock()
	e, ok := r.data[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (r *ExpenseRepository) List(ctx context.Context) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expenses := make([]domain.Expense, 0, len(r.order))
	for _, id := range r.order {
		expenses = append(expenses, r.data[id])
	}
	return expenses, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, id int64, apply func(*domain.Expense) error) (*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	// apply works on a copy; the stored value only changes on success.
	if err := apply(&current); err != nil {
		return nil, err
	}
	current.ID = id
	current.Date = current.Date.UTC()
	current.UpdatedAt = time.Now().UTC()

	r.data[id] = current
	return &current, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	r.order = slices.DeleteFunc(r.order, func(v int64) bool { return v == id })
	return nil
}
