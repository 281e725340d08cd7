package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hasangumus0707/spendsmart/internal/domain"
)

const expenseColumns = `id, amount, description, category, expense_date, created_at, updated_at`

// ExpenseRepository implements domain.ExpenseRepository using SQLite.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new SQLite-backed ExpenseRepository.
func NewExpenseRepository(db *DB) *ExpenseRepository {
	return &ExpenseRepository{db: db.SqlDB}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (amount, description, category, expense_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.Amount, expense.Description, expense.Category, expense.Date.UTC(), now, now,
	)
	if err != nil {
		return fmt.Errorf("%w: insert expense: %w", domain.ErrStorage, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: get last insert id: %w", domain.ErrStorage, err)
	}

	expense.ID = id
	expense.Date = expense.Date.UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	return getExpense(ctx, r.db, id)
}

func (r *ExpenseRepository) List(ctx context.Context) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list expenses: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		if err := scanExpense(rows, &e); err != nil {
			return nil, fmt.Errorf("%w: scan expense: %w", domain.ErrStorage, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list expenses: %w", domain.ErrStorage, err)
	}
	return expenses, nil
}

// Update runs the read-modify-write inside one transaction. The pool holds
// a single connection, so no other statement can interleave with it.
func (r *ExpenseRepository) Update(ctx context.Context, id int64, apply func(*domain.Expense) error) (*domain.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	expense, err := getExpense(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(expense); err != nil {
		return nil, err
	}
	expense.ID = id
	expense.Date = expense.Date.UTC()
	expense.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, description = ?, category = ?, expense_date = ?, updated_at = ?
		 WHERE id = ?`,
		expense.Amount, expense.Description, expense.Category, expense.Date, expense.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: update expense: %w", domain.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit update: %w", domain.ErrStorage, err)
	}
	return expense, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: delete expense: %w", domain.ErrStorage, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", domain.ErrStorage, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getExpense(ctx context.Context, q queryRower, id int64) (*domain.Expense, error) {
	e := &domain.Expense{}
	row := q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	if err := scanExpense(row, e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get expense by id: %w", domain.ErrStorage, err)
	}
	return e, nil
}

func scanExpense(s scanner, e *domain.Expense) error {
	if err := s.Scan(&e.ID, &e.Amount, &e.Description, &e.Category, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return err
	}
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return nil
}
