package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hasangumus0707/spendsmart/internal/domain"
)

const expenseColumns = `id, amount, description, category, expense_date, created_at, updated_at`

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new Postgres-backed ExpenseRepository.
func NewExpenseRepository(db *DB) *ExpenseRepository {
	return &ExpenseRepository{db: db.SqlDB}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO expenses (amount, description, category, expense_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+expenseColumns,
		expense.Amount, expense.Description, expense.Category, expense.Date.UTC(),
	).Scan(&expense.ID, &expense.Amount, &expense.Description, &expense.Category,
		&expense.Date, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return storageError("insert expense", err)
	}
	normalizeTimes(expense)
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	return getExpense(ctx, r.db, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
}

func (r *ExpenseRepository) List(ctx context.Context) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY id`)
	if err != nil {
		return nil, storageError("list expenses", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		if err := scanExpense(rows, &e); err != nil {
			return nil, storageError("scan expense", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list expenses", err)
	}
	return expenses, nil
}

// Update locks the row with SELECT ... FOR UPDATE so concurrent updates of
// the same expense queue behind each other.
func (r *ExpenseRepository) Update(ctx context.Context, id int64, apply func(*domain.Expense) error) (*domain.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer tx.Rollback()

	expense, err := getExpense(ctx, tx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, err
	}

	if err := apply(expense); err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE expenses
		 SET amount = $1, description = $2, category = $3, expense_date = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING `+expenseColumns,
		expense.Amount, expense.Description, expense.Category, expense.Date.UTC(), id,
	).Scan(&expense.ID, &expense.Amount, &expense.Description, &expense.Category,
		&expense.Date, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return nil, storageError("update expense", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("commit update", err)
	}
	normalizeTimes(expense)
	return expense, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = $1", id)
	if err != nil {
		return storageError("delete expense", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storageError("rows affected", err)
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

func getExpense(ctx context.Context, q queryRower, query string, id int64) (*domain.Expense, error) {
	e := &domain.Expense{}
	if err := scanExpense(q.QueryRowContext(ctx, query, id), e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageError("get expense by id", err)
	}
	return e, nil
}

func scanExpense(s scanner, e *domain.Expense) error {
	if err := s.Scan(&e.ID, &e.Amount, &e.Description, &e.Category, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return err
	}
	normalizeTimes(e)
	return nil
}

func normalizeTimes(e *domain.Expense) {
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
}

// storageError wraps err as domain.ErrStorage. A violated CHECK constraint
// means a value slipped past validation and is reported as invalid input.
func storageError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "check_violation" {
		return fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, op, pqErr.Message)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}
