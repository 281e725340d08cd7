package domain

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLength = 500
	MaxCategoryLength    = 100

	// Amounts fit NUMERIC(14, 2): at most 12 integer digits and 2 decimal places.
	MaxAmountIntegerDigits = 12
	MaxAmountScale         = 2
)

// Expense is a single recorded financial transaction.
type Expense struct {
	ID          int64
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate reports an ErrInvalidInput-wrapped error for field values the
// store refuses to persist.
func (e *Expense) Validate() error {
	if e.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	// Only the coefficient and exponent are inspected here. Comparing or
	// printing a value like 1e2000000000 would expand it in full.
	if -int(e.Amount.Exponent()) > MaxAmountScale {
		return fmt.Errorf("%w: amount must have at most %d decimal places", ErrInvalidInput, MaxAmountScale)
	}
	if e.Amount.NumDigits()+int(e.Amount.Exponent()) > MaxAmountIntegerDigits {
		return fmt.Errorf("%w: amount must have at most %d integer digits", ErrInvalidInput, MaxAmountIntegerDigits)
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description must be %d characters or fewer", ErrInvalidInput, MaxDescriptionLength)
	}
	if utf8.RuneCountInString(e.Category) > MaxCategoryLength {
		return fmt.Errorf("%w: category must be %d characters or fewer", ErrInvalidInput, MaxCategoryLength)
	}
	return nil
}

// ExpenseUpdate carries the mutable fields of an update. Nil fields are
// left untouched.
type ExpenseUpdate struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Date        *time.Time
}

// Apply copies the set fields of u onto e.
func (u ExpenseUpdate) Apply(e *Expense) {
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
}

// ExpenseRepository defines persistence operations for expenses.
//
// Update loads the record, hands it to apply and persists the result, all
// under a lock on that record. If apply returns an error nothing is written.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	GetByID(ctx context.Context, id int64) (*Expense, error)
	List(ctx context.Context) ([]Expense, error)
	Update(ctx context.Context, id int64, apply func(*Expense) error) (*Expense, error)
	Delete(ctx context.Context, id int64) error
}
