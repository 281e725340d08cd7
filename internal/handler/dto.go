package handler

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasangumus0707/spendsmart/internal/domain"
)

const dateLayout = time.DateOnly

// ExpenseDTO is the JSON representation of an expense. Amounts are encoded
// as strings ("12.5") so no precision is lost.
type ExpenseDTO struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

func toExpenseDTO(e domain.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date.Format(dateLayout),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

func toExpenseDTOs(expenses []domain.Expense) []ExpenseDTO {
	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	return dtos
}

// createExpenseRequest is the body of POST /api/expenses. The amount may be
// sent as a JSON number or string.
type createExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        string           `json:"date"`
}

func (req createExpenseRequest) toDomain() (domain.Expense, error) {
	if req.Amount == nil {
		return domain.Expense{}, fmt.Errorf("%w: amount is required", domain.ErrInvalidInput)
	}
	e := domain.Expense{
		Amount:      *req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return domain.Expense{}, err
		}
		e.Date = d
	}
	return e, nil
}

// updateExpenseRequest is the body of PATCH /api/expenses/{id}. Omitted
// fields are left unchanged.
type updateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Date        *string          `json:"date"`
}

func (req updateExpenseRequest) toDomain() (domain.ExpenseUpdate, error) {
	upd := domain.ExpenseUpdate{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return domain.ExpenseUpdate{}, err
		}
		upd.Date = &d
	}
	return upd, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be formatted as YYYY-MM-DD", domain.ErrInvalidInput)
	}
	return d, nil
}
