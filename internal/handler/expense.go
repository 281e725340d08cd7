package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hasangumus0707/spendsmart/internal/domain"
	"github.com/hasangumus0707/spendsmart/internal/logger"
	"github.com/hasangumus0707/spendsmart/internal/service"
)

// ExpenseHandler serves the expense JSON API.
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// HandleCreate adds an expense and responds with the stored record.
func (h *ExpenseHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := req.toDomain()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	created, err := h.expenses.Add(r.Context(), expense)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Int64("expense_id", created.ID).Msg("expense added")

	w.Header().Set("Location", "/api/expenses/"+strconv.FormatInt(created.ID, 10))
	writeJSON(w, r, http.StatusCreated, toExpenseDTO(*created))
}

// HandleList responds with every stored expense.
func (h *ExpenseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenses.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toExpenseDTOs(expenses))
}

// HandleGet responds with a single expense.
func (h *ExpenseHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	expense, err := h.expenses.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toExpenseDTO(*expense))
}

// HandleUpdate applies a partial update and responds with the new record.
func (h *ExpenseHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateExpenseRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	upd, err := req.toDomain()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	updated, err := h.expenses.Update(r.Context(), id, upd)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Int64("expense_id", id).Msg("expense updated")
	writeJSON(w, r, http.StatusOK, toExpenseDTO(*updated))
}

// HandleDelete removes an expense.
func (h *ExpenseHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.expenses.Remove(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Int64("expense_id", id).Msg("expense removed")
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExpenseHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Expense not found.")
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("expense operation")
		writeError(w, r, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

// pathID parses the {id} path segment, writing a 400 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
