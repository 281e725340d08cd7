package handler

import (
	"net/http"

	"github.com/hasangumus0707/spendsmart/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. limiter may be
// nil, in which case write requests are not rate limited.
func RegisterRoutes(mux *http.ServeMux, expenses *service.ExpenseService, limiter *service.TokenBucket) {
	h := NewExpenseHandler(expenses)
	limit := RateLimit(limiter)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("GET /api/expenses", h.HandleList)
	mux.HandleFunc("GET /api/expenses/{id}", h.HandleGet)
	mux.Handle("POST /api/expenses", limit(http.HandlerFunc(h.HandleCreate)))
	mux.Handle("PATCH /api/expenses/{id}", limit(http.HandlerFunc(h.HandleUpdate)))
	mux.Handle("DELETE /api/expenses/{id}", limit(http.HandlerFunc(h.HandleDelete)))
}
