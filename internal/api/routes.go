package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Orders
	mux.Handle("GET /orders", chain(http.HandlerFunc(h.ListOrders)))
	mux.Handle("POST /orders", chain(http.HandlerFunc(h.SubmitOrder)))

	// Остальные методы на /orders → 405
	mux.Handle("/orders", chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		MethodNotAllowed(w)
	})))

	// Executions
	mux.Handle("GET /executions/{id}", chain(http.HandlerFunc(h.GetExecution)))
}
