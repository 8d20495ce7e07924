// Package http exposes the ledger as a JSON API. Routing is a plain
// net/http mux; the owner comes from a header, there is no session
// state on the server.
package http

import (
	"context"
	"net/http"
	"time"

	"spendtrack/internal/dashboard"
	applog "spendtrack/internal/log"
	"spendtrack/internal/services"
	"spendtrack/internal/storage"
)

type Server struct {
	http.Server
	expenses  *services.ExpenseService
	store     *storage.SQLiteRepository
	dashboard *dashboard.Service
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, expenses *services.ExpenseService, store *storage.SQLiteRepository, dash *dashboard.Service, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		expenses:  expenses,
		store:     store,
		dashboard: dash,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/export", s.handleExportExpenses)
	mux.HandleFunc("GET /api/expenses/recurring", s.handleRecurringExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/dashboard/total-spend", s.handleTotalSpend)
	mux.HandleFunc("GET /api/dashboard/category-breakdown", s.handleCategoryBreakdown)
	mux.HandleFunc("GET /api/dashboard/category-trend", s.handleCategoryTrend)
	mux.HandleFunc("GET /api/dashboard/spend-trend", s.handleSpendTrend)
	mux.HandleFunc("GET /api/dashboard/top-transactions", s.handleTopTransactions)
	mux.HandleFunc("GET /api/dashboard/overview", s.handleOverview)

	handler := http.Handler(mux)
	if logger != nil {
		handler = applog.Middleware(logger)(applog.RequestLogger(logger)(handler))
	}
	s.Handler = handler

	return s
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReady pings the database so load balancers only route to an
// instance that can actually serve.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || s.store.Ping(r.Context()) != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
