package http

import (
	"net/http"
	"strconv"

	"spendtrack/internal/analytics"
	"spendtrack/internal/dashboard"
	"spendtrack/internal/export"
)

type dashboardResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// writeResult renders a dashboard envelope, mapping a failed result to
// the matching error status.
func writeResult[T any](w http.ResponseWriter, r *http.Request, res dashboard.Result[T]) {
	if !res.Success {
		writeError(w, r, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse[T]{
		Success: true,
		Data:    res.Data,
		Message: res.Message,
	})
}

func (s *Server) handleTotalSpend(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}
	writeResult(w, r, s.dashboard.TotalSpend(r.Context(), owner))
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}
	period := r.URL.Query().Get("period")
	writeResult(w, r, s.dashboard.CategoryBreakdown(r.Context(), owner, period))
}

func (s *Server) handleCategoryTrend(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 60 {
			writeBadRequest(w, "invalid months parameter, must be 1..60")
			return
		}
		months = n
	}

	writeResult(w, r, s.dashboard.CategoryTrend(r.Context(), owner, months))
}

func (s *Server) handleSpendTrend(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	granularity := analytics.ParseGranularity(r.URL.Query().Get("granularity"))

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 730 {
			writeBadRequest(w, "invalid days parameter, must be 1..730")
			return
		}
		days = n
	}

	writeResult(w, r, s.dashboard.SpendTrend(r.Context(), owner, granularity, days))
}

func (s *Server) handleTopTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	window := r.URL.Query().Get("window")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeBadRequest(w, "invalid limit parameter, must be 1..100")
			return
		}
		limit = n
	}

	writeResult(w, r, s.dashboard.TopTransactions(r.Context(), owner, window, limit))
}

func (s *Server) handleRecurringExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	res := s.dashboard.Recurring(r.Context(), owner)
	if !res.Success {
		writeError(w, r, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse[[]export.Record]{
		Success: true,
		Data:    export.Records(res.Data),
		Message: res.Message,
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}
	writeResult(w, r, s.dashboard.OverviewData(r.Context(), owner))
}
