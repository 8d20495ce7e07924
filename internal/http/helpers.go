package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
	"spendtrack/internal/query"
)

// ownerHeader identifies the calling principal. Every data route
// requires it; there is no cross-owner access.
const ownerHeader = "X-Owner-ID"

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Not-found is 404,
// bad input is 400, everything else is a 500 with a generic body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, core.ErrEmptyOwner),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyCurrency),
		errors.Is(err, core.ErrZeroDate),
		errors.Is(err, core.ErrInvertedRange):
		status = http.StatusBadRequest
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: message})
}

// ownerID pulls the owner from the request header. Empty means the
// request cannot be served.
func ownerID(r *http.Request) (string, bool) {
	owner := strings.TrimSpace(r.Header.Get(ownerHeader))
	return owner, owner != ""
}

// parseListQuery turns the URL query into typed predicates plus paging
// and ordering.
func parseListQuery(r *http.Request) ([]query.Predicate, query.Order, query.Page, error) {
	q := r.URL.Query()
	var preds []query.Predicate

	var dr query.DateRange
	hasRange := false
	if v := q.Get("from"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return nil, 0, query.Page{}, err
		}
		dr.From = t
		hasRange = true
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return nil, 0, query.Page{}, err
		}
		dr.To = t
		hasRange = true
	}
	if hasRange {
		preds = append(preds, dr)
	}

	if v := q.Get("category"); v != "" {
		preds = append(preds, query.CategoryIs{Category: v})
	}

	var ar query.AmountRange
	hasAmount := false
	if v := q.Get("min_amount"); v != "" {
		d, err := parseAmountParam(v)
		if err != nil {
			return nil, 0, query.Page{}, err
		}
		ar.Min = &d
		hasAmount = true
	}
	if v := q.Get("max_amount"); v != "" {
		d, err := parseAmountParam(v)
		if err != nil {
			return nil, 0, query.Page{}, err
		}
		ar.Max = &d
		hasAmount = true
	}
	if hasAmount {
		preds = append(preds, ar)
	}

	if v := q.Get("search"); v != "" {
		preds = append(preds, query.TextSearch{Fragment: v})
	}
	if q.Get("recurring") == "true" {
		preds = append(preds, query.RecurringOnly{})
	}

	order := query.ByDateDesc
	if q.Get("order") == "amount" {
		order = query.ByAmountDesc
	}

	page := query.Page{Number: 1, Limit: 50}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, 0, query.Page{}, errors.New("invalid page parameter")
		}
		page.Number = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return nil, 0, query.Page{}, errors.New("invalid limit parameter, must be 1..500")
		}
		page.Limit = n
	}

	return preds, order, page, nil
}

func parseAmountParam(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, errors.New("invalid amount parameter")
	}
	return d, nil
}

// parseDateParam accepts a bare date or a full timestamp.
func parseDateParam(v string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(query.TimeLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("invalid date parameter, use YYYY-MM-DD")
	}
	return t, nil
}
