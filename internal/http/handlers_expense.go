package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
	"spendtrack/internal/export"
	"spendtrack/internal/query"
)

// expenseRequest is the create/update payload. Amounts arrive as JSON
// strings so precision survives the wire.
type expenseRequest struct {
	Amount         *string   `json:"amount"`
	Currency       *string   `json:"currency"`
	Category       *string   `json:"category"`
	Subcategory    *string   `json:"subcategory"`
	Merchant       *string   `json:"merchant"`
	Description    *string   `json:"description"`
	PaymentMethod  *string   `json:"payment_method"`
	Date           *string   `json:"date"`
	IsRecurring    *bool     `json:"is_recurring"`
	RecurrenceRule *string   `json:"recurrence_rule"`
	Tags           *[]string `json:"tags"`
	ReceiptURL     *string   `json:"receipt_url"`
}

type createResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type expenseResponse struct {
	Success bool          `json:"success"`
	Data    export.Record `json:"data"`
}

type listMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

type listResponse struct {
	Success bool            `json:"success"`
	Data    []export.Record `json:"data"`
	Meta    listMeta        `json:"meta"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	expense, err := req.toExpense(owner)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	id, err := s.expenses.CreateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{Success: true, ID: id})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	expense, err := s.expenses.GetExpense(r.Context(), r.PathValue("id"), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expenseResponse{Success: true, Data: export.Records([]core.Expense{expense})[0]})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	updated, err := s.expenses.UpdateExpense(r.Context(), r.PathValue("id"), owner, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expenseResponse{Success: true, Data: export.Records([]core.Expense{updated})[0]})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), r.PathValue("id"), owner); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	preds, order, page, err := parseListQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	rows, total, err := s.store.Scan(r.Context(), owner, preds, order, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Data:    export.Records(rows),
		Meta: listMeta{
			Total: total,
			Page:  page.Number,
			Pages: query.Pages(total, page.Limit),
			Limit: page.Limit,
		},
	})
}

// handleExportExpenses streams the filtered set as CSV or JSON,
// ignoring pagination so the export is complete.
func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeBadRequest(w, "missing "+ownerHeader+" header")
		return
	}

	preds, order, _, err := parseListQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	rows, _, err := s.store.Scan(r.Context(), owner, preds, order, query.Page{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
		if err := export.WriteCSV(w, rows); err != nil {
			// Headers are out already, all we can do is log.
			writeError(w, r, err)
		}
	case "json":
		writeJSON(w, http.StatusOK, export.Records(rows))
	default:
		writeBadRequest(w, "invalid format parameter, use csv or json")
	}
}

func (req expenseRequest) toExpense(owner string) (core.Expense, error) {
	e := core.Expense{OwnerID: owner}

	if req.Amount == nil {
		return core.Expense{}, fmt.Errorf("amount is required")
	}
	amount, err := decimal.NewFromString(*req.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid amount %q", *req.Amount)
	}
	e.Amount = amount

	if req.Date == nil {
		return core.Expense{}, fmt.Errorf("date is required")
	}
	date, err := parseDateParam(*req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date = date

	if req.Currency != nil {
		e.Currency = *req.Currency
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.Subcategory != nil {
		e.Subcategory = *req.Subcategory
	}
	if req.Merchant != nil {
		e.Merchant = *req.Merchant
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.PaymentMethod != nil {
		e.PaymentMethod = *req.PaymentMethod
	}
	if req.IsRecurring != nil {
		e.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceRule != nil {
		e.RecurrenceRule = *req.RecurrenceRule
	}
	if req.Tags != nil {
		e.Tags = *req.Tags
	}
	if req.ReceiptURL != nil {
		e.ReceiptURL = *req.ReceiptURL
	}

	return e, nil
}

func (req expenseRequest) toPatch() (core.ExpensePatch, error) {
	p := core.ExpensePatch{
		Currency:       req.Currency,
		Category:       req.Category,
		Subcategory:    req.Subcategory,
		Merchant:       req.Merchant,
		Description:    req.Description,
		PaymentMethod:  req.PaymentMethod,
		IsRecurring:    req.IsRecurring,
		RecurrenceRule: req.RecurrenceRule,
		Tags:           req.Tags,
		ReceiptURL:     req.ReceiptURL,
	}

	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return core.ExpensePatch{}, fmt.Errorf("invalid amount %q", *req.Amount)
		}
		p.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDateParam(*req.Date)
		if err != nil {
			return core.ExpensePatch{}, err
		}
		p.Date = &date
	}

	return p, nil
}
