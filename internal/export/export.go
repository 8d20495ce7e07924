// Package export renders expense sets as CSV documents or as flat
// records suitable for JSON encoding. It never reads the store itself;
// callers pass the rows they already retrieved.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"spendtrack/internal/core"
	"spendtrack/internal/query"
)

// csvHeader is the column order of every CSV export. New columns go at
// the end so downstream spreadsheets keep their references.
var csvHeader = []string{
	"ID",
	"Amount",
	"Currency",
	"Category",
	"Subcategory",
	"Merchant",
	"Description",
	"Date",
	"Payment Method",
	"Is Recurring",
	"Tags",
	"Created At",
}

// WriteCSV streams the expenses to w as a CSV document with a header
// row. Optional fields render as empty strings, tags join with ", ".
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		record := []string{
			e.ID,
			core.Round2(e.Amount).StringFixed(2),
			e.Currency,
			e.Category,
			e.Subcategory,
			e.Merchant,
			e.Description,
			e.Date.UTC().Format(query.TimeLayout),
			e.PaymentMethod,
			strconv.FormatBool(e.IsRecurring),
			strings.Join(e.Tags, ", "),
			e.CreatedAt.UTC().Format(query.TimeLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record is the JSON shape of one exported expense. Amounts are fixed
// two-decimal strings so consumers never see float artifacts.
type Record struct {
	ID            string   `json:"id"`
	Amount        string   `json:"amount"`
	Currency      string   `json:"currency"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory,omitempty"`
	Merchant      string   `json:"merchant,omitempty"`
	Description   string   `json:"description,omitempty"`
	Date          string   `json:"date"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	IsRecurring   bool     `json:"is_recurring"`
	Tags          []string `json:"tags"`
	CreatedAt     string   `json:"created_at"`
}

// Records projects expenses into export records. The result and every
// Tags slice are non-nil so JSON renders arrays, not null.
func Records(expenses []core.Expense) []Record {
	out := make([]Record, 0, len(expenses))
	for _, e := range expenses {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, Record{
			ID:            e.ID,
			Amount:        core.Round2(e.Amount).StringFixed(2),
			Currency:      e.Currency,
			Category:      e.Category,
			Subcategory:   e.Subcategory,
			Merchant:      e.Merchant,
			Description:   e.Description,
			Date:          e.Date.UTC().Format(query.TimeLayout),
			PaymentMethod: e.PaymentMethod,
			IsRecurring:   e.IsRecurring,
			Tags:          tags,
			CreatedAt:     e.CreatedAt.UTC().Format(query.TimeLayout),
		})
	}
	return out
}
