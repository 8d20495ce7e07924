// Package sheets defines the outbound port for mirroring expenses to a
// spreadsheet. The Google adapter talks to the real API, the memory
// adapter backs tests.
package sheets

import (
	"context"

	"spendtrack/internal/core"
)

// ExpenseMirror appends one expense row to the mirror and returns a
// reference to where it landed.
type ExpenseMirror interface {
	Append(ctx context.Context, e core.Expense) (rowRef string, err error)
}
