// Package memory is an in-process mirror used by tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"spendtrack/internal/core"
)

type Mirror struct {
	mu    sync.Mutex
	items []core.Expense

	// FailNext makes the next Append return an error, for testing the
	// worker's retry path.
	FailNext bool
}

func New() *Mirror {
	return &Mirror{}
}

// Append stores the expense and returns a synthetic row reference.
func (m *Mirror) Append(_ context.Context, e core.Expense) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return "", errors.New("mirror unavailable")
	}
	m.items = append(m.items, e)
	return fmt.Sprintf("mem:%d", len(m.items)), nil
}

// Items returns a copy of everything mirrored so far.
func (m *Mirror) Items() []core.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Expense(nil), m.items...)
}
