package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

func TestAppendAndItems(t *testing.T) {
	m := New()
	ctx := context.Background()

	e := core.Expense{
		ID:       "e1",
		OwnerID:  "o",
		Amount:   decimal.NewFromInt(5),
		Currency: "EUR",
		Category: "food",
		Date:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	ref, err := m.Append(ctx, e)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q", ref)
	}

	items := m.Items()
	if len(items) != 1 || items[0].ID != "e1" {
		t.Errorf("items = %+v", items)
	}
}

func TestFailNext(t *testing.T) {
	m := New()
	m.FailNext = true

	if _, err := m.Append(context.Background(), core.Expense{ID: "x"}); err == nil {
		t.Fatal("expected forced failure")
	}
	if _, err := m.Append(context.Background(), core.Expense{ID: "x"}); err != nil {
		t.Fatalf("second append should succeed: %v", err)
	}
}
