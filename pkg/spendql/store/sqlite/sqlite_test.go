package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/spendql/pkg/spendql/store"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "spendql.db")

	ds, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ds.Close()

	in := []store.Transaction{
		{
			Date:        time.Date(2025, time.January, 5, 0, 0, 0, 0, time.Local),
			Amount:      340,
			Category:    "food",
			Merchant:    "swiggy",
			Description: "dinner order",
		},
		{
			Date:     time.Date(2025, time.February, 1, 0, 0, 0, 0, time.Local),
			Amount:   120.5,
			Category: "cafe",
			Merchant: "starbucks",
		},
	}
	if err := ds.Add(ctx, in...); err != nil {
		t.Fatalf("Add: %v", err)
	}

	out, err := ds.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	for i := range in {
		if !out[i].Date.Equal(in[i].Date) {
			t.Errorf("row %d date = %v, want %v", i, out[i].Date, in[i].Date)
		}
		if out[i].Amount != in[i].Amount || out[i].Category != in[i].Category {
			t.Errorf("row %d = %+v, want %+v", i, out[i], in[i])
		}
	}
	if out[0].Description != "dinner order" || out[1].Description != "" {
		t.Errorf("descriptions = %q, %q", out[0].Description, out[1].Description)
	}
}

func TestAddPreservesOrderAcrossBatches(t *testing.T) {
	ctx := context.Background()
	ds, err := Open(ctx, filepath.Join(t.TempDir(), "spendql.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ds.Close()

	for i, m := range []string{"first", "second", "third"} {
		err := ds.Add(ctx, store.Transaction{
			Date:     time.Date(2025, time.March, 10-i, 0, 0, 0, 0, time.Local),
			Amount:   float64(i + 1),
			Merchant: m,
		})
		if err != nil {
			t.Fatalf("Add %q: %v", m, err)
		}
	}

	out, err := ds.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if out[i].Merchant != want {
			t.Errorf("row %d merchant = %q, want %q", i, out[i].Merchant, want)
		}
	}
}

func TestAddNothing(t *testing.T) {
	ctx := context.Background()
	ds, err := Open(ctx, filepath.Join(t.TempDir(), "spendql.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ds.Close()

	if err := ds.Add(ctx); err != nil {
		t.Errorf("Add with no rows: %v", err)
	}
	out, err := ds.Transactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty table, got %d rows", len(out))
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "spendql.db")

	ds, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ds.Add(ctx, store.Transaction{
		Date:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.Local),
		Amount: 99,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ds, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer ds.Close()

	out, err := ds.Transactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Amount != 99 {
		t.Errorf("rows after reopen = %+v", out)
	}
}
