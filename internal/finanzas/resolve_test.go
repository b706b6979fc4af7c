package finanzas

import (
	"context"
	"errors"
	"testing"
)

// countingStore wraps a Store and counts List calls per table.
type countingStore struct {
	Store
	lists map[string]int
}

func (c *countingStore) List(ctx context.Context, table string) ([]Record, error) {
	if c.lists == nil {
		c.lists = make(map[string]int)
	}
	c.lists[table]++
	return c.Store.List(ctx, table)
}

func TestResolverResolve(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	mustInsert(t, store, TableAccounts, cta("CTA_001", "Corriente"))
	mustInsert(t, store, TableCategories, cat("CAT_010", FlowIncome, "Sueldo"))

	r := NewResolver(store)

	rec, ok := r.Resolve(ctx, "cuenta_id", "CTA_001")
	if !ok {
		t.Fatal("expected CTA_001 to resolve")
	}
	if rec.Get("cuenta_nombre") != "Corriente" {
		t.Fatalf("cuenta_nombre = %q, want Corriente", rec.Get("cuenta_nombre"))
	}

	if rec, ok := r.Resolve(ctx, "categoria_id", "CAT_010"); !ok || rec.Get("tipo_flujo") != FlowIncome {
		t.Fatalf("CAT_010 resolve = (%v, %v)", rec, ok)
	}
}

func TestResolverMissIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	r := NewResolver(store)

	cases := []struct {
		name  string
		field string
		id    string
	}{
		{"dangling id", "cuenta_id", "CTA_999"},
		{"empty id", "cuenta_id", ""},
		{"unknown field", "sucursal_id", "X_001"},
		{"non dimension field", "mov_id", "20250101-001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec, ok := r.Resolve(ctx, tc.field, tc.id); ok || rec != nil {
				t.Fatalf("Resolve(%q, %q) = (%v, %v), want miss", tc.field, tc.id, rec, ok)
			}
		})
	}
}

func TestResolverCachesUntilInvalidate(t *testing.T) {
	ctx := context.Background()
	base := newTestStore(t)
	mustInsert(t, base, TableAccounts, cta("CTA_001", "Corriente"))
	store := &countingStore{Store: base}

	r := NewResolver(store)
	for i := 0; i < 3; i++ {
		if _, ok := r.Resolve(ctx, "cuenta_id", "CTA_001"); !ok {
			t.Fatal("expected CTA_001 to resolve")
		}
	}
	if store.lists[TableAccounts] != 1 {
		t.Fatalf("expected 1 load, got %d", store.lists[TableAccounts])
	}

	mustInsert(t, base, TableAccounts, cta("CTA_002", "Ahorro"))
	if _, ok := r.Resolve(ctx, "cuenta_id", "CTA_002"); ok {
		t.Fatal("stale cache should not see CTA_002 yet")
	}

	r.Invalidate(TableAccounts)
	if _, ok := r.Resolve(ctx, "cuenta_id", "CTA_002"); !ok {
		t.Fatal("expected CTA_002 after invalidation")
	}
	if store.lists[TableAccounts] != 2 {
		t.Fatalf("expected 2 loads, got %d", store.lists[TableAccounts])
	}
}

func TestResolverDimensionUnknownTable(t *testing.T) {
	r := NewResolver(newTestStore(t))
	if _, err := r.Dimension(context.Background(), TableMovements); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("Dimension(movimientos) err = %v, want ErrUnknownTable", err)
	}
	if _, err := r.Dimension(context.Background(), "prestamos"); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("Dimension(prestamos) err = %v, want ErrUnknownTable", err)
	}
}
