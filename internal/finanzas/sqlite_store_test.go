package finanzas

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "finanzas.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	rec := mov("20250310-001", "2025-03-10", "1500", "CAT_010", "cuenta_id", "CTA_001")
	mustInsert(t, store, TableMovements, rec)
	mustInsert(t, store, TableAccounts, cta("CTA_001", "Cuenta (Banco) \"Principal\""))

	movs, err := store.List(ctx, TableMovements)
	if err != nil {
		t.Fatalf("List movimientos: %v", err)
	}
	if len(movs) != 1 || movs[0].Get("monto") != "1500" {
		t.Fatalf("movimientos = %+v", movs)
	}
	// Unset columns come back as empty strings.
	if movs[0].Get("contraparte_id") != "" {
		t.Fatalf("contraparte_id = %q", movs[0].Get("contraparte_id"))
	}

	accounts, err := store.List(ctx, TableAccounts)
	if err != nil {
		t.Fatalf("List cuentas: %v", err)
	}
	if accounts[0].Get("activa (si/no)") != "SI" {
		t.Fatalf("quoted column lost: %+v", accounts[0])
	}
	if accounts[0].Get("cuenta_nombre") != "Cuenta (Banco) \"Principal\"" {
		t.Fatalf("cuenta_nombre = %q", accounts[0].Get("cuenta_nombre"))
	}
}

func TestSQLiteStoreUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	mustInsert(t, store, TableAccounts, cta("CTA_001", "Corriente"))

	found, err := store.Update(ctx, TableAccounts, "CTA_001", Record{"banco": "OtroBanco"})
	if err != nil || !found {
		t.Fatalf("Update = (%v, %v)", found, err)
	}
	accounts, _ := store.List(ctx, TableAccounts)
	if accounts[0].Get("banco") != "OtroBanco" {
		t.Fatalf("banco = %q", accounts[0].Get("banco"))
	}
	if accounts[0].Get("cuenta_nombre") != "Corriente" {
		t.Fatal("partial update clobbered other columns")
	}

	if found, err := store.Update(ctx, TableAccounts, "CTA_404", Record{"banco": "X"}); err != nil || found {
		t.Fatalf("Update miss = (%v, %v)", found, err)
	}

	found, err = store.Delete(ctx, TableAccounts, "CTA_001")
	if err != nil || !found {
		t.Fatalf("Delete = (%v, %v)", found, err)
	}
	if found, _ := store.Delete(ctx, TableAccounts, "CTA_001"); found {
		t.Fatal("second delete reported found")
	}
}

func TestSQLiteStoreUnknownTable(t *testing.T) {
	store := newSQLiteStore(t)
	if _, err := store.List(context.Background(), "prestamos"); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("List err = %v", err)
	}
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finanzas.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	mustInsert(t, store, TableAccounts, cta("CTA_001", "Corriente"))
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	accounts, err := store.List(ctx, TableAccounts)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected 1 row after reopen, got %d", len(accounts))
	}
}
