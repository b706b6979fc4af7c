package finanzas

import (
	"context"
	"errors"
)

var (
	// ErrUnknownTable marks a table name outside the declared schemas.
	ErrUnknownTable = errors.New("tabla desconocida")

	// ErrSavedLocally is returned by the fallback store when the primary
	// backend rejected a write and the mutation was applied to the in-memory
	// shadow instead. Callers treat it as a soft success: the change is
	// visible but not synchronized, and is lost on restart.
	ErrSavedLocally = errors.New("guardado localmente, sin sincronizar")
)

// Store is the persistence gateway: full-table reads and by-identifier writes.
type Store interface {
	// List returns every record of the table. A table with no backing data
	// yields an empty slice, not an error.
	List(ctx context.Context, table string) ([]Record, error)
	// Insert appends a record. The identifier field must already be set.
	Insert(ctx context.Context, table string, rec Record) error
	// Update applies the given fields to the record with the identifier id.
	// The identifier itself is never rewritten. Returns false when no record
	// matches.
	Update(ctx context.Context, table, id string, fields Record) (bool, error)
	// Delete removes the record with the identifier id, reporting whether it
	// existed.
	Delete(ctx context.Context, table, id string) (bool, error)
}
