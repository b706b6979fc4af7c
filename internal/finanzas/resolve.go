package finanzas

import (
	"context"
	"sync"
)

// Resolver answers "which dimension record does this foreign key point at",
// backed by a lazy per-table cache over the store. Loads happen at most once
// per table until an explicit Invalidate after a mutating operation.
type Resolver struct {
	store Store

	mu    sync.Mutex
	cache map[string][]Record
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, cache: make(map[string][]Record)}
}

// Dimension returns the cached record set of a dimension table, loading it on
// first use.
func (r *Resolver) Dimension(ctx context.Context, table string) ([]Record, error) {
	if !IsDimension(table) {
		return nil, ErrUnknownTable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[table]; ok {
		return cached, nil
	}
	records, err := r.store.List(ctx, table)
	if err != nil {
		return nil, err
	}
	r.cache[table] = records
	return records, nil
}

// Resolve looks up the dimension record referenced by a movement foreign-key
// field (cuenta_id, contraparte_id, categoria_id, instrumento_id). A miss is
// absence, never an error: unknown fields, empty ids, load failures and
// dangling references all come back (nil, false).
//
// Linear scan by identifier equality. Fine at hundreds of rows; callers
// aggregating over many movements should fetch Dimension once instead.
func (r *Resolver) Resolve(ctx context.Context, field, id string) (Record, bool) {
	table, ok := dimFieldToTable[field]
	if !ok || id == "" {
		return nil, false
	}
	records, err := r.Dimension(ctx, table)
	if err != nil {
		return nil, false
	}
	idField := Schemas[table].IDField
	for _, rec := range records {
		if rec.Get(idField) == id {
			return rec, true
		}
	}
	return nil, false
}

// Invalidate drops the cached set for a table after a mutating operation.
// Unknown or non-dimension tables are a no-op.
func (r *Resolver) Invalidate(table string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, table)
}
