package finanzas

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// FallbackStore wraps a primary Store with an in-memory shadow per table.
// Reads refresh the shadow; when the primary fails, the last-known snapshot
// is served instead. Writes that the primary rejects are applied to the
// shadow only and reported as ErrSavedLocally, so the caller can surface a
// "saved locally, not synchronized" notice. Shadow-only changes are lost on
// restart; once a table has local writes, reads keep serving the shadow so
// they stay visible.
type FallbackStore struct {
	primary Store
	log     zerolog.Logger

	mu     sync.Mutex
	shadow map[string][]Record
	dirty  map[string]bool
}

func NewFallbackStore(primary Store, log zerolog.Logger) *FallbackStore {
	return &FallbackStore{
		primary: primary,
		log:     log,
		shadow:  make(map[string][]Record),
		dirty:   make(map[string]bool),
	}
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// snapshot returns the shadow for a table, loading it from the primary when
// the table was never read and has no local writes.
func (s *FallbackStore) snapshot(ctx context.Context, table string) ([]Record, error) {
	if s.dirty[table] {
		return s.shadow[table], nil
	}
	records, err := s.primary.List(ctx, table)
	if err != nil {
		if cached, ok := s.shadow[table]; ok {
			s.log.Warn().Err(err).Str("tabla", table).Msg("primary read failed, serving snapshot")
			return cached, nil
		}
		return nil, err
	}
	s.shadow[table] = records
	return records, nil
}

func (s *FallbackStore) List(ctx context.Context, table string) ([]Record, error) {
	if !IsTable(table) {
		return nil, ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.snapshot(ctx, table)
	if err != nil {
		return nil, err
	}
	return cloneRecords(records), nil
}

func (s *FallbackStore) Insert(ctx context.Context, table string, rec Record) error {
	if !IsTable(table) {
		return ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty[table] {
		err := s.primary.Insert(ctx, table, rec)
		if err == nil {
			if _, ok := s.shadow[table]; ok {
				s.shadow[table] = append(s.shadow[table], rec.Clone())
			}
			return nil
		}
		s.log.Warn().Err(err).Str("tabla", table).Msg("primary insert failed, keeping record locally")
		// Best effort: seed the shadow before going local so the table does
		// not collapse to just the new record.
		if _, ok := s.shadow[table]; !ok {
			if records, lerr := s.primary.List(ctx, table); lerr == nil {
				s.shadow[table] = records
			}
		}
	}
	s.shadow[table] = append(s.shadow[table], rec.Clone())
	s.dirty[table] = true
	return ErrSavedLocally
}

func (s *FallbackStore) Update(ctx context.Context, table, id string, fields Record) (bool, error) {
	if !IsTable(table) {
		return false, ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty[table] {
		found, err := s.primary.Update(ctx, table, id, fields)
		if err == nil {
			if found {
				s.applyLocalUpdate(table, id, fields)
			}
			return found, nil
		}
		s.log.Warn().Err(err).Str("tabla", table).Msg("primary update failed, updating locally")
	}
	if _, err := s.snapshot(ctx, table); err != nil {
		return false, err
	}
	if !s.applyLocalUpdate(table, id, fields) {
		return false, nil
	}
	s.dirty[table] = true
	return true, ErrSavedLocally
}

func (s *FallbackStore) applyLocalUpdate(table, id string, fields Record) bool {
	schema := Schemas[table]
	for _, rec := range s.shadow[table] {
		if rec.Get(schema.IDField) != id {
			continue
		}
		for k, v := range fields {
			if k != schema.IDField && schema.HasField(k) {
				rec[k] = v
			}
		}
		return true
	}
	return false
}

func (s *FallbackStore) Delete(ctx context.Context, table, id string) (bool, error) {
	if !IsTable(table) {
		return false, ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty[table] {
		found, err := s.primary.Delete(ctx, table, id)
		if err == nil {
			if found {
				s.applyLocalDelete(table, id)
			}
			return found, nil
		}
		s.log.Warn().Err(err).Str("tabla", table).Msg("primary delete failed, deleting locally")
	}
	if _, err := s.snapshot(ctx, table); err != nil {
		return false, err
	}
	if !s.applyLocalDelete(table, id) {
		return false, nil
	}
	s.dirty[table] = true
	return true, ErrSavedLocally
}

func (s *FallbackStore) applyLocalDelete(table, id string) bool {
	schema := Schemas[table]
	records := s.shadow[table]
	kept := records[:0]
	for _, rec := range records {
		if rec.Get(schema.IDField) != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return false
	}
	s.shadow[table] = kept
	return true
}
