package finanzas

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVStore persists each table in its convention-named CSV file under dir
// (fact_movimientos.csv, dim_cuentas.csv, ...). Every mutation rewrites the
// whole file; the row counts here never justify anything finer.
type CSVStore struct {
	dir string
	mu  sync.Mutex
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

func (s *CSVStore) path(schema Schema) string {
	return filepath.Join(s.dir, schema.File)
}

// load reads a table file. A missing file is an empty table.
func (s *CSVStore) load(schema Schema) ([]Record, error) {
	f, err := os.Open(s.path(schema))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", schema.File, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", schema.File, err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	header := rows[0]
	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// save rewrites a table file with the schema's column order.
func (s *CSVStore) save(schema Schema, records []Record) error {
	tmp := s.path(schema) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", schema.File, err)
	}

	w := csv.NewWriter(f)
	cols := schema.FieldNames()
	if err := w.Write(cols); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header %s: %w", schema.File, err)
	}
	row := make([]string, len(cols))
	for _, rec := range records {
		for i, col := range cols {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return fmt.Errorf("write row %s: %w", schema.File, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", schema.File, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", schema.File, err)
	}
	return os.Rename(tmp, s.path(schema))
}

func (s *CSVStore) List(ctx context.Context, table string) ([]Record, error) {
	schema, ok := Schemas[table]
	if !ok {
		return nil, ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(schema)
}

func (s *CSVStore) Insert(ctx context.Context, table string, rec Record) error {
	schema, ok := Schemas[table]
	if !ok {
		return ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(schema)
	if err != nil {
		return err
	}
	return s.save(schema, append(records, rec.Clone()))
}

func (s *CSVStore) Update(ctx context.Context, table, id string, fields Record) (bool, error) {
	schema, ok := Schemas[table]
	if !ok {
		return false, ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(schema)
	if err != nil {
		return false, err
	}
	found := false
	for _, rec := range records {
		if rec.Get(schema.IDField) != id {
			continue
		}
		found = true
		for k, v := range fields {
			if k != schema.IDField && schema.HasField(k) {
				rec[k] = v
			}
		}
	}
	if !found {
		return false, nil
	}
	return true, s.save(schema, records)
}

func (s *CSVStore) Delete(ctx context.Context, table, id string) (bool, error) {
	schema, ok := Schemas[table]
	if !ok {
		return false, ErrUnknownTable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(schema)
	if err != nil {
		return false, err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.Get(schema.IDField) != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	return true, s.save(schema, kept)
}
