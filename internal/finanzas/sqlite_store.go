package finanzas

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps every table in a SQLite database, one table per schema
// with TEXT columns and the identifier as primary key. An alternative to the
// CSV backend for installs that want durable single-file storage with real
// uniqueness enforcement.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and initializes if needed) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := ensureTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// quoteIdent wraps an identifier in double quotes; column names like
// "activa (si/no)" need it.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func ensureTables(db *sql.DB) error {
	for _, schema := range Schemas {
		cols := make([]string, 0, len(schema.Fields))
		for _, f := range schema.Fields {
			col := quoteIdent(f.Name) + " TEXT NOT NULL DEFAULT ''"
			if f.Name == schema.IDField {
				col = quoteIdent(f.Name) + " TEXT PRIMARY KEY"
			}
			cols = append(cols, col)
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
			quoteIdent(schema.Table), strings.Join(cols, ", "))
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create table %s: %w", schema.Table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, table string) ([]Record, error) {
	schema, ok := Schemas[table]
	if !ok {
		return nil, ErrUnknownTable
	}
	cols := schema.FieldNames()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(table))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := []Record{}
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i].String
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Insert(ctx context.Context, table string, rec Record) error {
	schema, ok := Schemas[table]
	if !ok {
		return ErrUnknownTable
	}
	cols := schema.FieldNames()
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
		args[i] = rec[c]
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, table, id string, fields Record) (bool, error) {
	schema, ok := Schemas[table]
	if !ok {
		return false, ErrUnknownTable
	}
	var sets []string
	var args []any
	for _, f := range schema.Fields {
		if f.Name == schema.IDField {
			continue
		}
		if v, ok := fields[f.Name]; ok {
			sets = append(sets, quoteIdent(f.Name)+" = ?")
			args = append(args, v)
		}
	}
	if len(sets) == 0 {
		// Nothing to change; report whether the row exists.
		var one int
		q := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", quoteIdent(table), quoteIdent(schema.IDField))
		err := s.db.QueryRowContext(ctx, q, id).Scan(&one)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	}
	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quoteIdent(table), strings.Join(sets, ", "), quoteIdent(schema.IDField))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, table, id string) (bool, error) {
	schema, ok := Schemas[table]
	if !ok {
		return false, ErrUnknownTable
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quoteIdent(table), quoteIdent(schema.IDField))
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
