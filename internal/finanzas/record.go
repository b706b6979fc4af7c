package finanzas

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one CSV-shaped row: column name to raw string value.
type Record map[string]string

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the trimmed value of a field, or "" when absent.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Amount parses monto as a decimal. Malformed or empty amounts are zero, never
// an error: a bad row must not poison an aggregation.
func (r Record) Amount() decimal.Decimal {
	v, err := decimal.NewFromString(r.Get("monto"))
	if err != nil {
		return decimal.Zero
	}
	return v
}

// Date parses fecha as an ISO calendar date. The zero time marks a malformed
// or missing date; callers filtering by year or month skip such rows.
func (r Record) Date() time.Time {
	t, err := time.Parse("2006-01-02", r.Get("fecha"))
	if err != nil {
		return time.Time{}
	}
	return t
}

// MonthKey returns the YYYY-MM bucket of the record's date, or "" when the
// date does not parse.
func (r Record) MonthKey() string {
	d := r.Date()
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}
