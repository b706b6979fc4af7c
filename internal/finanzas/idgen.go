package finanzas

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NextMovementID derives the next YYYYMMDD-NNN identifier for today (local
// time of now). Only today's sequence numbers participate in the max; rows
// from other days and malformed identifiers are ignored. The sequence starts
// at 001 when today has no rows yet.
//
// Single-writer assumption: the backend is authoritative for IDs, so two
// processes generating concurrently can collide. Acceptable on the
// local-fallback path.
func NextMovementID(records []Record, idField string, now time.Time) string {
	datePrefix := now.Format("20060102")
	max := 0
	for _, rec := range records {
		id := rec.Get(idField)
		if !strings.HasPrefix(id, datePrefix) {
			continue
		}
		_, seq, ok := strings.Cut(id, "-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(seq)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%03d", datePrefix, max+1)
}

// NextDimensionID derives the next prefix-scoped identifier, e.g. CTA_004
// after CTA_001 and CTA_003. Non-numeric suffixes are excluded from the max
// computation rather than failing.
func NextDimensionID(records []Record, idField, prefix string) string {
	max := 0
	for _, rec := range records {
		id := rec.Get(idField)
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}

// NextID picks the identifier scheme for the table: date-scoped for
// movements, prefix-scoped for dimensions.
func NextID(schema Schema, records []Record, now time.Time) string {
	if schema.Table == TableMovements {
		return NextMovementID(records, schema.IDField, now)
	}
	return NextDimensionID(records, schema.IDField, schema.IDPrefix)
}
