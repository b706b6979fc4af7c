package finanzas

import (
	"sort"
	"strings"
)

// Dataset holds one table's full record set and a derived filtered view, the
// in-memory working copy behind the table endpoints.
type Dataset struct {
	Schema   Schema
	Records  []Record
	Filtered []Record
}

// NewDataset builds a dataset over the given rows. Movements are ordered by
// mov_id descending so the newest rows come first; dimensions keep file order.
func NewDataset(schema Schema, records []Record) *Dataset {
	d := &Dataset{Schema: schema, Records: records}
	if schema.Table == TableMovements {
		d.sortByIDDesc()
	}
	d.Filtered = d.Records
	return d
}

func (d *Dataset) sortByIDDesc() {
	id := d.Schema.IDField
	sort.SliceStable(d.Records, func(i, j int) bool {
		return d.Records[i].Get(id) > d.Records[j].Get(id)
	})
}

// Search narrows the filtered view to rows where any declared column contains
// term, case-insensitively. An empty term restores the full set.
func (d *Dataset) Search(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		d.Filtered = d.Records
		return
	}
	out := make([]Record, 0, len(d.Records))
	for _, rec := range d.Records {
		for _, f := range d.Schema.Fields {
			if strings.Contains(strings.ToLower(rec[f.Name]), term) {
				out = append(out, rec)
				break
			}
		}
	}
	d.Filtered = out
}

// Page slices the filtered view. Pages are 1-based; out-of-range pages return
// an empty slice. perPage values below 1 fall back to 10, the table default.
func (d *Dataset) Page(page, perPage int) []Record {
	if perPage < 1 {
		perPage = 10
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(d.Filtered) {
		return []Record{}
	}
	end := start + perPage
	if end > len(d.Filtered) {
		end = len(d.Filtered)
	}
	return d.Filtered[start:end]
}

// Find returns the record with the given identifier and its index in the full
// set, or (nil, -1) when absent.
func (d *Dataset) Find(id string) (Record, int) {
	field := d.Schema.IDField
	for i, rec := range d.Records {
		if rec.Get(field) == id {
			return rec, i
		}
	}
	return nil, -1
}
