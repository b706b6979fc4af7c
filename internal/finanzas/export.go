package finanzas

import (
	"bytes"
	"encoding/csv"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// ExportRow is a universal movement row for export: amounts normalized to two
// decimals and the category reference resolved to its display name.
type ExportRow struct {
	MovID       string `json:"mov_id" yaml:"mov_id"`
	Fecha       string `json:"fecha" yaml:"fecha"`
	Descripcion string `json:"descripcion" yaml:"descripcion"`
	Monto       string `json:"monto" yaml:"monto"`
	Moneda      string `json:"moneda" yaml:"moneda"`
	Categoria   string `json:"categoria" yaml:"categoria"`
	Dimension   string `json:"dimension" yaml:"dimension"`
}

// ExportEncoder is the strategy for one output format.
type ExportEncoder interface {
	EncodeRows(rows []ExportRow) ([]byte, error)
	ContentType() string
}

// BuildExportRows shapes movements into export rows, resolving category names
// against the category dimension set (raw id when unresolved) and picking the
// single filled dimension reference.
func BuildExportRows(movs, categories []Record) []ExportRow {
	catName := make(map[string]string, len(categories))
	for _, cat := range categories {
		catName[cat.Get("categoria_id")] = cat.Get("categoria_nombre")
	}

	rows := make([]ExportRow, 0, len(movs))
	for _, mov := range movs {
		name := mov.Get("categoria_id")
		if n, ok := catName[name]; ok {
			name = n
		}
		dim := ""
		for _, field := range MovementDimFields {
			if v := mov.Get(field); v != "" {
				dim = v
				break
			}
		}
		rows = append(rows, ExportRow{
			MovID:       mov.Get("mov_id"),
			Fecha:       mov.Get("fecha"),
			Descripcion: mov.Get("descripcion"),
			Monto:       mov.Amount().StringFixed(2),
			Moneda:      mov.Get("moneda"),
			Categoria:   name,
			Dimension:   dim,
		})
	}
	return rows
}

type JSONEncoder struct{}

func (JSONEncoder) EncodeRows(rows []ExportRow) ([]byte, error) {
	return json.MarshalIndent(rows, "", "  ")
}

func (JSONEncoder) ContentType() string { return "application/json" }

type YAMLEncoder struct{}

func (YAMLEncoder) EncodeRows(rows []ExportRow) ([]byte, error) {
	return yaml.Marshal(rows)
}

func (YAMLEncoder) ContentType() string { return "application/x-yaml" }

type CSVEncoder struct{}

func (CSVEncoder) EncodeRows(rows []ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"mov_id", "fecha", "descripcion", "monto", "moneda", "categoria", "dimension"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.MovID, r.Fecha, r.Descripcion, r.Monto, r.Moneda, r.Categoria, r.Dimension}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (CSVEncoder) ContentType() string { return "text/csv" }

// ExportEncoderFor maps a formato query value to its encoder.
func ExportEncoderFor(format string) (ExportEncoder, bool) {
	switch format {
	case "", "csv":
		return CSVEncoder{}, true
	case "json":
		return JSONEncoder{}, true
	case "yaml":
		return YAMLEncoder{}, true
	}
	return nil, false
}
