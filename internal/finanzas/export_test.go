package finanzas

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestBuildExportRows(t *testing.T) {
	movs := []Record{
		mov("20250310-001", "2025-03-10", "1500", "CAT_010", "cuenta_id", "CTA_001"),
		mov("20250312-001", "2025-03-12", "-45.9", "CAT_999", "contraparte_id", "CTR_001"),
	}
	cats := []Record{cat("CAT_010", FlowIncome, "Sueldo")}

	rows := BuildExportRows(movs, cats)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Categoria != "Sueldo" || rows[0].Monto != "1500.00" || rows[0].Dimension != "CTA_001" {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
	// Unresolved category keeps the raw id; amounts are two-decimal.
	if rows[1].Categoria != "CAT_999" || rows[1].Monto != "-45.90" || rows[1].Dimension != "CTR_001" {
		t.Fatalf("rows[1] = %+v", rows[1])
	}
}

func TestExportEncoderFor(t *testing.T) {
	cases := []struct {
		format      string
		ok          bool
		contentType string
	}{
		{"", true, "text/csv"},
		{"csv", true, "text/csv"},
		{"json", true, "application/json"},
		{"yaml", true, "application/x-yaml"},
		{"xml", false, ""},
	}
	for _, tc := range cases {
		enc, ok := ExportEncoderFor(tc.format)
		if ok != tc.ok {
			t.Fatalf("ExportEncoderFor(%q) ok = %v", tc.format, ok)
		}
		if ok && enc.ContentType() != tc.contentType {
			t.Fatalf("ExportEncoderFor(%q) content type = %q", tc.format, enc.ContentType())
		}
	}
}

func TestExportMovementsEndpoint(t *testing.T) {
	store := newTestStore(t)
	seedDashboardData(t, store)
	srv := newTestServer(t, store)

	t.Run("csv default", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/export/movimientos")
		if err != nil {
			t.Fatalf("GET export: %v", err)
		}
		defer resp.Body.Close()
		if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
			t.Fatalf("content type = %q", ct)
		}
		if cd := resp.Header.Get("Content-Disposition"); cd != "attachment; filename=movimientos.csv" {
			t.Fatalf("content disposition = %q", cd)
		}
		body, _ := io.ReadAll(resp.Body)
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "mov_id,fecha,descripcion,monto,moneda,categoria,dimension" {
			t.Fatalf("header = %q", lines[0])
		}
	})

	t.Run("json", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/export/movimientos?formato=json")
		if err != nil {
			t.Fatalf("GET export json: %v", err)
		}
		defer resp.Body.Close()
		var rows []ExportRow
		if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(rows) != 2 || rows[0].Categoria == "" {
			t.Fatalf("rows = %+v", rows)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/export/movimientos?formato=yaml")
		if err != nil {
			t.Fatalf("GET export yaml: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		var rows []ExportRow
		if err := yaml.Unmarshal(body, &rows); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("rows = %+v", rows)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/export/movimientos?formato=xml")
		if err != nil {
			t.Fatalf("GET export xml: %v", err)
		}
		if resp.StatusCode != 400 {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
		resp.Body.Close()
	})
}
