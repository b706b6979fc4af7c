package finanzas

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DarkGhons/paginaweb-finanzas/internal/logger"
)

func testConfig() Config {
	return Config{EquityCategory: DefaultEquityCategory}
}

func newTestStore(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSVStore(t.TempDir())
}

func newTestServer(t *testing.T, store Store) *httptest.Server {
	t.Helper()

	log := logger.NewWithWriter(&bytes.Buffer{})
	mux := http.NewServeMux()
	RegisterAPI(mux, NewServer(store, testConfig(), log))
	srv := httptest.NewServer(WithRequestLogging(mux, log))
	t.Cleanup(srv.Close)
	return srv
}

func mustInsert(t *testing.T, store Store, table string, rec Record) {
	t.Helper()
	if err := store.Insert(context.Background(), table, rec); err != nil {
		t.Fatalf("insert into %s: %v", table, err)
	}
}

// mov builds a movement row with the single dimension reference dimField.
func mov(id, fecha, monto, catID, dimField, dimID string) Record {
	rec := Record{
		"mov_id":      id,
		"fecha":       fecha,
		"descripcion": "test",
		"monto":       monto,
		"moneda":      "CLP",
	}
	if catID != "" {
		rec["categoria_id"] = catID
	}
	if dimField != "" {
		rec[dimField] = dimID
	}
	return rec
}

func cat(id, flow, name string) Record {
	return Record{"categoria_id": id, "tipo_flujo": flow, "categoria_nombre": name}
}

func cta(id, name string) Record {
	return Record{
		"cuenta_id":      id,
		"cuenta_nombre":  name,
		"tipo_cuenta":    "corriente",
		"banco":          "BancoTest",
		"moneda_base":    "CLP",
		"activa (si/no)": "SI",
	}
}

type apiResponse struct {
	OK      bool           `json:"ok"`
	Data    any            `json:"data"`
	Message string         `json:"message"`
	Error   any            `json:"error"`
	Details map[string]any `json:"details"`
}

func decodeAPIResponse(t *testing.T, resp *http.Response) apiResponse {
	t.Helper()
	defer resp.Body.Close()
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func mustMap(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", v)
	}
	return m
}

func mustList(t *testing.T, v any) []any {
	t.Helper()
	lst, ok := v.([]any)
	if !ok {
		t.Fatalf("expected list, got %T", v)
	}
	return lst
}

func doJSON(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}
