package finanzas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var isoDateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type apiErr struct {
	Status  int
	Message string
	Details any
}

func (e *apiErr) Error() string { return e.Message }

func badRequest(msg string, details any) *apiErr {
	return &apiErr{Status: 400, Message: msg, Details: details}
}
func notFound(msg string) *apiErr { return &apiErr{Status: 404, Message: msg} }
func serverError(log zerolog.Logger, msg string, err error) *apiErr {
	log.Error().Err(err).Msg(msg)
	return &apiErr{Status: 500, Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, 200, map[string]any{"ok": true, "data": data})
}

// writeCreated answers a successful create with the app's Spanish user-facing
// message alongside the payload.
func writeCreated(w http.ResponseWriter, data any, message string) {
	writeJSON(w, 201, map[string]any{"ok": true, "data": data, "message": message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, 200, map[string]any{"ok": true, "message": message})
}

func writeErr(w http.ResponseWriter, err *apiErr) {
	payload := map[string]any{"ok": false, "error": err.Message}
	if err.Details != nil {
		payload["details"] = err.Details
	}
	writeJSON(w, err.Status, payload)
}

// readRecord decodes a JSON object body into a Record, stringifying scalar
// values the way the CSV layer stores them. Nested values are rejected.
func readRecord(r *http.Request) (Record, *apiErr) {
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, badRequest("no se pudo leer el cuerpo", nil)
	}
	if len(b) == 0 {
		b = []byte(`{}`)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, badRequest("JSON inválido", map[string]any{"error": err.Error()})
	}
	rec := make(Record, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			rec[k] = ""
		case string:
			rec[k] = strings.TrimSpace(t)
		case json.Number:
			rec[k] = t.String()
		case bool:
			rec[k] = strconv.FormatBool(t)
		default:
			return nil, badRequest(fmt.Sprintf("el campo %s debe ser un valor escalar", k), nil)
		}
	}
	return rec, nil
}

func requireDate(v string, field string) (string, *apiErr) {
	if !isoDateRE.MatchString(v) {
		return "", badRequest(fmt.Sprintf("%s debe ser una fecha ISO YYYY-MM-DD", field), nil)
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return "", badRequest(fmt.Sprintf("%s no es una fecha válida", field), nil)
	}
	return v, nil
}

// parseIDFromPath extracts the record identifier after prefix. Identifiers
// are opaque strings here (20250310-001, CTA_004), so the only requirements
// are non-empty and no further path segments.
func parseIDFromPath(prefix string, path string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	s := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if s == "" || strings.Contains(s, "/") {
		return "", false
	}
	return s, true
}

// queryInt parses an integer query parameter, falling back when absent or
// malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
