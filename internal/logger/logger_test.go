package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	log.Info().Str("tabla", "movimientos").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["message"] != "hello" || line["tabla"] != "movimientos" {
		t.Fatalf("line = %v", line)
	}
	if line["time"] == nil {
		t.Fatal("missing timestamp")
	}
}

func TestContextRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf).With().Str("request_id", "abc").Logger()

	ctx := WithContext(context.Background(), log)
	got := FromContext(ctx)
	got.Info().Msg("tagged")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["request_id"] != "abc" {
		t.Fatalf("request_id = %v", line["request_id"])
	}
}

func TestFromContextFallback(t *testing.T) {
	// Must not panic and must return a usable logger.
	log := FromContext(context.Background())
	log.Debug().Msg("default logger")
}
