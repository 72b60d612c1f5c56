package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	logg.Info(context.Background(), "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["service"] != "api" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
	if entry["message"] != "hello" {
		t.Fatalf("expected message, got %v", entry["message"])
	}
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithStoreID(ctx, "store-1")
	logg.Info(ctx, "scoped")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("expected request_id, got %v", entry["request_id"])
	}
	if entry["store_id"] != "store-1" {
		t.Fatalf("expected store_id, got %v", entry["store_id"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf, Level: zerolog.WarnLevel})

	logg.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}

	logg.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Fatal("expected warn to be written")
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatal("expected debug level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("expected default info level for empty value")
	}
	if ParseLevel("bogus") != zerolog.InfoLevel {
		t.Fatal("expected default info level for unknown value")
	}
}
