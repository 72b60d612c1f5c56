package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultLimit},
		{in: -5, want: DefaultLimit},
		{in: 10, want: 10},
		{in: MaxLimit + 50, want: MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFetchLimitAddsSentinel(t *testing.T) {
	if got := FetchLimit(10); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 2, 10, 8, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := Parse(original.Encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !parsed.CreatedAt.Equal(original.CreatedAt) || parsed.ID != original.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, original)
	}
}

func TestParseEmptyCursor(t *testing.T) {
	parsed, err := Parse("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != nil {
		t.Fatalf("expected nil cursor, got %+v", parsed)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-base64!!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := Parse("bm8tcGlwZS1oZXJl"); err == nil {
		t.Fatal("expected malformed cursor error")
	}
}
