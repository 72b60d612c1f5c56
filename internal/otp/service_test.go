package otp

import (
	"context"
	"testing"
	"time"

	"github.com/matjara-app/matjara-backend/pkg/config"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	pkgredis "github.com/matjara-app/matjara-backend/pkg/redis"
)

type fakeStore struct {
	values   map[string]string
	counters map[string]int64
	ttls     map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:   make(map[string]string),
		counters: make(map[string]int64),
		ttls:     make(map[string]time.Duration),
	}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (f *fakeStore) Incr(ctx context.Context, key string) (int64, error) {
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
		delete(f.counters, key)
		delete(f.ttls, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) OTPKey(id string) string         { return "test:otp:" + id }
func (fakeKeyer) OTPAttemptsKey(id string) string { return "test:otp_tries:" + id }

func newTestService(store *fakeStore) *Service {
	return newService(store, fakeKeyer{}, config.OTPConfig{
		TTL:         10 * time.Minute,
		MaxAttempts: 3,
		CodeLength:  6,
	})
}

func TestIssueThenVerify(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "identity-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	if store.ttls["test:otp:identity-1"] != 10*time.Minute {
		t.Fatalf("expected code TTL applied, got %v", store.ttls["test:otp:identity-1"])
	}

	if err := svc.Verify(ctx, "identity-1", code); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Codes are single-use.
	err = svc.Verify(ctx, "identity-1", code)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error on reuse, got %v", err)
	}
}

func TestVerify_WrongCode(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	code, _ := svc.Issue(ctx, "identity-1")

	err := svc.Verify(ctx, "identity-1", "000000")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The right code still works afterwards.
	if err := svc.Verify(ctx, "identity-1", code); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerify_AttemptsCapped(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	code, _ := svc.Issue(ctx, "identity-1")

	for i := 0; i < 3; i++ {
		_ = svc.Verify(ctx, "identity-1", "999999")
	}

	// Even the correct code is refused once the cap is hit.
	err := svc.Verify(ctx, "identity-1", code)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestIssue_ResetsAttempts(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, _ = svc.Issue(ctx, "identity-1")
	for i := 0; i < 3; i++ {
		_ = svc.Verify(ctx, "identity-1", "999999")
	}

	code, err := svc.Issue(ctx, "identity-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Verify(ctx, "identity-1", code); err != nil {
		t.Fatalf("expected fresh code to verify after reissue, got %v", err)
	}
}

func TestVerify_NeverIssued(t *testing.T) {
	svc := newTestService(newFakeStore())

	err := svc.Verify(context.Background(), "identity-1", "123456")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
