package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "mj:session:" + accessID
}

func testManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}, store
}

func TestGenerateStoresToken(t *testing.T) {
	m, store := testManager()
	token, err := m.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if store.values["mj:session:access-1"] != token {
		t.Fatal("expected token stored under session key")
	}
}

func TestRotateIssuesNewPairAndDropsOld(t *testing.T) {
	m, store := testManager()
	token, err := m.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	newID, newToken, err := m.Rotate(context.Background(), "access-1", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newID == "access-1" {
		t.Fatal("expected a fresh access id")
	}
	if _, ok := store.values["mj:session:access-1"]; ok {
		t.Fatal("expected old session removed")
	}
	if store.values["mj:session:"+newID] != newToken {
		t.Fatal("expected new session stored")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	m, _ := testManager()
	if _, err := m.Generate(context.Background(), "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, _, err := m.Rotate(context.Background(), "access-1", "forged")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateRejectsUnknownSession(t *testing.T) {
	m, _ := testManager()
	_, _, err := m.Rotate(context.Background(), "missing", "anything")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestHasSession(t *testing.T) {
	m, _ := testManager()
	if _, err := m.Generate(context.Background(), "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	ok, err := m.HasSession(context.Background(), "access-1")
	if err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}

	if err := m.Revoke(context.Background(), "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err = m.HasSession(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("expected session revoked")
	}
}
