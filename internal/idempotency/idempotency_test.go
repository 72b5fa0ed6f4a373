package idempotency

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	locks map[string]bool
	ttl   time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, locks: map[string]bool{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.ttl = ttl
	return nil
}

func (m *memStore) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *memStore) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

func TestSetThenGet(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	idemp := NewIdempotency(store, time.Hour)

	got, err := idemp.Get(ctx, "checkout:1")
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %v, %v", got, err)
	}

	body := json.RawMessage(`{"insertResult":{"insertedId":"x"}}`)
	if err := idemp.Set(ctx, "checkout:1", Response{Status: 200, Result: body}); err != nil {
		t.Fatal(err)
	}
	got, err = idemp.Get(ctx, "checkout:1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != 200 || string(got.Result) != string(body) {
		t.Errorf("unexpected stored response: %+v", got)
	}
	if store.ttl != time.Hour {
		t.Errorf("expected ttl to be passed through, got %s", store.ttl)
	}
}

func TestEmptyKeyIsIgnored(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	idemp := NewIdempotency(store, time.Hour)

	if err := idemp.Set(ctx, "", Response{Status: 200}); err != nil {
		t.Fatal(err)
	}
	if len(store.data) != 0 {
		t.Error("empty key must not be stored")
	}
	if got, _ := idemp.Get(ctx, ""); got != nil {
		t.Error("empty key must always miss")
	}
}

func TestBeginRejectsConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	idemp := NewIdempotency(newMemStore(), time.Hour)

	release, err := idemp.Begin(ctx, "checkout:1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := idemp.Begin(ctx, "checkout:1"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	release()
	release2, err := idemp.Begin(ctx, "checkout:1")
	if err != nil {
		t.Fatalf("expected key to be free after release, got %v", err)
	}
	release2()
}
