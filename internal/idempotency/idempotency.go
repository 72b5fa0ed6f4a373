package idempotency

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
)

// Store is the raw key/value backend, implemented by the redis adapter.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// ErrInFlight is returned by Begin when another request holds the key.
var ErrInFlight = errors.New("request with the same idempotency key is in progress")

const lockTTL = 30 * time.Second

type Idempotency struct {
	store Store
	ttl   time.Duration
}

func NewIdempotency(store Store, ttl time.Duration) *Idempotency {
	return &Idempotency{store: store, ttl: ttl}
}

type Response struct {
	Status int             `json:"status"`
	Result json.RawMessage `json:"result"`
}

func (i *Idempotency) Get(ctx context.Context, key string) (*Response, error) {
	if key == "" {
		return nil, nil
	}
	data, err := i.store.Get(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrapf(err, "decode stored response for %s", key)
	}
	return &resp, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp Response) error {
	if key == "" {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrap(err, "encode response")
	}
	return i.store.Set(ctx, key, data, i.ttl)
}

// Begin marks key as in flight. The returned release func must be called once
// the outcome is stored (or abandoned).
func (i *Idempotency) Begin(ctx context.Context, key string) (func(), error) {
	ok, err := i.store.Lock(ctx, key, lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInFlight
	}
	return func() {
		_ = i.store.Unlock(context.WithoutCancel(ctx), key)
	}, nil
}
