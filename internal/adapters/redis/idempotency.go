package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

// Get returns nil without error when nothing is stored under key.
func (i *Idempotency) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := i.client.Get(ctx, "idemp:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "idempotency get %s", key)
	}
	return val, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return errors.Wrapf(i.client.Set(ctx, "idemp:"+key, data, ttl).Err(), "idempotency set %s", key)
}

// Lock takes a short-lived in-flight marker so concurrent duplicates of the
// same key do not run side by side.
func (i *Idempotency) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := i.client.SetNX(ctx, "idemp-lock:"+key, 1, ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "idempotency lock %s", key)
	}
	return ok, nil
}

func (i *Idempotency) Unlock(ctx context.Context, key string) error {
	return errors.Wrapf(i.client.Del(ctx, "idemp-lock:"+key).Err(), "idempotency unlock %s", key)
}
