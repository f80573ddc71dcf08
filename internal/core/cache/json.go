package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON is GetOrLoad for a JSON-encoded *T. A nil load result is cached as
// "null" and returned as (nil, nil), so repeated misses on absent rows stay off the
// store for ttl. An entry that no longer decodes into T (e.g. after a struct change)
// is dropped and reloaded once.
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	encoded := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, encoded)
	if err != nil {
		return nil, err
	}
	out, err := decode[T](b)
	if err == nil {
		return out, nil
	}
	_ = c.Delete(ctx, key)
	if b, err = c.GetOrLoad(ctx, key, ttl, encoded); err != nil {
		return nil, err
	}
	return decode[T](b)
}

func decode[T any](b []byte) (*T, error) {
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
