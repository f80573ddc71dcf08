package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"go-gin-storefront/internal/core/cache"
)

// CartCounter serves the cart badge count. It is a derived view of the stored cart:
// readers load through it and every cart write invalidates it.
type CartCounter interface {
	Count(ctx context.Context, userID string, load func(context.Context) (int, error)) (int, error)
	Invalidate(ctx context.Context, userID string)
}

// DirectCounter always reads the store.
type DirectCounter struct{}

func (DirectCounter) Count(ctx context.Context, _ string, load func(context.Context) (int, error)) (int, error) {
	return load(ctx)
}

func (DirectCounter) Invalidate(context.Context, string) {}

type RedisCounter struct {
	c   *cache.Cache
	ttl time.Duration
	log *zap.Logger
}

func NewRedisCounter(c *cache.Cache, ttl time.Duration, l *zap.Logger) *RedisCounter {
	if l == nil {
		l = zap.NewNop()
	}
	return &RedisCounter{c: c, ttl: ttl, log: l}
}

type cartCount struct {
	N int `json:"n"`
}

// Counts are cached under the user's current generation. Invalidate bumps the
// generation, so a load that read the store before a write can only fill a key
// nobody reads any more; it expires with the TTL. Generation keys do not expire
// (one integer per user) so a generation number is never reused.
func cartGenKey(userID string) string { return "cart:gen:" + userID }

func cartCountKey(userID string, gen int64) string {
	return "cart:count:" + userID + ":" + strconv.FormatInt(gen, 10)
}

func (r *RedisCounter) Count(ctx context.Context, userID string, load func(context.Context) (int, error)) (int, error) {
	gen, err := r.c.GetInt(ctx, cartGenKey(userID))
	if err != nil {
		// redis 不可用时直接读库
		r.log.Warn("cart generation read failed", zap.String("user_id", userID), zap.Error(err))
		return load(ctx)
	}
	v, err := cache.GetOrLoadJSON(r.c, ctx, cartCountKey(userID, gen), r.ttl, func(ctx context.Context) (*cartCount, error) {
		n, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return &cartCount{N: n}, nil
	})
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return v.N, nil
}

func (r *RedisCounter) Invalidate(ctx context.Context, userID string) {
	if _, err := r.c.Incr(ctx, cartGenKey(userID)); err != nil {
		// 失效失败只会让计数在 TTL 内偏旧
		r.log.Warn("cart count invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
