package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	redis "github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-watchlist/internal/metrics"
)

const breakerName = "listing-cache"

// RedisCache is a read-through cache of movie listings. Entries are
// namespaced by a version counter; bumping it orphans every entry, which
// then expires by TTL.
//
// Reads and fills go through a circuit breaker so an unreachable Redis
// is skipped instead of adding a failed round trip to every request.
// Invalidate always reaches Redis.
type RedisCache struct {
	Client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewRedisCache(url string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     url,
			Password: "",
			DB:       0,
		},
	)
	redisCache := &RedisCache{
		Client:  client,
		ttl:     ttl,
		breaker: newBreaker(logger.Named(breakerName)),
	}

	return redisCache, nil
}

func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CacheBreakerState.Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a miss or a cancelled request says nothing about Redis health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, redis.Nil) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CacheBreakerState.Set(float64(to))
		},
	})
}

// skipped reports whether the breaker refused the call.
func skipped(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}

func (r *RedisCache) version(ctx context.Context) (int64, error) {
	v, err := r.Client.Get(ctx, ListingVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// GetListing looks the listing up under the current version. The returned
// key is where a miss should be filled, so a fill that races with a write
// lands under the superseded version. While the breaker is open it
// reports a miss with no key.
func (r *RedisCache) GetListing(ctx context.Context, kind string, query any, dest any) (string, bool, error) {
	fingerprint, err := Fingerprint(query)
	if err != nil {
		return "", false, err
	}

	var key string
	data, err := r.breaker.Execute(func() ([]byte, error) {
		version, err := r.version(ctx)
		if err != nil {
			return nil, err
		}
		key = MakeListingKey(version, kind, fingerprint)
		return r.Client.Get(ctx, key).Bytes()
	})
	if err != nil {
		switch {
		// if the listing isn't cached
		case errors.Is(err, redis.Nil):
			metrics.CacheMisses.WithLabelValues(kind).Inc()
			return key, false, nil
		case skipped(err):
			return "", false, nil
		}
		return "", false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return key, false, err
	}
	metrics.CacheHits.WithLabelValues(kind).Inc()
	return key, true, nil
}

func (r *RedisCache) SetListing(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = r.breaker.Execute(func() ([]byte, error) {
		return nil, r.Client.Set(ctx, key, data, r.ttl).Err()
	})
	if skipped(err) {
		return nil
	}
	return err
}

func (r *RedisCache) Invalidate(ctx context.Context) error {
	return r.Client.Incr(ctx, ListingVersionKey).Err()
}
