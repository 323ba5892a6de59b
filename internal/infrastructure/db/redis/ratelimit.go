package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultWindow = time.Minute

// RateCounter counts hits per key in fixed windows backed by Redis.
// Key format: ratelimit:<key>:<window_start_unix>
type RateCounter struct {
	client *redis.Client
	window time.Duration
	now    func() time.Time
}

// NewRateCounter creates a RateCounter wrapping the given Redis client.
func NewRateCounter(client *redis.Client, window time.Duration) *RateCounter {
	if window <= 0 {
		window = defaultWindow
	}
	return &RateCounter{client: client, window: window, now: time.Now}
}

// Hit records one request for key and returns the count in the current window.
func (r *RateCounter) Hit(ctx context.Context, key string) (int64, error) {
	k := r.key(key, r.now())

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate counter: %w", err)
	}
	return incr.Val(), nil
}

func (r *RateCounter) key(key string, now time.Time) string {
	start := now.Truncate(r.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%d", key, start)
}
