package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewRateLimiter limits each client IP to limit requests per window. With a
// Redis client the counters are shared across instances; otherwise they live
// in process memory.
func NewRateLimiter(limit int, window time.Duration, redisClient *redis.Client) (func(http.Handler) http.Handler, error) {
	rate := limiter.Rate{Period: window, Limit: int64(limit)}

	var (
		store limiter.Store
		err   error
	)
	if redisClient != nil {
		store, err = sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "nutripal:ratelimit",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit store: %w", err)
		}
	} else {
		store = memory.NewStore()
	}

	mw := stdlib.NewMiddleware(limiter.New(store, rate),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
		}),
	)
	return mw.Handler, nil
}
