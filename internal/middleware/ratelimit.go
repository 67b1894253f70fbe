package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-catalog/internal/config"
)

// takeToken refills the bucket in KEYS[1] by whole intervals and takes one
// token.  ARGV: now_ms, capacity, refill, interval_ms, ttl_s.  Returns
// {allowed, remaining, wait_ms}.
var takeToken = redis.NewScript(`
local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local now, cap = tonumber(ARGV[1]), tonumber(ARGV[2])
local refill, every = tonumber(ARGV[3]), tonumber(ARGV[4])
local tokens, ts = tonumber(b[1]), tonumber(b[2])
if not tokens or not ts then
  tokens, ts = cap, now
end
local n = math.floor(math.max(0, now - ts) / every)
if n > 0 then
  tokens = math.min(cap, tokens + n * refill)
  ts = ts + n * every
end
local ok, wait = 0, 0
if tokens > 0 then
  ok, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - ts))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ARGV[5])
return {ok, tokens, wait}
`)

// bucketResult is the decoded answer of takeToken.
type bucketResult struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

type tokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

func (b tokenBucket) take(ctx context.Context, key string) (bucketResult, error) {
	v, err := takeToken.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketResult{}, err
	}
	return parseBucketResult(v)
}

func parseBucketResult(v []int64) (bucketResult, error) {
	if len(v) != 3 {
		return bucketResult{}, redis.Nil
	}
	return bucketResult{
		allowed:   v[0] == 1,
		remaining: v[1],
		wait:      time.Duration(v[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests per key with a Redis token bucket.  Redis
// errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	bucket := tokenBucket{cfg: cfg, rdb: rdb}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			res, err := bucket.take(c.Request().Context(), key)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit %s: %v", key, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if res.allowed {
				return next(c)
			}
			secs := retrySeconds(res.wait)
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				c.Logger().Infof("ratelimit %s: blocked for %s", key, res.wait)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// retrySeconds rounds d up to whole seconds.
func retrySeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// buildRateKey joins the prefix with the dimensions named by the key
// strategy, e.g. "ip_route".  Unknown or empty strategies key on all three.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	strategy := strings.ToLower(cfg.KeyStrategy)
	parts := []string{cfg.Prefix}
	for _, dim := range strings.Split(strategy, "_") {
		parts = appendDim(parts, dim, c)
	}
	if len(parts) == 1 {
		for _, dim := range []string{"ip", "user", "route"} {
			parts = appendDim(parts, dim, c)
		}
	}
	return strings.Join(parts, ":")
}

func appendDim(parts []string, dim string, c echo.Context) []string {
	switch dim {
	case "ip":
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		return append(parts, "ip", ip)
	case "user":
		return append(parts, "user", userID(c))
	case "route":
		return append(parts, "route", c.Request().Method+" "+c.Path())
	}
	return parts
}
