package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills the bucket by whole intervals, takes one token if
// available and returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateLimit applies a per-caller token bucket stored in redis. It is a no-op
// when disabled or without a client, and fails open on redis errors.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) gin.HandlerFunc {
	if !cfg.Enabled || rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}

	ttlSeconds := int64(cfg.TTL / time.Second)
	if minTTL := int64(5 * cfg.RefillInterval / time.Second); ttlSeconds < minTTL {
		ttlSeconds = minTTL
	}

	return func(c *gin.Context) {
		key := rateKey(cfg.Prefix, c)

		vals, err := tokenBucketScript.Run(c.Request.Context(), rdb, []string{key},
			time.Now().UnixMilli(),
			cfg.Capacity,
			cfg.RefillTokens,
			cfg.RefillInterval.Milliseconds(),
			ttlSeconds,
		).Int64Slice()
		if err != nil || len(vals) != 3 {
			slog.Warn("rate limiter unavailable", "key", key, "error", fmt.Sprint(err))
			c.Next()
			return
		}

		allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000.0))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":  gin.H{"message": "Rate limit exceeded"},
				"detail": gin.H{"retry_after": secs},
			})
			return
		}

		c.Next()
	}
}

// rateKey buckets authenticated callers by user and route, anonymous ones by IP.
func rateKey(prefix string, c *gin.Context) string {
	route := c.Request.Method + " " + c.FullPath()
	if id, ok := GetUserID(c); ok {
		return strings.Join([]string{prefix, "user", id.String(), route}, ":")
	}
	return strings.Join([]string{prefix, "ip", c.ClientIP(), route}, ":")
}
