//go:build unit

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(cfg config.RateLimitConfig, rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reservations", RateLimit(cfg, rdb), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimit_PassThrough(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Prefix:         "rl",
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Minute,
	}

	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = unreachable.Close() })

	disabled := cfg
	disabled.Enabled = false

	tests := []struct {
		name string
		cfg  config.RateLimitConfig
		rdb  *redis.Client
	}{
		{name: "disabled", cfg: disabled, rdb: unreachable},
		{name: "no client", cfg: cfg, rdb: nil},
		{name: "redis down fails open", cfg: cfg, rdb: unreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newLimitedRouter(tt.cfg, tt.rdb)
			for range 3 {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reservations", nil))
				assert.Equal(t, http.StatusCreated, w.Code)
				assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
			}
		})
	}
}

func TestRateKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	var keys []string
	r := gin.New()
	r.POST("/reservations/:id/reschedule", func(c *gin.Context) {
		if c.GetHeader("X-Test-User") != "" {
			c.Set(ctxUserIDKey, userID)
		}
		keys = append(keys, rateKey("rl", c))
	})

	req := httptest.NewRequest(http.MethodPost, "/reservations/abc/reschedule", nil)
	req.Header.Set("X-Test-User", "1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/reservations/abc/reschedule", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{
		"rl:user:" + userID.String() + ":POST /reservations/:id/reschedule",
		"rl:ip:10.0.0.7:POST /reservations/:id/reschedule",
	}, keys)
}
