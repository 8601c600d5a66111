package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const availabilityPrefix = "availability:"

// setIfCurrentScript stores the entry only while the generation still matches
// the one observed on the miss. A missing generation counts as 0.
var setIfCurrentScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then
  current = '0'
end
if current ~= ARGV[1] then
  return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ttl)
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// AvailabilityCache is a cache-aside store for seat maps. A nil client turns
// every call into a miss.
//
// Every invalidation bumps a per-screening generation. A reader that missed
// may only fill the entry under the generation it saw, so a view loaded
// before a committed ledger change is never written back after it.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{
		client: client,
		ttl:    ttl,
	}
}

// keys share a hash tag so the script stays on one slot.
func (c *AvailabilityCache) key(screeningID uuid.UUID) string {
	return availabilityPrefix + "{" + screeningID.String() + "}"
}

func (c *AvailabilityCache) generationKey(screeningID uuid.UUID) string {
	return c.key(screeningID) + ":gen"
}

func (c *AvailabilityCache) Get(ctx context.Context, screeningID uuid.UUID) (*queries.AvailabilityView, queries.CacheVersion, bool) {
	if c.client == nil {
		return nil, queries.CacheVersion{}, false
	}

	values, err := c.client.MGet(ctx, c.key(screeningID), c.generationKey(screeningID)).Result()
	if err != nil {
		slog.Warn("availability cache read failed", "screening_id", screeningID, "error", err.Error())
		return nil, queries.CacheVersion{}, false
	}

	version, ok := parseGeneration(values[1])
	if !ok {
		slog.Warn("availability cache generation is corrupt", "screening_id", screeningID)
		return nil, queries.CacheVersion{}, false
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, version, false
	}

	var view queries.AvailabilityView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		slog.Warn("availability cache entry is corrupt", "screening_id", screeningID, "error", err.Error())
		return nil, version, false
	}
	return &view, version, true
}

func parseGeneration(v any) (queries.CacheVersion, bool) {
	if v == nil {
		return queries.NewCacheVersion(0), true
	}
	s, ok := v.(string)
	if !ok {
		return queries.CacheVersion{}, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return queries.CacheVersion{}, false
	}
	return queries.NewCacheVersion(n), true
}

// Set fills the entry unless the screening was invalidated after version was
// observed.
func (c *AvailabilityCache) Set(ctx context.Context, view *queries.AvailabilityView, version queries.CacheVersion) {
	if c.client == nil || view == nil || !version.Valid() {
		return
	}

	data, err := json.Marshal(view)
	if err != nil {
		return
	}

	keys := []string{c.key(view.ScreeningID), c.generationKey(view.ScreeningID)}
	stored, err := setIfCurrentScript.Run(ctx, c.client, keys,
		strconv.FormatInt(version.Generation(), 10), data, c.ttl.Milliseconds()).Int()
	if err != nil {
		slog.Warn("availability cache write failed", "screening_id", view.ScreeningID, "error", err.Error())
		return
	}
	if stored == 0 {
		slog.Debug("availability cache write skipped after invalidation", "screening_id", view.ScreeningID)
	}
}

// Invalidate bumps the generation and drops the entry. It is called after
// commit, so it ignores cancellation of the caller's context.
func (c *AvailabilityCache) Invalidate(ctx context.Context, screeningID uuid.UUID) {
	if c.client == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(screeningID))
		pipe.Del(ctx, c.key(screeningID))
		return nil
	})
	if err != nil {
		// the entry still expires after ttl
		slog.Warn("availability cache invalidation failed", "screening_id", screeningID, "error", err.Error())
	}
}
