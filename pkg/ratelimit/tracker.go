package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sunlight_quota_remaining",
		Help: "Requests remaining in the current API key quota window",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sunlight_quota_blocks_total",
		Help: "Total number of requests blocked because the API key quota is spent",
	})

	quotaThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sunlight_quota_throttles_total",
		Help: "Total number of requests throttled because the API key quota is low",
	})
)

// Tracker stores quota state in Redis so every process sharing an API key sees it.
type Tracker struct {
	redis     *redis.Client
	namespace string
	logger    zerolog.Logger
}

// NewTracker creates a tracker whose keys live under namespace.
func NewTracker(redisClient *redis.Client, namespace string, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:     redisClient,
		namespace: namespace,
		logger:    logger,
	}
}

// Namespace derives a stable Redis namespace from an API key without storing the key.
func Namespace(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:6])
}

func (t *Tracker) key(suffix string) string {
	return fmt.Sprintf("%s:%s:%s", RedisKeyPrefix, t.namespace, suffix)
}

// GetState retrieves the current quota state from Redis.
// Returns a default healthy state if nothing has been recorded.
func (t *Tracker) GetState(ctx context.Context) (*QuotaState, error) {
	remaining, err := t.redis.Get(ctx, t.key(RedisKeyRemaining)).Int()
	if err == redis.Nil {
		t.logger.Debug().Msg("No quota state in Redis, returning default healthy state")
		return &QuotaState{
			Remaining:  DefaultLimit,
			Limit:      DefaultLimit,
			LastUpdate: time.Now(),
			IsHealthy:  true,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get remaining: %w", err)
	}

	limit, err := t.redis.Get(ctx, t.key(RedisKeyLimit)).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get limit: %w", err)
	}
	if limit == 0 {
		limit = DefaultLimit
	}

	var lastUpdate time.Time
	raw, err := t.redis.Get(ctx, t.key(RedisKeyLastUpdate)).Bytes()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &lastUpdate); err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	state := &QuotaState{
		Remaining:  remaining,
		Limit:      limit,
		LastUpdate: lastUpdate,
	}
	state.UpdateHealth()

	return state, nil
}

// UpdateFromHeaders records the quota headers of a response.
// Responses without X-RateLimit-Remaining leave the state untouched.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get("X-RateLimit-Remaining")
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse X-RateLimit-Remaining header: %w", err)
	}

	limit := DefaultLimit
	if limitStr := headers.Get("X-RateLimit-Limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return fmt.Errorf("parse X-RateLimit-Limit header: %w", err)
		}
	}

	state := &QuotaState{
		Remaining:  remain,
		Limit:      limit,
		LastUpdate: time.Now(),
	}
	state.UpdateHealth()

	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}

	// Keys expire with the window; a missing key reads as a fresh quota.
	pipe := t.redis.Pipeline()
	pipe.Set(ctx, t.key(RedisKeyRemaining), remain, Window)
	pipe.Set(ctx, t.key(RedisKeyLimit), limit, Window)
	pipe.Set(ctx, t.key(RedisKeyLastUpdate), lastUpdateJSON, Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}

	quotaRemaining.Set(float64(remain))

	switch {
	case state.NeedsBlock():
		t.logger.Error().
			Int("remaining", remain).
			Int("limit", limit).
			Msg("API key quota spent - requests will be blocked")
	case state.NeedsThrottling():
		t.logger.Warn().
			Int("remaining", remain).
			Int("limit", limit).
			Msg("API key quota low - requests will be throttled")
	default:
		t.logger.Debug().
			Int("remaining", remain).
			Int("limit", limit).
			Bool("is_healthy", state.IsHealthy).
			Msg("API key quota updated")
	}

	return nil
}

// ShouldAllowRequest reports whether a request may be sent.
// It returns false when the quota is spent and pauses for ThrottleDelay
// when the quota is low.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.NeedsBlock() {
		t.logger.Error().
			Int("remaining", state.Remaining).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("API key quota spent - blocking request")

		quotaBlocksTotal.Inc()
		return false, nil
	}

	if state.NeedsThrottling() {
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Msg("API key quota low - throttling request")

		quotaThrottlesTotal.Inc()

		timer := time.NewTimer(ThrottleDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	return true, nil
}
