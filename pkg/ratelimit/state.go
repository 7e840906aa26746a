// Package ratelimit tracks the hourly request quota attached to a Sunlight API key.
// It reads the X-RateLimit-Limit and X-RateLimit-Remaining headers returned by the
// API gateway and gates requests once the quota is spent.
package ratelimit

import (
	"time"
)

// Redis key suffixes for quota state storage. Full keys are
// "sunlight:quota:<namespace>:<suffix>".
const (
	RedisKeyPrefix     = "sunlight:quota"
	RedisKeyRemaining  = "remaining"
	RedisKeyLimit      = "limit"
	RedisKeyLastUpdate = "last_update"
)

const (
	// Window is the length of the gateway's quota window.
	Window = time.Hour

	// DefaultLimit is the gateway's default hourly quota per key.
	DefaultLimit = 1000

	// RemainingCritical blocks requests when fewer requests than this remain.
	RemainingCritical = 1

	// RemainingWarning throttles requests when fewer requests than this remain.
	RemainingWarning = 50

	// RemainingHealthy indicates normal operation.
	RemainingHealthy = 200

	// ThrottleDelay is the pause applied to each request in the warning range.
	ThrottleDelay = 1 * time.Second
)

// QuotaState is the last observed quota for an API key.
type QuotaState struct {
	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// Limit is the size of the window's quota.
	Limit int `json:"limit"`

	// LastUpdate is when the headers were last observed.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= RemainingHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than maxAge.
func (s *QuotaState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsBlock returns true when the quota is spent and the window has not rolled over.
func (s *QuotaState) NeedsBlock() bool {
	return s.Remaining < RemainingCritical && !s.IsStale(Window)
}

// NeedsThrottling returns true in the warning range.
func (s *QuotaState) NeedsThrottling() bool {
	return s.Remaining < RemainingWarning && !s.NeedsBlock() && !s.IsStale(Window)
}

// ResetAt is the latest point at which the window rolls over.
func (s *QuotaState) ResetAt() time.Time {
	return s.LastUpdate.Add(Window)
}

// TimeUntilReset returns the duration until ResetAt, or 0 if it has passed.
func (s *QuotaState) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt())
	if d < 0 {
		return 0
	}
	return d
}

// UpdateHealth updates IsHealthy from Remaining.
func (s *QuotaState) UpdateHealth() {
	s.IsHealthy = s.Remaining >= RemainingHealthy
}
