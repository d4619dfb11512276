package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/clarify/internal/common"
)

// RateLimiterConfig configures the sliding-window admission controller.
type RateLimiterConfig struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultRateLimiterConfig returns the default configuration:
// 10 requests per 60 seconds.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Window:      60 * time.Second,
		MaxRequests: 10,
	}
}

// RateLimiter is a sliding-window admission controller shared across
// all orchestration calls. A cleanup pass evicts timestamps older than
// the window before every read and write, so the recorded list never
// exceeds MaxRequests.
type RateLimiter struct {
	now        func() time.Time
	timestamps []time.Time
	config     RateLimiterConfig
	used       bool
	mu         sync.Mutex
}

// NewRateLimiter creates a rate limiter, validating the configuration.
func NewRateLimiter(cfg RateLimiterConfig) (*RateLimiter, error) {
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("%w: rate limit window must be positive, got %v", common.ErrInvalidConfig, cfg.Window)
	}
	if cfg.MaxRequests <= 0 {
		return nil, fmt.Errorf("%w: rate limit max requests must be positive, got %d", common.ErrInvalidConfig, cfg.MaxRequests)
	}
	return &RateLimiter{
		config: cfg,
		now:    time.Now,
	}, nil
}

// Reconfigure changes the limiter's configuration. Once a request has
// been recorded the configuration is frozen: silently changing limits
// under a shared limiter would drift behavior for every caller.
func (r *RateLimiter) Reconfigure(cfg RateLimiterConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.used {
		return fmt.Errorf("%w: rate limiter already in use; reset before reconfiguring", common.ErrInvalidConfig)
	}
	if cfg.Window <= 0 || cfg.MaxRequests <= 0 {
		return fmt.Errorf("%w: invalid rate limiter configuration", common.ErrInvalidConfig)
	}
	r.config = cfg
	return nil
}

// CanMakeRequest reports whether another request is admissible now.
func (r *RateLimiter) CanMakeRequest() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evict()
	return len(r.timestamps) < r.config.MaxRequests
}

// RecordRequest consumes one admission slot. The append only happens
// while still under the limit, so racing recorders cannot overfill the
// window.
func (r *RateLimiter) RecordRequest() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evict()
	if len(r.timestamps) < r.config.MaxRequests {
		r.timestamps = append(r.timestamps, r.now())
		r.used = true
	}
}

// TimeUntilReset returns how long until the oldest recorded request
// leaves the window. Recomputed fresh on every call so repeated calls
// reflect elapsed wall-clock time.
func (r *RateLimiter) TimeUntilReset() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evict()
	if len(r.timestamps) == 0 {
		return 0
	}
	remaining := r.timestamps[0].Add(r.config.Window).Sub(r.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Remaining returns how many admissions are left in the current window.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evict()
	return r.config.MaxRequests - len(r.timestamps)
}

// Reset clears all recorded requests and unfreezes the configuration,
// for test isolation and host-lifecycle teardown.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timestamps = nil
	r.used = false
}

// evict drops timestamps older than now - window. Callers must hold mu.
func (r *RateLimiter) evict() {
	cutoff := r.now().Add(-r.config.Window)
	kept := r.timestamps[:0]
	for _, ts := range r.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	r.timestamps = kept
}
