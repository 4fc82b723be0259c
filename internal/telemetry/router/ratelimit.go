package router

import (
	"time"

	"github.com/banshee-data/pitwall/internal/telemetry/packet"
	"github.com/banshee-data/pitwall/internal/timeutil"
)

// RateLimiter admits at most one packet per kind per interval. It is owned
// by a single Router and only touched from its receive loop, so it holds no
// lock.
type RateLimiter struct {
	clock    timeutil.Clock
	interval time.Duration
	perKind  map[packet.Kind]time.Duration
	last     map[packet.Kind]time.Time
}

// NewRateLimiter returns a limiter with a default interval and optional
// per-kind overrides. A zero interval admits everything.
func NewRateLimiter(clock timeutil.Clock, interval time.Duration, overrides map[packet.Kind]time.Duration) *RateLimiter {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	perKind := make(map[packet.Kind]time.Duration, len(overrides))
	for k, d := range overrides {
		perKind[k] = d
	}
	return &RateLimiter{
		clock:    clock,
		interval: interval,
		perKind:  perKind,
		last:     make(map[packet.Kind]time.Time),
	}
}

// Interval returns the spacing enforced for kind.
func (r *RateLimiter) Interval(kind packet.Kind) time.Duration {
	if d, ok := r.perKind[kind]; ok {
		return d
	}
	return r.interval
}

// Allow reports whether a packet of kind may be processed now, and if so
// records now as that kind's last accepted time. The first packet of each
// kind is always admitted.
func (r *RateLimiter) Allow(kind packet.Kind) bool {
	now := r.clock.Now()
	if last, ok := r.last[kind]; ok && now.Sub(last) < r.Interval(kind) {
		return false
	}
	r.last[kind] = now
	return true
}
