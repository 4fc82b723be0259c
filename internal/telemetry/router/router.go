// Package router turns raw datagrams into rows for a sink: it decodes the
// header, applies the per-kind rate limit, decodes the body and appends one
// row per car record.
package router

import (
	"errors"
	"fmt"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
	"github.com/banshee-data/pitwall/internal/timeutil"
)

// ErrRateLimited is returned for packets dropped by the rate limiter.
var ErrRateLimited = errors.New("rate limited")

// DropReason classifies why a datagram produced no rows.
type DropReason string

const (
	DropIncomplete  DropReason = "incomplete"
	DropUnsupported DropReason = "unsupported"
	DropRateLimited DropReason = "rate_limited"
	DropDecode      DropReason = "decode"
	DropSink        DropReason = "sink"
)

// Sink receives accepted rows. Implementations live in the sink and db packages.
type Sink interface {
	Append(kind packet.Kind, row []any) error
}

// Counter records routing outcomes. network.PacketStats implements it.
type Counter interface {
	AddDropped(reason DropReason)
	AddSamples(kind packet.Kind, n int)
}

type noopCounter struct{}

func (noopCounter) AddDropped(DropReason)       {}
func (noopCounter) AddSamples(packet.Kind, int) {}

// Config wires a Router.
type Config struct {
	Sink    Sink
	Limiter *RateLimiter
	Clock   timeutil.Clock // receipt timestamps; defaults to the limiter's clock
	Stats   Counter
}

// Router is not safe for concurrent use; it is driven by one receive loop.
type Router struct {
	sink    Sink
	limiter *RateLimiter
	clock   timeutil.Clock
	stats   Counter
}

// New returns a Router. A nil limiter admits every packet.
func New(cfg Config) *Router {
	r := &Router{
		sink:    cfg.Sink,
		limiter: cfg.Limiter,
		clock:   cfg.Clock,
		stats:   cfg.Stats,
	}
	if r.clock == nil {
		if r.limiter != nil {
			r.clock = r.limiter.clock
		} else {
			r.clock = timeutil.RealClock{}
		}
	}
	if r.stats == nil {
		r.stats = noopCounter{}
	}
	return r
}

// Route processes one datagram and returns how many rows reached the sink.
// A non-nil error explains a drop; none of them are fatal to the caller.
// The rate limiter admits a packet before its body is decoded, so a
// truncated body still uses that kind's slot for the interval.
func (r *Router) Route(buf []byte) (int, error) {
	h, n, err := packet.DecodeHeader(buf)
	if err != nil {
		r.stats.AddDropped(DropIncomplete)
		return 0, err
	}
	if err := packet.Supported(h); err != nil {
		r.stats.AddDropped(DropUnsupported)
		if !errors.Is(err, packet.ErrUnsupportedKind) {
			monitoring.Debugf("dropping packet: %v", err)
		}
		return 0, err
	}
	kind := h.Kind()
	if r.limiter != nil && !r.limiter.Allow(kind) {
		r.stats.AddDropped(DropRateLimited)
		return 0, fmt.Errorf("%s: %w", kind, ErrRateLimited)
	}

	samples, err := packet.DecodeBody(h, buf[n:], r.clock.Now())
	if err != nil {
		r.stats.AddDropped(DropDecode)
		monitoring.Warnf("dropping %s packet (format %d, %d bytes): %v", kind, h.PacketFormat, len(buf), err)
		return 0, err
	}

	written := 0
	for _, s := range samples {
		if err := r.sink.Append(kind, s.Row()); err != nil {
			r.stats.AddDropped(DropSink)
			r.stats.AddSamples(kind, written)
			return written, fmt.Errorf("append %s row: %w", kind, err)
		}
		written++
	}
	r.stats.AddSamples(kind, written)
	return written, nil
}
