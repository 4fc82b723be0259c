package network

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
	"github.com/banshee-data/pitwall/internal/telemetry/router"
)

// PacketStats counts received datagrams, routing drops and emitted rows.
// Interval counters reset on each LogStats; totals never reset.
type PacketStats struct {
	mu        sync.Mutex
	packets   int64
	bytes     int64
	samples   int64
	dropped   map[router.DropReason]int64
	lastReset time.Time

	totals Snapshot
}

// Snapshot is a cumulative view of PacketStats, served on the admin mux.
type Snapshot struct {
	Packets int64                       `json:"packets"`
	Bytes   int64                       `json:"bytes"`
	Samples map[string]int64            `json:"samples"`
	Dropped map[router.DropReason]int64 `json:"dropped"`
}

// NewPacketStats creates a new PacketStats instance.
func NewPacketStats() *PacketStats {
	return &PacketStats{
		dropped:   make(map[router.DropReason]int64),
		lastReset: time.Now(),
		totals: Snapshot{
			Samples: make(map[string]int64),
			Dropped: make(map[router.DropReason]int64),
		},
	}
}

// AddPacket records one received datagram.
func (ps *PacketStats) AddPacket(bytes int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.packets++
	ps.bytes += int64(bytes)
	ps.totals.Packets++
	ps.totals.Bytes += int64(bytes)
}

func (ps *PacketStats) AddDropped(reason router.DropReason) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.dropped[reason]++
	ps.totals.Dropped[reason]++
}

func (ps *PacketStats) AddSamples(kind packet.Kind, n int) {
	if n == 0 {
		return
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.samples += int64(n)
	ps.totals.Samples[kind.String()] += int64(n)
}

// Snapshot returns a copy of the cumulative counters.
func (ps *PacketStats) Snapshot() Snapshot {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := Snapshot{
		Packets: ps.totals.Packets,
		Bytes:   ps.totals.Bytes,
		Samples: make(map[string]int64, len(ps.totals.Samples)),
		Dropped: make(map[router.DropReason]int64, len(ps.totals.Dropped)),
	}
	for k, v := range ps.totals.Samples {
		out.Samples[k] = v
	}
	for k, v := range ps.totals.Dropped {
		out.Dropped[k] = v
	}
	return out
}

// interval is what LogStats reports for one logging window.
type interval struct {
	packets, bytes, samples int64
	dropped                 map[router.DropReason]int64
	duration                time.Duration
}

func (ps *PacketStats) getAndReset() interval {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := time.Now()
	iv := interval{
		packets:  ps.packets,
		bytes:    ps.bytes,
		samples:  ps.samples,
		dropped:  ps.dropped,
		duration: now.Sub(ps.lastReset),
	}
	ps.packets, ps.bytes, ps.samples = 0, 0, 0
	ps.dropped = make(map[router.DropReason]int64)
	ps.lastReset = now
	return iv
}

// LogStats logs per-second rates since the previous call and resets the
// interval counters.
func (ps *PacketStats) LogStats() {
	iv := ps.getAndReset()
	if iv.packets == 0 && len(iv.dropped) == 0 {
		return
	}
	secs := iv.duration.Seconds()
	if secs <= 0 {
		secs = 1
	}
	msg := fmt.Sprintf("Telemetry stats (/sec): %s, %.1f packets, %s rows",
		humanize.Bytes(uint64(float64(iv.bytes)/secs)),
		float64(iv.packets)/secs,
		humanize.Comma(int64(float64(iv.samples)/secs)))
	if len(iv.dropped) > 0 {
		msg += "; dropped " + formatDrops(iv.dropped)
	}
	monitoring.Logf("%s", msg)
}

func formatDrops(d map[router.DropReason]int64) string {
	reasons := make([]string, 0, len(d))
	for r := range d {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = fmt.Sprintf("%s=%s", r, humanize.Comma(d[router.DropReason(r)]))
	}
	return strings.Join(parts, " ")
}
