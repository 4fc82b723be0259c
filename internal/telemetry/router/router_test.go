package router

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
	"github.com/banshee-data/pitwall/internal/timeutil"
)

func init() {
	monitoring.SetLogger(nil)
}

type recordingSink struct {
	rows map[packet.Kind][][]any
	err  error
}

func (s *recordingSink) Append(kind packet.Kind, row []any) error {
	if s.err != nil {
		return s.err
	}
	if s.rows == nil {
		s.rows = map[packet.Kind][][]any{}
	}
	s.rows[kind] = append(s.rows[kind], row)
	return nil
}

type countingStats struct {
	dropped map[DropReason]int
	samples int
}

func (c *countingStats) AddDropped(r DropReason) {
	if c.dropped == nil {
		c.dropped = map[DropReason]int{}
	}
	c.dropped[r]++
}

func (c *countingStats) AddSamples(_ packet.Kind, n int) { c.samples += n }

func lapPacket(t *testing.T, cars int) []byte {
	t.Helper()
	recs := make([]any, cars)
	for i := range recs {
		recs[i] = &packet.LapData{CarPosition: uint8(i + 1), CurrentLapNum: 3}
	}
	buf, err := packet.Encode(packet.Header{PacketFormat: packet.Format2025, PacketID: uint8(packet.KindLapData)}, nil, recs...)
	require.NoError(t, err)
	return buf
}

func statusPacket(t *testing.T) []byte {
	t.Helper()
	buf, err := packet.Encode(packet.Header{PacketFormat: packet.Format2025, PacketID: uint8(packet.KindCarStatus)}, nil,
		&packet.CarStatus{VisualTyreCompound: 16, TyresAgeLaps: 4})
	require.NoError(t, err)
	return buf
}

func TestRateLimiter(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(1000, 0))
	rl := NewRateLimiter(clock, time.Second, nil)

	assert.True(t, rl.Allow(packet.KindLapData), "first packet is always accepted")
	clock.Advance(100 * time.Millisecond)
	assert.False(t, rl.Allow(packet.KindLapData), "0.1s later is dropped")
	clock.Advance(time.Second)
	assert.True(t, rl.Allow(packet.KindLapData), "1.1s after the first is accepted")

	// The gate is per kind.
	assert.True(t, rl.Allow(packet.KindCarStatus))
}

func TestRateLimiterBoundaryAndOverrides(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	rl := NewRateLimiter(clock, time.Second, map[packet.Kind]time.Duration{
		packet.KindCarTelemetry: 0,
		packet.KindSession:      5 * time.Second,
	})

	require.True(t, rl.Allow(packet.KindLapData))
	clock.Advance(time.Second)
	assert.True(t, rl.Allow(packet.KindLapData), "exactly one interval later is accepted")

	for range 3 {
		assert.True(t, rl.Allow(packet.KindCarTelemetry), "zero interval admits everything")
	}

	require.True(t, rl.Allow(packet.KindSession))
	clock.Advance(4 * time.Second)
	assert.False(t, rl.Allow(packet.KindSession))
	assert.Equal(t, 5*time.Second, rl.Interval(packet.KindSession))
	assert.Equal(t, time.Second, rl.Interval(packet.KindMotion))
}

func TestRouteEmitsOneRowPerCar(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(1700000000, 0))
	sink := &recordingSink{}
	stats := &countingStats{}
	r := New(Config{Sink: sink, Limiter: NewRateLimiter(clock, time.Second, nil), Stats: stats})

	n, err := r.Route(lapPacket(t, 20))
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	rows := sink.rows[packet.KindLapData]
	require.Len(t, rows, 20)
	cols := packet.Columns(packet.KindLapData)
	for i, row := range rows {
		require.Len(t, row, len(cols))
		assert.Equal(t, uint8(i), row[4], "car_index")
		assert.Equal(t, 1700000000.0, row[0], "timestamp from the clock")
	}
	assert.Equal(t, 20, stats.samples)
}

func TestRouteDropsBeforeDecode(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	sink := &recordingSink{}
	stats := &countingStats{}
	r := New(Config{Sink: sink, Limiter: NewRateLimiter(clock, time.Second, nil), Stats: stats})

	_, err := r.Route(lapPacket(t, 2))
	require.NoError(t, err)

	clock.Advance(100 * time.Millisecond)
	n, err := r.Route(lapPacket(t, 2))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrRateLimited)

	// Other kinds are unaffected.
	_, err = r.Route(statusPacket(t))
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = r.Route(lapPacket(t, 2))
	require.NoError(t, err)

	assert.Len(t, sink.rows[packet.KindLapData], 4)
	assert.Len(t, sink.rows[packet.KindCarStatus], 1)
	assert.Equal(t, 1, stats.dropped[DropRateLimited])
}

func TestRouteTruncatedBodyUsesRateSlot(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	sink := &recordingSink{}
	stats := &countingStats{}
	r := New(Config{Sink: sink, Limiter: NewRateLimiter(clock, time.Second, nil), Stats: stats})

	hdr := packet.Header{PacketFormat: packet.Format2025, PacketID: uint8(packet.KindSession)}
	full, err := packet.Encode(hdr, nil, &packet.Session{TotalLaps: 57})
	require.NoError(t, err)

	_, err = r.Route(full[:packet.HeaderSize+3])
	assert.ErrorIs(t, err, packet.ErrShortBody)

	clock.Advance(100 * time.Millisecond)
	_, err = r.Route(full)
	assert.ErrorIs(t, err, ErrRateLimited)

	clock.Advance(time.Second)
	n, err := r.Route(full)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Len(t, sink.rows[packet.KindSession], 1)
	assert.Equal(t, 1, stats.dropped[DropDecode])
	assert.Equal(t, 1, stats.dropped[DropRateLimited])
}

func TestRouteRejects(t *testing.T) {
	sink := &recordingSink{}
	stats := &countingStats{}
	r := New(Config{Sink: sink, Stats: stats})

	_, err := r.Route(make([]byte, 10))
	assert.ErrorIs(t, err, packet.ErrIncompleteHeader)

	lobby := packet.AppendHeader(nil, packet.Header{PacketFormat: packet.Format2025, PacketID: uint8(packet.KindLobbyInfo)})
	_, err = r.Route(lobby)
	assert.ErrorIs(t, err, packet.ErrUnsupportedKind)

	old := packet.AppendHeader(nil, packet.Header{PacketFormat: 2022, PacketID: uint8(packet.KindLapData)})
	_, err = r.Route(old)
	assert.ErrorIs(t, err, packet.ErrUnsupportedFormat)

	shortSession := packet.AppendHeader(nil, packet.Header{PacketFormat: packet.Format2025, PacketID: uint8(packet.KindSession)})
	_, err = r.Route(append(shortSession, 1, 2, 3))
	assert.ErrorIs(t, err, packet.ErrShortBody)

	assert.Empty(t, sink.rows)
	assert.Equal(t, 1, stats.dropped[DropIncomplete])
	assert.Equal(t, 2, stats.dropped[DropUnsupported])
	assert.Equal(t, 1, stats.dropped[DropDecode])
}

func TestRouteSinkError(t *testing.T) {
	boom := errors.New("disk full")
	r := New(Config{Sink: &recordingSink{err: boom}})
	n, err := r.Route(lapPacket(t, 3))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, boom)
}
