package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/timeutil"
)

// DefaultPort is the game's default telemetry port.
const DefaultPort = 20777

// PacketStatsInterface provides packet statistics management.
type PacketStatsInterface interface {
	AddPacket(bytes int)
	LogStats()
}

// Handler consumes one datagram. router.Router implements it.
type Handler interface {
	Route(buf []byte) (int, error)
}

// Flusher is flushed on the configured cadence from the receive loop, so it
// never runs concurrently with Handler.
type Flusher interface {
	Flush() error
}

// UDPListener receives telemetry datagrams on one goroutine. Read timeouts
// are loop continuations and the point where flushing is considered.
type UDPListener struct {
	address       string
	rcvBuf        int
	logInterval   time.Duration
	readTimeout   time.Duration
	flushInterval time.Duration
	stats         PacketStatsInterface
	handler       Handler
	flusher       Flusher
	clock         timeutil.Clock
	onListen      func(net.Addr)
}

// UDPListenerConfig contains configuration options for the UDP listener.
type UDPListenerConfig struct {
	Address       string
	RcvBuf        int
	LogInterval   time.Duration
	ReadTimeout   time.Duration
	FlushInterval time.Duration
	Stats         PacketStatsInterface
	Handler       Handler
	Flusher       Flusher
	Clock         timeutil.Clock
	// OnListen is called with the bound address once the socket is open.
	OnListen func(net.Addr)
}

// NewUDPListener creates a new UDP listener with the provided configuration.
func NewUDPListener(config UDPListenerConfig) *UDPListener {
	l := &UDPListener{
		address:       config.Address,
		rcvBuf:        config.RcvBuf,
		logInterval:   config.LogInterval,
		readTimeout:   config.ReadTimeout,
		flushInterval: config.FlushInterval,
		stats:         config.Stats,
		handler:       config.Handler,
		flusher:       config.Flusher,
		clock:         config.Clock,
		onListen:      config.OnListen,
	}
	if l.stats == nil {
		l.stats = noopStats{}
	}
	if l.logInterval == 0 {
		l.logInterval = time.Minute
	}
	if l.readTimeout == 0 {
		l.readTimeout = 100 * time.Millisecond
	}
	if l.clock == nil {
		l.clock = timeutil.RealClock{}
	}
	return l
}

type noopStats struct{}

func (noopStats) AddPacket(int) {}
func (noopStats) LogStats()     {}

// Start binds the socket and runs the receive loop until ctx is done. Only
// setup failures are returned before cancellation; per-datagram problems are
// logged and skipped.
func (l *UDPListener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.address)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP address: %w", err)
	}
	defer conn.Close()

	if l.rcvBuf > 0 {
		if err := conn.SetReadBuffer(l.rcvBuf); err != nil {
			monitoring.Warnf("failed to set UDP receive buffer size to %d: %v", l.rcvBuf, err)
		}
	}
	monitoring.Logf("UDP listener started on %s", conn.LocalAddr())
	if l.onListen != nil {
		l.onListen(conn.LocalAddr())
	}

	go l.startStatsLogging(ctx)

	// F1 datagrams top out around 1.5KB.
	buffer := make([]byte, 2048)
	lastFlush := l.clock.Now()

	for {
		if ctx.Err() != nil {
			monitoring.Logf("UDP listener stopping: %v", ctx.Err())
			l.flush()
			return ctx.Err()
		}

		if l.flushInterval > 0 && l.clock.Since(lastFlush) >= l.flushInterval {
			l.flush()
			lastFlush = l.clock.Now()
		}

		setReadDeadline(conn, l.readTimeout)
		n, from, err := conn.ReadFromUDP(buffer)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			monitoring.Warnf("UDP read error: %v", err)
			continue
		}

		l.stats.AddPacket(n)
		if l.handler == nil {
			continue
		}
		if _, err := l.handler.Route(buffer[:n]); err != nil {
			monitoring.Debugf("packet from %v not routed: %v", from, err)
		}
	}
}

func setReadDeadline(conn net.Conn, timeout time.Duration) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		monitoring.Debugf("failed to set read deadline: %v", err)
	}
}

func (l *UDPListener) flush() {
	if l.flusher == nil {
		return
	}
	if err := l.flusher.Flush(); err != nil {
		monitoring.Warnf("flush failed: %v", err)
	}
}

// startStatsLogging periodically logs packet statistics until ctx is done.
func (l *UDPListener) startStatsLogging(ctx context.Context) {
	ticker := l.clock.NewTicker(l.logInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			l.stats.LogStats()
		}
	}
}
