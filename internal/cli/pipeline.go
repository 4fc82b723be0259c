package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/banshee-data/pitwall/internal/config"
	"github.com/banshee-data/pitwall/internal/db"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/network"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
	"github.com/banshee-data/pitwall/internal/telemetry/router"
	"github.com/banshee-data/pitwall/internal/telemetry/sink"
	"github.com/banshee-data/pitwall/internal/timeutil"
)

// outputFlags select where routed rows are stored.
type outputFlags struct {
	csvDir string
	dbPath string
	format int

	// countOnly allows running with no output; rows are discarded and only
	// the packet statistics are reported.
	countOnly bool
}

func (o *outputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.csvDir, "csv-dir", "data", "directory for per-kind CSV files (empty disables CSV output)")
	fs.StringVar(&o.dbPath, "db", "", "sqlite store to record the run in (empty disables)")
	fs.IntVar(&o.format, "format", packet.Format2025, "packet format recorded on the run")
}

// pipeline is the sink side of one collection or replay.
type pipeline struct {
	sinks sink.Multi
	store *db.DB
	stats *network.PacketStats
}

// open creates the configured sinks. At least one output is required
// unless countOnly is set.
func (o *outputFlags) open(ctx context.Context, source string, started time.Time) (*pipeline, error) {
	p := &pipeline{stats: network.NewPacketStats()}
	if o.csvDir != "" {
		c, err := sink.NewCSV(o.csvDir, started)
		if err != nil {
			return nil, err
		}
		p.sinks = append(p.sinks, c)
		monitoring.Logf("Writing CSV rows to %s", o.csvDir)
	}
	if o.dbPath != "" {
		store, err := db.NewDB(o.dbPath)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		p.store = store
		s, err := store.NewSink(ctx, source, o.format, started)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.sinks = append(p.sinks, s)
		monitoring.Logf("Recording run %s in %s", s.RunID(), o.dbPath)
	}
	if len(p.sinks) == 0 {
		if !o.countOnly {
			return nil, errors.New("no output configured: set --csv-dir and/or --db")
		}
		p.sinks = sink.Multi{sink.Discard{}}
		monitoring.Logf("No output configured, counting packets only")
	}
	return p, nil
}

// router builds a Router whose rate limiting and row timestamps follow clock.
func (p *pipeline) router(cfg *config.Config, clock timeutil.Clock) *router.Router {
	return router.New(router.Config{
		Sink:    p.sinks,
		Limiter: router.NewRateLimiter(clock, cfg.GetRateInterval(), cfg.GetRateIntervals()),
		Clock:   clock,
		Stats:   p.stats,
	})
}

// Close flushes and closes every sink, then the store.
func (p *pipeline) Close() error {
	err := p.sinks.Close()
	if p.store != nil {
		err = errors.Join(err, p.store.Close())
	}
	return err
}
