package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/network"
	"github.com/banshee-data/pitwall/internal/timeutil"
)

type replayOptions struct {
	output outputFlags
	port   int
}

func newReplayCmd(g *globalFlags) *cobra.Command {
	o := &replayOptions{output: outputFlags{countOnly: true}}
	cmd := &cobra.Command{
		Use:   "replay <capture.pcap>",
		Short: "Feed a pcap or pcapng capture through the collection pipeline",
		Long: `Reads UDP telemetry from a packet capture and stores it exactly as
collect would. Capture timestamps drive the rate limiter and the row
timestamps, so a replay produces the rows a live collection would have.
With --csv-dir and --db both empty the capture is only decoded and counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runReplay(ctx, g, o, args[0])
		},
	}
	fs := cmd.Flags()
	o.output.register(fs)
	fs.IntVar(&o.port, "port", network.DefaultPort, "UDP destination port to replay (0 replays every port)")
	return cmd
}

func runReplay(ctx context.Context, g *globalFlags, o *replayOptions, path string) (err error) {
	cfg, err := g.loadTuning()
	if err != nil {
		return err
	}
	p, err := o.output.open(ctx, "pcap:"+path, time.Now())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close outputs: %w", cerr))
		}
	}()

	clock := timeutil.NewMockClock(time.Time{})
	rt := p.router(cfg, clock)
	flushEvery := cfg.GetFlushInterval()
	var lastFlush time.Time

	res, err := network.ReplayPCAP(ctx, path, o.port, p.stats, func(captured time.Time, payload []byte) {
		clock.Set(captured)
		if _, err := rt.Route(payload); err != nil {
			monitoring.Debugf("replayed payload not routed: %v", err)
		}
		if lastFlush.IsZero() {
			lastFlush = captured
		}
		if flushEvery > 0 && captured.Sub(lastFlush) >= flushEvery {
			if err := p.sinks.Flush(); err != nil {
				monitoring.Warnf("flush failed: %v", err)
			}
			lastFlush = captured
		}
	})
	p.stats.LogStats()
	if errors.Is(err, context.Canceled) {
		monitoring.Warnf("Replay interrupted after %d frames", res.Frames)
		return nil
	}
	if err != nil {
		return err
	}
	if res.Payloads == 0 {
		monitoring.Warnf("No UDP payloads for port %d in %s", o.port, path)
	}
	return nil
}
