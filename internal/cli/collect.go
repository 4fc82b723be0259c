package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/pitwall/internal/httputil"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/network"
	"github.com/banshee-data/pitwall/internal/timeutil"
)

type collectOptions struct {
	output      outputFlags
	addr        string
	listen      string
	rcvBuf      int
	logInterval time.Duration

	// onListen reports the bound UDP address; tests use it with port 0.
	onListen func(net.Addr)
}

func newCollectCmd(g *globalFlags) *cobra.Command {
	o := &collectOptions{}
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Receive live UDP telemetry and store it",
		Long: `Binds the telemetry port, decodes every datagram and stores the accepted
rows as CSV files and/or a run in the sqlite store. Rows are flushed on the
configured cadence and when the process receives SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runCollect(ctx, g, o)
		},
	}
	fs := cmd.Flags()
	o.output.register(fs)
	fs.StringVar(&o.addr, "addr", fmt.Sprintf(":%d", network.DefaultPort), "UDP address to receive telemetry on")
	fs.StringVar(&o.listen, "listen", "", "admin HTTP address serving /debug/ (empty disables)")
	fs.IntVar(&o.rcvBuf, "rcvbuf", 4<<20, "UDP socket receive buffer in bytes")
	fs.DurationVar(&o.logInterval, "log-interval", time.Minute, "how often packet statistics are logged")
	return cmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runCollect(ctx context.Context, g *globalFlags, o *collectOptions) (err error) {
	cfg, err := g.loadTuning()
	if err != nil {
		return err
	}
	p, err := o.output.open(ctx, "udp:"+o.addr, time.Now())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close outputs: %w", cerr))
		}
	}()

	clock := timeutil.RealClock{}
	listener := network.NewUDPListener(network.UDPListenerConfig{
		Address:       o.addr,
		RcvBuf:        o.rcvBuf,
		LogInterval:   o.logInterval,
		ReadTimeout:   cfg.GetReadTimeout(),
		FlushInterval: cfg.GetFlushInterval(),
		Stats:         p.stats,
		Handler:       p.router(cfg, clock),
		Flusher:       p.sinks,
		Clock:         clock,
		OnListen:      o.onListen,
	})

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := listener.Start(egCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if o.listen != "" {
		eg.Go(func() error { return serveAdmin(egCtx, o.listen, p) })
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	p.stats.LogStats()
	monitoring.Logf("Collection stopped")
	return nil
}

// serveAdmin runs the admin mux until ctx is done. Without a store only
// the packet counters are served.
func serveAdmin(ctx context.Context, addr string, p *pipeline) error {
	mux := http.NewServeMux()
	stats := func() any { return p.stats.Snapshot() }
	if p.store != nil {
		if err := p.store.AttachAdminRoutes(mux, stats); err != nil {
			return fmt.Errorf("failed to attach admin routes: %w", err)
		}
	} else {
		mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, stats())
		})
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()
	monitoring.Logf("Admin server listening on %s", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Warnf("admin server shutdown error: %v", err)
		return server.Close()
	}
	return nil
}
