package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/pitwall/internal/analysis/dataset"
	"github.com/banshee-data/pitwall/internal/analysis/race"
	"github.com/banshee-data/pitwall/internal/config"
	"github.com/banshee-data/pitwall/internal/db"
	"github.com/banshee-data/pitwall/internal/fsutil"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/report"
)

type analyzeOptions struct {
	csvDir   string
	dbPath   string
	runID    string
	outDir   string
	plotsDir string
	chart    string
	workers  int

	fsys fsutil.FileSystem
	now  func() time.Time
}

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	o := &analyzeOptions{fsys: fsutil.OSFileSystem{}, now: time.Now}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Derive race simulation parameters from stored telemetry",
		Long: `Loads a session from the sqlite store (when --db is set) or from a CSV
output directory, fits tyre degradation per car and compound, optimises a
strategy per driver and writes the simulator parameter file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), g, o)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&o.csvDir, "csv-dir", "data", "CSV output directory to analyse")
	fs.StringVar(&o.dbPath, "db", "", "sqlite store to analyse instead of CSV files")
	fs.StringVar(&o.runID, "run", "", "run id in the store (default: latest run)")
	fs.StringVar(&o.outDir, "out-dir", ".", "directory for the parameter file")
	fs.StringVar(&o.plotsDir, "plots-dir", "", "write degradation plots here (empty disables)")
	fs.StringVar(&o.chart, "chart", "", "write an HTML strategy chart to this file (empty disables)")
	fs.IntVar(&o.workers, "workers", 0, "concurrent per-driver workers (0 uses GOMAXPROCS)")
	return cmd
}

// raceOptions maps the tuning file onto analysis options.
func raceOptions(cfg *config.Config) race.Options {
	return race.Options{
		Scheme:          cfg.GetCompoundScheme(),
		JoinTolerance:   cfg.GetJoinTolerance(),
		MinStintSamples: cfg.GetMinStintSamples(),
		PitLoss:         cfg.GetPitLoss(),
		Season:          cfg.GetSeason(),
		EmitRetirements: cfg.GetEmitRetirements(),
		CarSeed:         uint64(cfg.GetCarSeed()),
	}
}

func (o *analyzeOptions) load(ctx context.Context) (*dataset.Dataset, string, error) {
	if o.dbPath != "" {
		store, err := db.OpenDB(o.dbPath)
		if err != nil {
			return nil, "", err
		}
		defer store.Close()
		d, runID, err := store.LoadDataset(ctx, o.runID)
		if err != nil {
			return nil, "", err
		}
		return d, fmt.Sprintf("run %s in %s", runID, o.dbPath), nil
	}
	if o.csvDir == "" {
		return nil, "", errors.New("nothing to analyse: set --db or --csv-dir")
	}
	d, err := dataset.LoadCSVDir(o.csvDir)
	if err != nil {
		return nil, "", err
	}
	return d, o.csvDir, nil
}

func runAnalyze(ctx context.Context, g *globalFlags, o *analyzeOptions) error {
	cfg, err := g.loadTuning()
	if err != nil {
		return err
	}
	d, source, err := o.load(ctx)
	if err != nil {
		return err
	}

	opts := raceOptions(cfg)
	opts.Workers = o.workers
	start := time.Now()
	rep, err := race.Analyze(ctx, d, opts)
	if err != nil {
		return err
	}
	monitoring.Logf("Analysed %d cars from %s in %v", len(rep.Cars), source, time.Since(start))

	generated := o.now()
	if err := o.fsys.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(o.outDir, report.INIFileName(generated))
	err = writeFile(o.fsys, path, func(w io.Writer) error {
		return report.WriteINI(w, rep.Groups(), report.INIOptions{
			Generated:    generated,
			Scheme:       opts.Scheme,
			IndentBraces: cfg.GetIndentBraces(),
		})
	})
	if err != nil {
		return err
	}
	monitoring.Logf("Wrote parameter file %s", path)

	if o.plotsDir != "" {
		files, err := report.PlotDegradation(o.fsys, o.plotsDir, rep)
		if err != nil {
			return err
		}
		monitoring.Logf("Wrote %d degradation plots to %s", len(files), o.plotsDir)
	}
	if o.chart != "" {
		if dir := filepath.Dir(o.chart); dir != "." {
			if err := o.fsys.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create chart directory: %w", err)
			}
		}
		if err := writeFile(o.fsys, o.chart, func(w io.Writer) error { return report.StrategyChart(w, rep) }); err != nil {
			return err
		}
		monitoring.Logf("Wrote strategy chart %s", o.chart)
	}
	return nil
}

func writeFile(fsys fsutil.FileSystem, path string, fill func(io.Writer) error) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
