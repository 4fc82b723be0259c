// Package cli wires the pitwall commands: live collection, pcap replay,
// offline analysis and store migrations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/banshee-data/pitwall/internal/config"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/version"
)

const envPrefix = "PITWALL"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	cfgFile   string
	tuning    string
	logLevel  string
	logFormat string
}

// loadTuning returns the JSON tuning file, or an empty Config whose
// accessors supply the defaults.
func (g *globalFlags) loadTuning() (*config.Config, error) {
	if g.tuning == "" {
		return config.Empty(), nil
	}
	return config.LoadConfig(g.tuning)
}

// NewRootCmd builds the command tree. Each call gets its own viper
// instance so tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	v := viper.New()

	root := &cobra.Command{
		Use:           "pitwall",
		Short:         "F1 UDP telemetry collector and race strategy analyser",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cmd, v, g.cfgFile); err != nil {
				return err
			}
			if err := monitoring.Init(g.logLevel, g.logFormat); err != nil {
				return err
			}
			if f := v.ConfigFileUsed(); f != "" {
				monitoring.Debugf("Using config file: %s", f)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.cfgFile, "config", "", "config file (default is $HOME/.pitwall.yml)")
	pf.StringVar(&g.tuning, "tuning", "", "JSON tuning file, e.g. config/pitwall.defaults.json (default: built-in values)")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&g.logFormat, "log-format", "console", "log encoding: console or json")

	root.AddCommand(
		newCollectCmd(g),
		newReplayCmd(g),
		newAnalyzeCmd(g),
		newMigrateCmd(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	defer monitoring.Sync()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// initConfig reads the YAML config file and environment into v, then
// applies them to every flag the user did not set.
func initConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".pitwall")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return bindFlags(cmd, v)
}

// bindFlags binds each cobra flag to its viper key so values come from the
// config file or a PITWALL_ environment variable when not given on the
// command line.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case "config", "help", "version":
			return
		}
		// Environment variables can't have dashes in them.
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, envPrefix+"_"+envVarSuffix); err != nil {
				errs = append(errs, fmt.Errorf("bind env var for %s: %w", f.Name, err))
				return
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("set flag %s from config: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}
