// Package monitoring holds the process-wide diagnostic loggers. They are
// plain printf-style function variables backed by zap so packages can log
// without threading a logger through every constructor, and tests can mute
// or capture them.
package monitoring

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = zap.Must(zap.NewDevelopment()).Sugar()

var (
	// Logf logs at info level.
	Logf func(format string, v ...interface{}) = base.Infof
	// Warnf logs dropped packets, skipped data and other recoverable problems.
	Warnf func(format string, v ...interface{}) = base.Warnf
	// Debugf logs per-packet detail.
	Debugf func(format string, v ...interface{}) = base.Debugf
)

// SetLogger routes every level through f. Passing nil mutes all logging.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf, Warnf, Debugf = f, f, f
}

// Init replaces the backend with a zap logger at level. format is "json"
// for production encoding or "console" for human-readable output.
func Init(level, format string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	var cfg zap.Config
	switch format {
	case "json", "":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = lvl

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	base = l.Sugar()
	Logf, Warnf, Debugf = base.Infof, base.Warnf, base.Debugf
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = base.Sync()
}
