package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

func TestDefaultsFileMatchesGetters(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	empty := Empty()

	if cfg.GetRateInterval() != empty.GetRateInterval() {
		t.Errorf("rate_interval: file %v, getter default %v", cfg.GetRateInterval(), empty.GetRateInterval())
	}
	if cfg.GetFlushInterval() != empty.GetFlushInterval() {
		t.Errorf("flush_interval: file %v, getter default %v", cfg.GetFlushInterval(), empty.GetFlushInterval())
	}
	if cfg.GetReadTimeout() != empty.GetReadTimeout() {
		t.Errorf("read_timeout: file %v, getter default %v", cfg.GetReadTimeout(), empty.GetReadTimeout())
	}
	if cfg.GetPitLoss() != empty.GetPitLoss() || cfg.GetJoinTolerance() != empty.GetJoinTolerance() {
		t.Errorf("pit_loss/join_tolerance differ from getter defaults")
	}
	if cfg.GetMinStintSamples() != 3 || cfg.GetSeason() != 2025 || cfg.GetCarSeed() != empty.GetCarSeed() {
		t.Errorf("analysis defaults differ: %+v", cfg)
	}
	if cfg.GetCompoundScheme() != lookup.SchemeVisual || cfg.GetEmitRetirements() || cfg.GetIndentBraces() {
		t.Errorf("flag defaults differ")
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pitwall.json")
	testJSON := `{
  "rate_interval": "250ms",
  "rate_intervals": {"lap_data": "100ms"},
  "compound_scheme": "actual",
  "pit_loss": 21.5,
  "emit_retirements": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.GetRateInterval(); got != 250*time.Millisecond {
		t.Errorf("GetRateInterval() = %v", got)
	}
	if got := cfg.GetRateIntervals()[packet.KindLapData]; got != 100*time.Millisecond {
		t.Errorf("lap_data override = %v", got)
	}
	if cfg.GetCompoundScheme() != lookup.SchemeActual {
		t.Errorf("scheme = %v", cfg.GetCompoundScheme())
	}
	if cfg.GetPitLoss() != 21.5 || !cfg.GetEmitRetirements() {
		t.Errorf("pit loss %v, retirements %v", cfg.GetPitLoss(), cfg.GetEmitRetirements())
	}
	// Unset fields fall back to defaults.
	if cfg.GetJoinTolerance() != 1.0 {
		t.Errorf("GetJoinTolerance() = %v", cfg.GetJoinTolerance())
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tmpDir := t.TempDir()
	tests := []struct {
		name string
		file string
		body string
	}{
		{"wrong extension", "cfg.yaml", `{}`},
		{"bad json", "bad.json", `{`},
		{"bad duration", "dur.json", `{"flush_interval": "soon"}`},
		{"negative duration", "neg.json", `{"rate_interval": "-1s"}`},
		{"unknown kind", "kind.json", `{"rate_intervals": {"lobby": "1s"}}`},
		{"bad scheme", "scheme.json", `{"compound_scheme": "both"}`},
		{"negative pit loss", "pit.json", `{"pit_loss": -1}`},
		{"zero stint samples", "stint.json", `{"min_stint_samples": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig(%s) succeeded, want error", tt.file)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}
