package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Viewport.MinScale != 0.5 || cfg.Viewport.MaxScale != 2.0 {
		t.Errorf("scale range = [%v, %v]", cfg.Viewport.MinScale, cfg.Viewport.MaxScale)
	}
	if cfg.Encoding.BaseSize != 5 || cfg.Encoding.SizeFactor != 3.5 {
		t.Errorf("encoding = %+v", cfg.Encoding)
	}
	if cfg.Selection.SettleDelay != 50*time.Millisecond {
		t.Errorf("settle delay = %v", cfg.Selection.SettleDelay)
	}
	if cfg.Physics.RandomizeIterations != 100 || cfg.Physics.RandomExtent != 500 {
		t.Errorf("physics = %+v", cfg.Physics)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netmap.yaml")
	yamlDoc := `
data:
  source: http
  base_url: http://localhost:3000/data
selection:
  settle_delay: 80ms
encoding:
  mode: gradient
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Data.Source != "http" || cfg.Data.BaseURL != "http://localhost:3000/data" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Selection.SettleDelay != 80*time.Millisecond {
		t.Errorf("settle delay = %v", cfg.Selection.SettleDelay)
	}
	if cfg.Encoding.Mode != "gradient" {
		t.Errorf("mode = %q", cfg.Encoding.Mode)
	}
	// untouched sections keep defaults
	if cfg.Data.Files.Matrix != "df_temas_matrix.json" {
		t.Errorf("matrix file = %q", cfg.Data.Files.Matrix)
	}
	if cfg.Viewport.FitZoomOut != 0.7 {
		t.Errorf("fit zoom out = %v", cfg.Viewport.FitZoomOut)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NETMAP_DATA_DIR", "/srv/netmap")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.Dir != "/srv/netmap" || cfg.Data.Source != "dir" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestValidateReportsEverySection(t *testing.T) {
	cfg := Default()
	cfg.Data.Source = "s3"
	cfg.Viewport.MinScale = 3
	cfg.Encoding.FocusColor = "red"
	cfg.Physics.InitialLayout = "spiral"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"data.s3.bucket", "viewport.scale", "encoding.focus_color", "physics.initial_layout"} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %q in %v", want, msg)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Tooltip.Margin = 14

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Tooltip.Margin != 14 {
		t.Errorf("margin = %v", loaded.Tooltip.Margin)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
