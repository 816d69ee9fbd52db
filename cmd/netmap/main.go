package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/dataset"
	"github.com/dd0wney/cluso-netmap/pkg/engine"
	"github.com/dd0wney/cluso-netmap/pkg/health"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
	"github.com/dd0wney/cluso-netmap/pkg/metrics"
)

var version = "0.3.0"

// Flags shared by every command.
var (
	configPath  string
	dataDir     string
	sourceKind  string
	baseURL     string
	bucket      string
	prefix      string
	metricsAddr string
	logFile     string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "netmap",
	Short:         "netmap explores a relevance network of topics",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.StringVar(&dataDir, "data", "", "dataset directory (implies --source dir)")
	pf.StringVar(&sourceKind, "source", "", "dataset source: dir, http or s3")
	pf.StringVar(&baseURL, "base-url", "", "base URL for --source http")
	pf.StringVar(&bucket, "bucket", "", "bucket for --source s3")
	pf.StringVar(&prefix, "prefix", "", "key prefix for --source s3")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(viewCmd(), layoutCmd(), inspectCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "netmap: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config and applies the flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	switch {
	case dataDir != "":
		cfg.Data.Source = "dir"
		cfg.Data.Dir = dataDir
	case sourceKind != "":
		cfg.Data.Source = sourceKind
	}
	if baseURL != "" {
		cfg.Data.BaseURL = baseURL
	}
	if bucket != "" {
		cfg.Data.S3.Bucket = bucket
	}
	if prefix != "" {
		cfg.Data.S3.Prefix = prefix
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to the configured file, or to fallback when there is
// none. The TUI passes io.Discard so logs never reach the screen.
func newLogger(cfg *config.Config, fallback io.Writer) (logging.Logger, func(), error) {
	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.File == "" {
		return logging.NewJSONLogger(fallback, level), func() {}, nil
	}
	l, closer, err := logging.NewFileLogger(cfg.Logging.File, level)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { closer.Close() }, nil
}

func newLoader(ctx context.Context, cfg *config.Config, logger logging.Logger) (*dataset.Loader, error) {
	src, err := dataset.NewSource(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset source", logging.String("source", src.String()))
	return dataset.NewLoader(src, dataset.FilesFromConfig(cfg.Data.Files), logger), nil
}

// engineHealth backs /readyz with the dataset state and /livez with the
// engine loop.
func engineHealth(eng *engine.Engine) *health.HealthChecker {
	hc := health.NewHealthChecker()

	loaded := health.DatasetCheck(func() health.LoadState {
		s, err := eng.Snapshot()
		if err != nil {
			return health.LoadState{Status: engine.StatusFailed.String(), Err: err}
		}
		return health.LoadState{Status: s.Status.String(), Nodes: len(s.Nodes), Edges: len(s.Edges), Err: s.LoadErr}
	})
	live := health.EngineCheck(func() error {
		_, err := eng.Snapshot()
		return err
	})
	memory := health.MemoryCheck(health.RuntimeMemory)

	hc.RegisterCheck("dataset", loaded)
	hc.RegisterCheck("engine", live)
	hc.RegisterCheck("memory", memory)
	hc.RegisterReadinessCheck("dataset", loaded)
	hc.RegisterLivenessCheck("engine", live)
	return hc
}

// serveMetrics exposes reg and the health endpoints until ctx is done.
// The runtime gauges are refreshed every few seconds.
func serveMetrics(ctx context.Context, addr string, reg *metrics.Registry, hc *health.HealthChecker, logger logging.Logger) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	if hc != nil {
		hc.Mount(mux)
	}
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logging.Error(err))
		}
	}()

	go func() {
		start := time.Now()
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				srv.Shutdown(shutdown)
				return
			case <-ticker.C:
				reg.UpdateSystemMetrics(start)
			}
		}
	}()
}
