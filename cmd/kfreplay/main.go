// Command kfreplay replays recorded measurement traces through Kalman filters
// and writes the estimates next to them.
//
//	kfreplay -store file:///data -model cv -obs-var 0.5 traces/a.csv.zst traces/b.csv
//	KFREPLAY_STORE=s3://bucket/replays kfreplay -prefix traces/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/observability"
	"github.com/hupe1980/kalman/replay"
	"github.com/hupe1980/kalman/resource"
	"github.com/hupe1980/kalman/trace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "kfreplay:", err)
		os.Exit(2)
	}

	if err := run(ctx, cfg, os.Getenv, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "kfreplay:", err)
		os.Exit(1)
	}
}

func newLogger(cfg config, w io.Writer) *kalman.Logger {
	opts := &slog.HandlerOptions{Level: cfg.logLevel}
	if cfg.logFormat == "json" {
		return kalman.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return kalman.NewLogger(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, cfg config, getenv func(string) string, stdout, stderr io.Writer) error {
	logger := newLogger(cfg, stderr)

	store, err := openURL(ctx, cfg.store, getenv)
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:     cfg.memoryLimit,
		MaxConcurrentReplays: int64(cfg.concurrency),
		IOLimitBytesPerSec:   cfg.ioLimit,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewPrometheusCollector(reg)
	if err := metrics.RegisterController(rc); err != nil {
		return err
	}
	if cfg.metricsAddr != "" {
		shutdown, err := serveMetrics(cfg.metricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	traces := cfg.traces
	if len(traces) == 0 {
		if traces, err = listTraces(ctx, store, cfg.prefix, cfg.outSuffix); err != nil {
			return err
		}
		if len(traces) == 0 {
			return fmt.Errorf("no traces under prefix %q", cfg.prefix)
		}
	}

	jobs := make([]replay.Job, len(traces))
	for i, name := range traces {
		jobs[i] = replay.Job{Trace: name, Model: cfg.model}
		if cfg.outSuffix != "" {
			jobs[i].Output = outputName(name, cfg.outSuffix)
		}
	}

	opts := []replay.Option{
		replay.WithLogger(logger),
		replay.WithMetricsCollector(metrics),
		replay.WithController(rc),
	}
	if cfg.heap {
		opts = append(opts, replay.WithHeapArenas())
	}
	runner := replay.NewRunner(store, opts...)

	logger.InfoContext(ctx, "replay started", "traces", len(jobs), "model", cfg.model.Kind, "store", cfg.store)
	reports, runErr := runner.RunAll(ctx, jobs)
	for _, rep := range reports {
		metrics.ObserveReport(rep)
	}

	if err := writeSummary(stdout, reports); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// outputName strips the compression extension from a trace name, appends
// suffix, and keeps the trace's compression when suffix names none.
func outputName(name, suffix string) string {
	base, ext := name, ""
	for _, e := range []string{".zst", ".zstd", ".lz4"} {
		if strings.HasSuffix(name, e) {
			base, ext = strings.TrimSuffix(name, e), e
			break
		}
	}
	base = strings.TrimSuffix(base, ".csv")
	if trace.CompressionFor(suffix) != trace.None {
		return base + suffix
	}
	return base + suffix + ext
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *kalman.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
