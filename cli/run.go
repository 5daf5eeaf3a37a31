package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"speedmeter/config"
	"speedmeter/counter"
	"speedmeter/estimator"
	"speedmeter/metrics"
	"speedmeter/monitor"
	"speedmeter/render"
	"speedmeter/usage"
)

// newSelector 根据配置构造网卡选择器
func newSelector(cfg *config.Config) *counter.Selector {
	return &counter.Selector{
		Preferred:       cfg.Interface,
		ExcludePrefixes: cfg.ExcludePrefixes,
	}
}

// runMonitor 组装计数器来源、估算器、用量存储，然后阻塞运行 monitor
func runMonitor(ctx context.Context, log *slog.Logger, cfg *config.Config, sinks ...render.Sink) error {
	source, err := counter.New(log, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to open counter source: %w", err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Warn("Failed to close counter source", "error", err)
		}
	}()

	est, err := estimator.New(&estimator.Config{
		Interval:  cfg.Interval,
		Window:    cfg.Window,
		Smoothing: cfg.Smoothing,
	})
	if err != nil {
		return fmt.Errorf("failed to create estimator: %w", err)
	}

	repo := usage.NewRepository(log, cfg.UsagePath())
	store, err := repo.Load()
	if err != nil {
		return fmt.Errorf("failed to load usage: %w", err)
	}

	mon, err := monitor.New(log, &monitor.Config{
		Clock:            clockwork.NewRealClock(),
		Source:           source,
		Selector:         newSelector(cfg),
		Estimator:        est,
		Usage:            store,
		Repository:       repo,
		Sinks:            sinks,
		Unit:             cfg.Unit,
		Interval:         cfg.Interval,
		Window:           cfg.Window,
		InterfaceRefresh: cfg.InterfaceRefresh,
		SaveInterval:     cfg.SaveInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}
	return mon.Run(ctx)
}

// startMetricsServer addr 为空时不启动
func startMetricsServer(ctx context.Context, log *slog.Logger, addr string, info BuildInfo) error {
	if addr == "" {
		return nil
	}
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.Date).Set(1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start prometheus metrics server listener: %w", err)
	}
	log.Info("Prometheus metrics server listening", "address", listener.Addr().String())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to serve prometheus metrics", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return nil
}
