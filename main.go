package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridianlabs-ai/deepresearch/internal/activities"
	"github.com/meridianlabs-ai/deepresearch/internal/config"
	"github.com/meridianlabs-ai/deepresearch/internal/health"
	"github.com/meridianlabs-ai/deepresearch/internal/httpapi"
	"github.com/meridianlabs-ai/deepresearch/internal/llm"
	"github.com/meridianlabs-ai/deepresearch/internal/registry"
	"github.com/meridianlabs-ai/deepresearch/internal/streaming"
	"github.com/meridianlabs-ai/deepresearch/internal/temporal"
	"github.com/meridianlabs-ai/deepresearch/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config with hot reload
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "/app/config/research.yaml"
	}
	cfgMgr, err := config.NewManager(cfgPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfgMgr.Start(ctx); err != nil {
		logger.Warn("Config hot reload unavailable", zap.Error(err))
	}
	defer func() { _ = cfgMgr.Stop() }()
	cfg := cfgMgr.Get()
	if cfg == nil {
		// Start failed before the initial load; fall back to a direct read.
		cfg, err = config.LoadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	if err := tracing.Initialize(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
	}, logger); err != nil {
		logger.Warn("Tracing initialization failed", zap.Error(err))
	}

	// Streaming: in-memory ring plus optional Redis mirror
	streaming.Configure(cfg.Streaming.RingCapacity)
	healthMgr := health.NewManager(logger)
	healthMgr.Register(health.NewLLMServiceChecker(cfg.Capabilities.LLMServiceURL))
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		streaming.Get().SetMirror(streaming.NewRedisMirror(
			rdb, logger, cfg.Streaming.MirrorTTL, cfg.Streaming.MirrorMaxLen))
		healthMgr.Register(health.NewRedisChecker(rdb))
		defer func() { _ = rdb.Close() }()
		logger.Info("Redis event mirror enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// Metrics server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Observability.MetricsPort)
		logger.Info("Metrics server listening", zap.String("address", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// Capability client and activities
	caps := llm.NewClient(llm.Config{
		BaseURL:           cfg.Capabilities.LLMServiceURL,
		SearchURL:         cfg.Capabilities.SearchServiceURL,
		DeliveryURL:       cfg.Capabilities.DeliveryURL,
		Timeout:           cfg.Capabilities.RequestTimeout,
		RequestsPerSecond: cfg.Capabilities.RequestsPerSecond,
	}, logger)
	acts := activities.NewActivities(caps, logger)

	// Temporal client with dial retry
	tc, err := dialTemporal(ctx, cfg.Service.TemporalHost, logger)
	if err != nil {
		return err
	}
	defer tc.Close()

	// Admin HTTP server: health, submit API, event streaming
	adminMux := http.NewServeMux()
	healthMgr.RegisterRoutes(adminMux)
	httpapi.NewStreamingHandler(streaming.Get(), logger).RegisterRoutes(adminMux)
	httpapi.NewResearchHandler(tc, cfg.Service.TaskQueue, cfg.Research, logger).RegisterRoutes(adminMux)

	adminAddr := fmt.Sprintf(":%d", cfg.Service.AdminPort)
	adminSrv := &http.Server{Addr: adminAddr, Handler: adminMux}
	go func() {
		logger.Info("Admin server listening", zap.String("address", adminAddr))
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Admin server failed", zap.Error(err))
		}
	}()

	// Worker
	wk := worker.New(tc, cfg.Service.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     envInt("WORKER_ACT", 10),
		MaxConcurrentWorkflowTaskExecutionSize: envInt("WORKER_WF", 10),
	})
	registry.New(acts, logger).RegisterAll(wk)
	go func() {
		logger.Info("Temporal worker started", zap.String("queue", cfg.Service.TaskQueue))
		if err := wk.Run(worker.InterruptCh()); err != nil {
			logger.Error("Temporal worker exited with error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down research orchestrator")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = adminSrv.Shutdown(shutdownCtx)
	wk.Stop()
	return nil
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}
	return cfg.Build()
}

// dialTemporal waits for the Temporal frontend and dials the SDK client
// with backoff. Temporal often starts after the worker in compose setups.
func dialTemporal(ctx context.Context, host string, logger *zap.Logger) (client.Client, error) {
	for i := 1; i <= 60; i++ {
		c, err := net.DialTimeout("tcp", host, 2*time.Second)
		if err == nil {
			_ = c.Close()
			break
		}
		logger.Warn("Waiting for Temporal TCP endpoint", zap.String("host", host), zap.Int("attempt", i))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	var tc client.Client
	var err error
	for attempt := 1; attempt <= 30; attempt++ {
		tc, err = client.Dial(client.Options{
			HostPort: host,
			Logger:   temporal.NewZapAdapter(logger),
		})
		if err == nil {
			return tc, nil
		}
		delay := time.Duration(attempt) * time.Second
		if delay > 15*time.Second {
			delay = 15 * time.Second
		}
		logger.Warn("Temporal not ready, retrying",
			zap.Int("attempt", attempt), zap.String("host", host), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("dial temporal at %s: %w", host, err)
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
