package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elasticwatch/elasticwatch/internal/config"
	"github.com/elasticwatch/elasticwatch/internal/derive"
	"github.com/elasticwatch/elasticwatch/internal/elastic"
	"github.com/elasticwatch/elasticwatch/internal/emitter"
	"github.com/elasticwatch/elasticwatch/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("elasticwatch-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"elasticsearch", cfg.Agent.Elasticsearch.URL,
		"poll_interval", cfg.Agent.PollInterval,
		"extra_metrics", len(cfg.Agent.ExtraMetrics),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := elastic.NewClient(cfg.Agent.Elasticsearch)
	if err != nil {
		slog.Error("failed to build elasticsearch client", "err", err)
		os.Exit(1)
	}

	// The cluster's human-readable name is the agent's identity: fetched
	// once here and cached for the process lifetime, never refreshed.
	clusterName, err := client.ClusterName(ctx)
	if err != nil {
		slog.Error("failed to fetch cluster name — is the cluster reachable?",
			"url", cfg.Agent.Elasticsearch.URL, "err", err)
		os.Exit(1)
	}
	slog.Info("monitoring cluster", "cluster", clusterName)

	// Assemble emitters.
	var sinks emitter.Multi
	if cfg.Agent.Emitter.Endpoint != "" {
		httpEmitter := emitter.NewHTTP(cfg.Agent.Emitter, clusterName)
		go httpEmitter.Run(ctx)
		sinks = append(sinks, httpEmitter)
	}
	if cfg.Agent.Export.Enabled {
		promExport := emitter.NewPromExport(cfg.Agent.Export.TTL)
		go promExport.Run(ctx)
		go serveExport(ctx, cfg.Agent.Export.Listen, promExport)
		sinks = append(sinks, promExport)
	}
	if len(sinks) == 0 {
		slog.Warn("no emitters configured — metrics go to the debug log only")
		sinks = append(sinks, emitter.Log{})
	}

	engine := derive.NewEngine()
	pipe, err := pipeline.New(client, engine, sinks, cfg.Agent.ExtraMetrics)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		os.Exit(1)
	}

	// Watch config file for hot-reload (logs only; a restart applies changes).
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded — restart to apply",
				"poll_interval", updated.Agent.PollInterval)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Poll loop: one cycle immediately, then one per tick. A failed cycle
	// is logged and skipped; counter baselines survive for the next one.
	go func() {
		runCycle(ctx, pipe, time.Now())

		ticker := time.NewTicker(cfg.Agent.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				runCycle(ctx, pipe, t)
			}
		}
	}()

	<-ctx.Done()
	slog.Info("elasticwatch-agent shutting down")
}

func runCycle(ctx context.Context, pipe *pipeline.Pipeline, now time.Time) {
	if err := pipe.Run(ctx, now); err != nil {
		slog.Warn("poll cycle failed — no metrics this interval", "err", err)
	}
}

// serveExport runs the Prometheus exposition endpoint until ctx is cancelled.
func serveExport(ctx context.Context, listen string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: listen, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("prometheus exposition listening", "addr", listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("exposition server stopped", "err", err)
	}
}
