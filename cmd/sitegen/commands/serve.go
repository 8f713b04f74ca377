package commands

import (
	"context"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/server"
)

// ServeCmd implements the 'serve' command: build, watch, rebuild, serve.
type ServeCmd struct {
	Addr      string `help:"Listen address (overrides config)"`
	NoMetrics bool   `name:"no-metrics" help:"Disable the /metrics endpoint"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Serve.Addr = s.Addr
	}
	if s.NoMetrics {
		cfg.Serve.Metrics = false
	}

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	var (
		registry *prom.Registry
		recorder metrics.Recorder = metrics.NoopRecorder{}
	)
	if cfg.Serve.Metrics {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	opts := []build.Option{build.WithRecorder(recorder)}
	if store != nil {
		opts = append(opts, build.WithStore(store))
	}
	pipeline := build.NewPipeline(cfg, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, pipeline, store, registry, recorder).Run(ctx)
}
