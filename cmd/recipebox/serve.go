package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/recipebox/internal/config"
	"github.com/vango-dev/recipebox/internal/errors"
	"github.com/vango-dev/recipebox/pkg/api"
	"github.com/vango-dev/recipebox/pkg/metrics"
	"github.com/vango-dev/recipebox/pkg/page"
	"github.com/vango-dev/recipebox/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		backend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Args:  noArgs,
		Short: "Serve the recipe listing",
		Long: `Serve the recipe listing and live favorite sessions.

Examples:
  recipebox serve
  recipebox serve --port=9000
  recipebox serve --backend=http://api:5000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if backend != "" {
				cfg.Backend.URL = backend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&backend, "backend", "", "Recipe platform API base URL (default from config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg.Log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Spans go to the globally registered provider; exporting is left to
	// the deployment.
	srv, err := newServer(cfg, logger, reg, otel.GetTracerProvider())
	if err != nil {
		return err
	}

	logger.Info("recipebox starting",
		"version", version,
		"url", cfg.URL(),
		"backend", cfg.Backend.URL,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	return g.Wait()
}

// newServer wires the backend client, metrics and tracing into a server.
func newServer(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry, tp trace.TracerProvider) (*server.Server, error) {
	m := metrics.New(metrics.WithRegistry(reg))

	hc, err := api.NewHTTPClient(cfg.BackendTimeout(), cfg.Backend.HTTP2)
	if err != nil {
		return nil, errors.New("E122").WithDetail("backend transport").Wrap(err)
	}
	client, err := api.New(cfg.Backend.URL,
		api.WithHTTPClient(hc),
		api.WithObserver(m.ObserveBackend),
		api.WithLogger(logger),
		api.WithTracerProvider(tp),
	)
	if err != nil {
		return nil, err
	}

	return server.New(server.Config{
		Address:         cfg.Address(),
		Title:           cfg.Name,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		Session: page.SessionConfig{
			NotificationDisplay: cfg.NotificationDisplay(),
			NotificationFade:    cfg.NotificationFade(),
			FlashDelay:          cfg.FlashDelay(),
		},
	}, client,
		server.WithLogger(logger),
		server.WithMetrics(m, reg),
		server.WithTracerProvider(tp),
	), nil
}
