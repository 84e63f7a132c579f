package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lababa/lababa/internal/api"
	"github.com/lababa/lababa/internal/bootstrap"
	"github.com/lababa/lababa/internal/stats"
	"github.com/lababa/lababa/internal/support/sysinfo"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Lababa API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(false)

	db, err := bootstrap.OpenDatabase(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		return err
	}

	resolvedSigningKey, signingKeySource, err := bootstrap.ResolveJWTSigningKey(ctx, db.Store.Settings(), cfg.Auth.SigningKey, nil)
	if err != nil {
		return err
	}
	cfg.Auth.SigningKey = resolvedSigningKey
	logger.Info("jwt signing key loaded", "source", string(signingKeySource))

	infra, err := bootstrap.BuildInfrastructure(cfg, stats.SystemClock, logger)
	if err != nil {
		return err
	}
	services := bootstrap.BuildServices(cfg, db.Store, infra, stats.SystemClock, logger)

	scheduler, err := bootstrap.BuildScheduler(cfg, services, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := api.NewRouter(
		logger,
		services,
		cfg.Metrics,
		api.WithHTTPConfig(cfg.HTTP),
		api.WithRegistry(registry),
		api.WithHealth(sysinfo.New(""), db.Ping),
	)

	server := bootstrap.NewHTTPServer(cfg.HTTP, router)
	serveErr := bootstrap.Serve(ctx, server, nil, cfg.HTTP.ShutdownTimeout, logger.With("driver", db.Driver))

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	return serveErr
}
