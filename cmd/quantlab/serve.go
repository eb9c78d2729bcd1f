package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/quantlab/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quantlab HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, log, err := newApp()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := a.Config()
	log.Info("starting quantlab server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("collector", cfg.Collector.Default),
	)

	apiCfg := api.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		APIKey:         cfg.Server.APIKey,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	deps := api.Dependencies{
		Backtester: a.Backtester(),
		Strategies: a.Strategies(),
	}
	if cfg.Metrics.Enabled {
		apiCfg.MetricsPath = cfg.Metrics.Path
		deps.Metrics = a.Metrics()
	}

	server, err := api.NewServer(apiCfg, deps, log.Named("api"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	log.Info("shutting down quantlab server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
