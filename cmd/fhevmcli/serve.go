// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/fhevm"
	"github.com/luxfi/fhevm/api"
	"github.com/luxfi/fhevm/keys"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve encryption, public decryption and key lookups over HTTP, with
Prometheus metrics on a separate port and a health check at /health.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry := prometheus.NewRegistry()
		a, err := newApp(cmd, fhevm.WithMetrics(fhevm.NewMetrics(registry)))
		if err != nil {
			return err
		}
		a.log.Info("Initializing fhevm API server",
			log.Stringer("network", a.client.Config()),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := a.client.Init(ctx); err != nil {
			return err
		}
		if err := a.client.CachePublicKey(a.cache, keys.PurposeEncryption); err != nil {
			a.log.Warn("failed to cache public key", log.Err(err))
		}

		mux := http.NewServeMux()
		api.HandleRequests(mux, a.log, api.NewMetrics(registry), a.client, a.cache)
		api.HandleHealthCheckRequest(mux, a.client)

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		errGroup, ctx := errgroup.WithContext(ctx)
		errGroup.Go(func() error {
			return listenAndServe(ctx, a.log, "API", a.cfg.APIPort, mux)
		})
		errGroup.Go(func() error {
			return listenAndServe(ctx, a.log, "metrics", a.cfg.MetricsPort, metricsMux)
		})

		a.log.Info("Initialization complete")
		return errGroup.Wait()
	},
}

func listenAndServe(ctx context.Context, logger log.Logger, name string, port uint16, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Server shutdown failed",
				log.String("server", name),
				log.Err(err),
			)
		}
	}()

	logger.Info("Starting server",
		log.String("server", name),
		log.Int("port", int(port)),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s server: %w", name, err)
	}
	return nil
}
