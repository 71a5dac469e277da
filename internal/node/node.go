// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blinklabs-io/numbat"
	"github.com/blinklabs-io/numbat/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Run runs the node until SIGINT or SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	return RunContext(signalCtx, cfg, logger, prometheus.DefaultRegisterer)
}

// RunContext runs the node and the metrics listener until ctx is done or
// either of them fails
func RunContext(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	registry prometheus.Registerer,
) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	g, err := cfg.LoadGenesis()
	if err != nil {
		return fmt.Errorf("failed to load genesis: %w", err)
	}
	blockInterval, err := cfg.BlockIntervalDuration()
	if err != nil {
		return err
	}
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	n, err := numbat.New(
		numbat.NewConfig(
			numbat.WithLogger(logger),
			numbat.WithGenesis(g),
			numbat.WithDatabasePath(cfg.DatabasePath),
			numbat.WithBlobPlugin(cfg.BlobPlugin),
			numbat.WithMetadataPlugin(cfg.MetadataPlugin),
			numbat.WithBlockInterval(blockInterval),
			numbat.WithAPIListenAddress(cfg.ApiListenAddress()),
			numbat.WithDevMode(cfg.DevMode),
			numbat.WithShutdownTimeout(shutdownTimeout),
			numbat.WithPrometheusRegistry(registry),
			numbat.WithTracing(cfg.Tracing),
			numbat.WithTracingStdout(cfg.TracingStdout),
		),
	)
	if err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if cfg.MetricsPort > 0 {
		metricsServer := newMetricsServer(cfg, registry)
		logger.Info(
			"serving prometheus metrics on "+metricsServer.Addr,
			"component", "node",
		)
		eg.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to start metrics listener: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				shutdownTimeout,
			)
			defer cancel()
			//nolint:contextcheck
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
			return nil
		})
	}
	eg.Go(func() error {
		return n.Run(egCtx)
	})

	err = eg.Wait()
	if err != nil {
		logger.Error("node error", "error", err)
		return err
	}
	logger.Info("shutdown complete", "component", "node")
	return nil
}

func newMetricsServer(
	cfg *config.Config,
	registry prometheus.Registerer,
) *http.Server {
	// Metrics and debug listener
	mux := http.NewServeMux()
	mux.Handle("/debug/", http.DefaultServeMux)
	if gatherer, ok := registry.(prometheus.Gatherer); ok {
		mux.Handle(
			"/metrics",
			promhttp.InstrumentMetricHandler(
				registry,
				promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
			),
		)
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return &http.Server{
		Addr: cfg.BindAddr + ":" + strconv.FormatUint(
			uint64(cfg.MetricsPort),
			10,
		),
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
