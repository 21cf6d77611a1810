/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package app wires configuration, telemetry, and the HTTP servers of the
// demo API.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/carverauto/otel-demo/pkg/api"
	"github.com/carverauto/otel-demo/pkg/config"
	"github.com/carverauto/otel-demo/pkg/lifecycle"
)

const serviceName = "demo-api"

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
	// OnReady receives the bound API address, then the metrics address when a
	// separate metrics listener is configured.
	OnReady func(addrs []net.Addr)
}

// Run boots the demo API and blocks until ctx is cancelled or the process is
// signalled. Telemetry is flushed after the servers stop.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	bootLog := lifecycle.NewLoggerFromWriter(os.Stderr, zerolog.WarnLevel).Component("demo-api-main")

	cfg, err := api.LoadConfig(ctx, opts.ConfigPath, bootLog)
	if err != nil {
		return err
	}

	tel, err := lifecycle.InitTelemetry(ctx, lifecycle.TelemetryConfig{
		Component:      "api",
		Resource:       cfg.Resource,
		Logging:        cfg.Logging,
		ExportInterval: time.Duration(cfg.Metrics.ExportInterval),
		Prometheus:     cfg.Metrics.Prometheus,
	})
	if err != nil {
		return err
	}

	if raw, err := config.Redact(cfg); err == nil {
		tel.Logger.Debug().RawJSON("config", raw).Msg("Loaded configuration")
	}

	serverOpts := []func(*api.APIServer){
		api.WithLogger(tel.Logger),
		api.WithTracerProvider(tel.TracerProvider),
		api.WithMeterProvider(tel.Metrics.Provider),
	}

	separateMetrics := tel.Metrics.Handler != nil && cfg.Metrics.ListenAddr != ""
	if tel.Metrics.Handler != nil && !separateMetrics {
		serverOpts = append(serverOpts, api.WithMetricsHandler(tel.Metrics.Handler))
	}

	apiServer, err := api.NewAPIServer(cfg, serverOpts...)
	if err != nil {
		return errors.Join(err, tel.Shutdown(ctx))
	}

	servers := []*http.Server{apiServer.HTTPServer(cfg.ListenAddr)}
	if separateMetrics {
		servers = append(servers, api.MetricsServer(cfg.Metrics.ListenAddr, tel.Metrics.Handler))
	}

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName: serviceName,
		Servers:     servers,
		Logger:      tel.Logger,
		OnReady:     opts.OnReady,
		OnShutdown: func(ctx context.Context) error {
			tel.Logger.Info().Msg("Flushing telemetry")

			return tel.Shutdown(ctx)
		},
	})
}
