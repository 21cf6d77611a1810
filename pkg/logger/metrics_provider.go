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

package logger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const defaultExportInterval = 15 * time.Second

// MetricsConfig captures the information required to initialise the OTEL metrics pipeline.
type MetricsConfig struct {
	Resource *resource.Resource
	OTel     *OTelConfig
	// ExportInterval controls how often metric data is pushed to the OTLP collector.
	// When zero, the default interval of 15 seconds is used.
	ExportInterval time.Duration
	// Prometheus adds a pull reader served by MetricsPipeline.Handler.
	Prometheus bool
	// Readers are registered alongside the configured exporters.
	Readers []sdkmetric.Reader
}

// MetricsPipeline is the installed MeterProvider plus the optional
// Prometheus scrape handler.
type MetricsPipeline struct {
	Provider *sdkmetric.MeterProvider
	Handler  http.Handler
}

// InitializeMetrics configures the global MeterProvider. With OTel disabled and
// Prometheus off the provider still exists, it just has nowhere to send data.
func InitializeMetrics(ctx context.Context, config MetricsConfig) (*MetricsPipeline, error) {
	var opts []sdkmetric.Option

	if config.Resource != nil {
		opts = append(opts, sdkmetric.WithResource(config.Resource))
	}

	if config.OTel != nil && config.OTel.Enabled {
		exporter, err := newMetricExporter(ctx, config.OTel)
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}

		interval := config.ExportInterval
		if interval <= 0 {
			interval = defaultExportInterval
		}

		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)),
		))
	}

	pipeline := &MetricsPipeline{}

	if config.Prometheus {
		registry := prometheus.NewRegistry()

		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		opts = append(opts, sdkmetric.WithReader(exporter))
		pipeline.Handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	for _, reader := range config.Readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	pipeline.Provider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(pipeline.Provider)

	return pipeline, nil
}
