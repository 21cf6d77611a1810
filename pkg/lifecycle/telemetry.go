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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/carverauto/otel-demo/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// TelemetryConfig is everything needed to stand up the three signal pipelines.
type TelemetryConfig struct {
	Component      string
	Resource       logger.ResourceConfig
	Logging        *logger.Config
	ExportInterval time.Duration
	Prometheus     bool

	// Extra processors and readers, registered next to the exporters.
	LogProcessors  []sdklog.Processor
	SpanProcessors []sdktrace.SpanProcessor
	MetricReaders  []sdkmetric.Reader
}

// Telemetry owns the providers built by InitTelemetry. LoggerProvider is nil
// when OTel log export is off.
type Telemetry struct {
	Resource       *resource.Resource
	TracerProvider *sdktrace.TracerProvider
	Metrics        *logger.MetricsPipeline
	LoggerProvider *sdklog.LoggerProvider
	Logger         *LoggerImpl
}

// InitTelemetry builds the shared resource, then the log, trace and metric
// providers, and installs them as the otel globals. Export errors raised
// asynchronously by the SDK are logged at warn.
func InitTelemetry(ctx context.Context, cfg TelemetryConfig) (*Telemetry, error) {
	if cfg.Logging == nil {
		cfg.Logging = logger.DefaultConfig()
	}

	res, err := logger.NewResource(ctx, cfg.Resource)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{Resource: res}

	var otelWriter io.Writer

	lp, err := logger.NewLoggerProvider(ctx, cfg.Logging.OTel, res, cfg.LogProcessors...)

	switch {
	case errors.Is(err, logger.ErrOTelLoggingDisabled):
	case err != nil:
		return nil, fmt.Errorf("failed to initialize log pipeline: %w", err)
	default:
		t.LoggerProvider = lp
		global.SetLoggerProvider(lp)
		otelWriter = logger.NewOTelWriter(ctx, lp)
	}

	base, err := NewLoggerImpl(cfg.Logging, otelWriter)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	t.Logger = base
	if cfg.Component != "" {
		t.Logger = base.Component(cfg.Component)
	}

	otelLog := base.Component("otel")
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		otelLog.Warn().Err(err).Msg("OpenTelemetry export error")
	}))

	var otelCfg *logger.OTelConfig
	if cfg.Logging.OTel.Enabled {
		otelCfg = &cfg.Logging.OTel
	}

	t.TracerProvider, err = logger.InitializeTracing(ctx, logger.TracingConfig{
		Resource:       res,
		Logger:         t.Logger,
		OTel:           otelCfg,
		SpanProcessors: cfg.SpanProcessors,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize tracing: %w", err), t.Shutdown(ctx))
	}

	t.Metrics, err = logger.InitializeMetrics(ctx, logger.MetricsConfig{
		Resource:       res,
		OTel:           otelCfg,
		ExportInterval: cfg.ExportInterval,
		Prometheus:     cfg.Prometheus,
		Readers:        cfg.MetricReaders,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize metrics: %w", err), t.Shutdown(ctx))
	}

	if otelCfg != nil && otelCfg.Exporter != logger.ExporterStdout {
		target, _ := logger.ResolveExporterTarget(*otelCfg)
		t.Logger.Info().
			Str("protocol", target.Protocol).
			Str("endpoint", target.Endpoint).
			Str("endpoint_source", target.Source).
			Msg("OpenTelemetry export configured")
	}

	return t, nil
}

// Shutdown flushes and stops every provider that was built, bounded by 10s.
// Logs go last so records emitted during shutdown still leave the process.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}

	if t.Metrics != nil && t.Metrics.Provider != nil {
		if err := t.Metrics.Provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}

	if t.LoggerProvider != nil {
		if err := t.LoggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logger provider: %w", err))
		}
	}

	return errors.Join(errs...)
}
