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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	otelTrace "go.opentelemetry.io/otel/trace"
)

// TracingConfig holds the configuration for OpenTelemetry tracing setup
type TracingConfig struct {
	Resource *resource.Resource
	Logger   Logger      // Optional logger for debug output
	OTel     *OTelConfig // Optional; nil or disabled keeps spans in-process
	// SpanProcessors are registered in addition to the exporter's batcher.
	SpanProcessors []trace.SpanProcessor
}

// InitializeTracing sets up the global TracerProvider and W3C propagators.
// Spans are always recorded so trace ids stay valid even when nothing is
// exported; the caller owns tp.Shutdown.
func InitializeTracing(ctx context.Context, config TracingConfig) (*trace.TracerProvider, error) {
	tpOptions := []trace.TracerProviderOption{
		trace.WithSampler(trace.AlwaysSample()),
	}

	if config.Resource != nil {
		tpOptions = append(tpOptions, trace.WithResource(config.Resource))
	}

	if config.OTel != nil && config.OTel.Enabled {
		exporter, err := newSpanExporter(ctx, config.OTel)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		tpOptions = append(tpOptions, trace.WithBatcher(exporter))
	}

	for _, sp := range config.SpanProcessors {
		tpOptions = append(tpOptions, trace.WithSpanProcessor(sp))
	}

	tp := trace.NewTracerProvider(tpOptions...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if config.Logger != nil {
		config.Logger.Debug().
			Bool("exporting", config.OTel != nil && config.OTel.Enabled).
			Msg("Initialized OpenTelemetry tracing")
	}

	return tp, nil
}

// GetTracer returns a tracer for the given name from the global provider.
func GetTracer(name string) otelTrace.Tracer {
	return otel.Tracer(name)
}
