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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carverauto/otel-demo/pkg/logger"
)

type memoryLogExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}

	return nil
}

func (*memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (*memoryLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryLogExporter) Records() []sdklog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]sdklog.Record(nil), e.records...)
}

func TestInitTelemetry_LocalPipelines(t *testing.T) {
	ctx := context.Background()

	logs := &memoryLogExporter{}
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()

	tel, err := InitTelemetry(ctx, TelemetryConfig{
		Component: "api",
		Resource:  logger.ResourceConfig{ServiceName: "telemetry-test"},
		Logging: &logger.Config{
			Level:  "info",
			Output: "discard",
			OTel:   logger.OTelConfig{Enabled: false},
		},
		LogProcessors:  []sdklog.Processor{sdklog.NewSimpleProcessor(logs)},
		SpanProcessors: []sdktrace.SpanProcessor{spans},
		MetricReaders:  []sdkmetric.Reader{reader},
	})
	require.NoError(t, err)

	require.NotNil(t, tel.LoggerProvider)
	assert.Nil(t, tel.Metrics.Handler)

	spanCtx, span := tel.TracerProvider.Tracer("test").Start(ctx, "unit")
	tel.Logger.Info().Ctx(spanCtx).Msg("inside span")
	span.End()

	records := logs.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "inside span", records[0].Body().AsString())
	assert.Equal(t, span.SpanContext().TraceID(), records[0].TraceID())
	assert.Equal(t, "api", records[0].InstrumentationScope().Name)

	require.Len(t, spans.Ended(), 1)

	name, ok := tel.Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "telemetry-test", name.AsString())

	assert.Same(t, tel.TracerProvider, otel.GetTracerProvider())

	require.NoError(t, tel.Shutdown(ctx))
}

func TestInitTelemetry_NoOTelLogs(t *testing.T) {
	tel, err := InitTelemetry(context.Background(), TelemetryConfig{
		Logging:    &logger.Config{Output: "discard"},
		Prometheus: true,
	})
	require.NoError(t, err)

	assert.Nil(t, tel.LoggerProvider)
	assert.NotNil(t, tel.Metrics.Handler)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitTelemetry_BadProtocol(t *testing.T) {
	_, err := InitTelemetry(context.Background(), TelemetryConfig{
		Logging: &logger.Config{
			Output: "discard",
			OTel:   logger.OTelConfig{Enabled: true, Protocol: "smoke-signal"},
		},
	})
	require.ErrorIs(t, err, logger.ErrUnsupportedProtocol)
}

func TestTelemetryShutdown_Empty(t *testing.T) {
	tel := &Telemetry{}
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestOTelErrorHandlerLogsAtWarn(t *testing.T) {
	logs := &memoryLogExporter{}

	tel, err := InitTelemetry(context.Background(), TelemetryConfig{
		Logging:       &logger.Config{Output: "discard"},
		LogProcessors: []sdklog.Processor{sdklog.NewSimpleProcessor(logs)},
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	otel.Handle(errors.New("collector unreachable"))

	records := logs.Records()
	require.NotEmpty(t, records)

	last := records[len(records)-1]
	assert.Equal(t, "OpenTelemetry export error", last.Body().AsString())
	assert.Equal(t, "warn", last.SeverityText())
	assert.Equal(t, "otel", last.InstrumentationScope().Name)
}
