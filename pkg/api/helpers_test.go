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

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carverauto/otel-demo/pkg/lifecycle"
	"github.com/carverauto/otel-demo/pkg/metrics"
)

//nolint:gochecknoglobals // fixed clock for response timestamps
var testNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

type testEnv struct {
	server *APIServer
	logs   *syncBuffer
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

// syncBuffer guards the log buffer for the concurrent request tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func newTestEnv(t *testing.T, sim WorkSimulator, mutate func(*Config)) *testEnv {
	t.Helper()

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}

	env := &testEnv{
		logs:   &syncBuffer{},
		spans:  tracetest.NewSpanRecorder(),
		reader: sdkmetric.NewManualReader(),
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(env.spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(env.reader))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	server, err := NewAPIServer(cfg,
		WithLogger(lifecycle.NewLoggerFromWriter(env.logs, zerolog.InfoLevel).Component("api")),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
		WithPropagators(propagation.TraceContext{}),
		WithSimulator(sim),
		withClock(func() time.Time { return testNow }),
	)
	require.NoError(t, err)

	env.server = server

	return env
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	return e.do(httptest.NewRequest(http.MethodGet, path, http.NoBody))
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rr, req)

	return rr
}

func (e *testEnv) logLines(t *testing.T) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}

	scanner := bufio.NewScanner(bytes.NewBufferString(e.logs.String()))
	for scanner.Scan() {
		entry := make(map[string]interface{})
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))

		out = append(out, entry)
	}

	return out
}

func (e *testEnv) instruments(t *testing.T) *metrics.Instruments {
	t.Helper()

	inst, ok := e.server.recorder.(*metrics.Instruments)
	require.True(t, ok)

	return inst
}

func (e *testEnv) metric(t *testing.T, name string) metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, e.reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	t.Fatalf("metric %s not collected", name)

	return metricdata.Metrics{}
}

// sumWhere adds the int64 sum points whose attributes include every want pair.
func (e *testEnv) sumWhere(t *testing.T, name string, want ...attribute.KeyValue) int64 {
	t.Helper()

	sum, ok := e.metric(t, name).Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", name)

	var total int64

	for _, dp := range sum.DataPoints {
		matched := true

		for _, kv := range want {
			v, found := dp.Attributes.Value(kv.Key)
			if !found || v.Emit() != kv.Value.Emit() {
				matched = false
				break
			}
		}

		if matched {
			total += dp.Value
		}
	}

	return total
}

func (e *testEnv) spanByName(t *testing.T, name string) sdktrace.ReadOnlySpan {
	t.Helper()

	for _, s := range e.spans.Ended() {
		if s.Name() == name {
			return s
		}
	}

	t.Fatalf("span %s not recorded", name)

	return nil
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst))
}

func assertInternalError(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Internal server error","status":500}`, rr.Body.String())
}
