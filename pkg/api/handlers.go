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
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/otel-demo/pkg/correlation"
	srHttp "github.com/carverauto/otel-demo/pkg/http"
	"github.com/carverauto/otel-demo/pkg/metrics"
	"github.com/carverauto/otel-demo/pkg/models"
	"github.com/carverauto/otel-demo/pkg/version"
)

var (
	errSimulatedFailure = errors.New("simulated order processing failure")
	errHandlerPanic     = errors.New("handler panicked")
)

const (
	parentSpanName = "TraceEndpoint"
	childSpanName  = "ChildOperation"

	internalErrorMessage = "Internal server error"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// guard runs h once and turns a returned error or a panic into the 500
// envelope. Every outcome is counted and timed under endpoint.
func (s *APIServer) guard(endpoint string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := metrics.StatusSuccess
		tw := &trackingWriter{}
		w = tw.wrap(w)

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
					panic(rec)
				}

				status = metrics.StatusError
				s.fail(w, r, endpoint, fmt.Errorf("%w: %v", errHandlerPanic, rec), tw.written)
			}

			s.recorder.RecordRequest(r.Context(), endpoint, status, time.Since(start))
		}()

		if err := h(w, r); err != nil {
			status = metrics.StatusError
			s.fail(w, r, endpoint, err, tw.written)
		}
	}
}

// trackingWriter notes whether the handler has started its response.
type trackingWriter struct {
	written bool
}

func (t *trackingWriter) wrap(w http.ResponseWriter) http.ResponseWriter {
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				t.written = true
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				t.written = true
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				t.written = true
				return next(src)
			}
		},
	})
}

// fail logs err and sends the 500 envelope. Once the response has started
// only the log line and span status are left to record.
func (s *APIServer) fail(w http.ResponseWriter, r *http.Request, endpoint string, err error, written bool) {
	trace.SpanFromContext(r.Context()).SetStatus(codes.Error, err.Error())

	s.logger.Error().Ctx(r.Context()).
		Err(err).
		Str("endpoint", endpoint).
		Str("method", r.Method).
		Str("request_id", srHttp.RequestIDFromContext(r.Context())).
		Bool("response_written", written).
		Msg("Request failed")

	if !written {
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
	}
}

// handlePing emits one log line per severity and answers pong.
func (s *APIServer) handlePing(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	s.logger.Info().Ctx(ctx).Str("endpoint", "/ping").Msg("Ping endpoint called")
	s.logger.Warn().Ctx(ctx).Str("endpoint", "/ping").Msg("Sample warning from /ping")
	s.logger.Error().Ctx(ctx).Str("endpoint", "/ping").Msg("Sample error from /ping")

	return s.encodeJSONResponse(w, models.PingResponse{
		Message:   "pong",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

// handleTrace creates TraceEndpoint with one ChildOperation under it. Both log
// lines embed the trace id in their text so Loki can link them to Tempo.
func (s *APIServer) handleTrace(w http.ResponseWriter, r *http.Request) error {
	ctx, span := s.tracer.Start(r.Context(), parentSpanName,
		trace.WithAttributes(attribute.String("endpoint", "/trace")))
	defer span.End()

	sc := span.SpanContext()

	s.logger.Info().Ctx(ctx).Msg(correlation.Embed("Trace endpoint called", sc.TraceID()))

	childCtx, child := s.tracer.Start(ctx, childSpanName,
		trace.WithAttributes(attribute.String("operation", "simulated-work")))

	err := sleepContext(childCtx, time.Duration(s.config.Simulation.ChildDelay))
	if err != nil {
		child.RecordError(err)
		child.SetStatus(codes.Error, err.Error())
	}

	child.End()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("child operation interrupted: %w", err)
	}

	s.logger.Info().Ctx(ctx).Msg(correlation.Embed("Trace endpoint completed", sc.TraceID()))

	return s.encodeJSONResponse(w, models.TraceResponse{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
		Message: "Trace created",
	})
}

// handleMetricsTest simulates an order batch. The active connection gauge
// is raised for the whole request and lowered on every exit path.
func (s *APIServer) handleMetricsTest(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	start := time.Now()

	active := s.recorder.ConnectionOpened(ctx)
	defer s.recorder.ConnectionClosed(ctx)

	if err := sleepContext(ctx, s.simulator.ProcessingTime()); err != nil {
		return fmt.Errorf("simulated work interrupted: %w", err)
	}

	if s.simulator.Fail() {
		return errSimulatedFailure
	}

	orders := s.simulator.OrderCount()
	category := s.simulator.Category()

	for range orders {
		s.recorder.RecordOrder(ctx, category)
	}

	elapsed := time.Since(start)

	s.logger.Info().Ctx(ctx).
		Int("orders", orders).
		Str("category", category).
		Int64("processing_time_ms", elapsed.Milliseconds()).
		Int64("active_connections", active).
		Msg("Processed order batch")

	return s.encodeJSONResponse(w, models.MetricsTestResponse{
		OrdersProcessed:   orders,
		Category:          category,
		ProcessingTimeMs:  elapsed.Milliseconds(),
		ActiveConnections: active,
	})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.encodeJSONResponse(w, models.HealthResponse{
		Status:  "ok",
		Version: version.GetVersion(),
		BuildID: version.GetBuildID(),
	}); err != nil {
		writeError(w, internalErrorMessage, http.StatusInternalServerError)
	}
}
