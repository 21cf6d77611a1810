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

// Package api provides the HTTP API server for the telemetry demo
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	srHttp "github.com/carverauto/otel-demo/pkg/http"
	"github.com/carverauto/otel-demo/pkg/logger"
	"github.com/carverauto/otel-demo/pkg/metrics"
	"github.com/carverauto/otel-demo/pkg/models"
)

const (
	tracerName    = "github.com/carverauto/otel-demo/pkg/api"
	operationName = "demo-api"

	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// APIServer serves the demo endpoints. Handlers keep no per-request state on
// the server; everything shared is the SDK-synchronized telemetry.
type APIServer struct {
	router  *mux.Router
	handler http.Handler
	config  *Config

	logger         logger.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	propagators    propagation.TextMapPropagator
	tracer         trace.Tracer
	recorder       metrics.Recorder
	simulator      WorkSimulator
	metricsHandler http.Handler
	now            func() time.Time
}

// NewAPIServer creates a new API server instance with the given configuration.
// Providers default to the otel globals and the simulator to a RandomSimulator.
func NewAPIServer(config *Config, options ...func(server *APIServer)) (*APIServer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	s := &APIServer{
		router: mux.NewRouter(),
		config: config,
		now:    time.Now,
	}

	for _, o := range options {
		o(s)
	}

	if s.logger == nil {
		s.logger = logger.NewTestLogger()
	}

	if s.tracerProvider == nil {
		s.tracerProvider = otel.GetTracerProvider()
	}

	if s.meterProvider == nil {
		s.meterProvider = otel.GetMeterProvider()
	}

	if s.propagators == nil {
		s.propagators = otel.GetTextMapPropagator()
	}

	if s.simulator == nil {
		s.simulator = NewRandomSimulator(config.Simulation)
	}

	if s.recorder == nil {
		inst, err := metrics.NewInstruments(s.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create instruments: %w", err)
		}

		s.recorder = inst
	}

	s.tracer = s.tracerProvider.Tracer(tracerName)

	s.setupRoutes()

	return s, nil
}

// WithLogger sets the logger handlers write to.
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// WithTracerProvider sets the provider for handler and server spans.
func WithTracerProvider(tp trace.TracerProvider) func(server *APIServer) {
	return func(server *APIServer) {
		server.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider the instruments are created from.
func WithMeterProvider(mp metric.MeterProvider) func(server *APIServer) {
	return func(server *APIServer) {
		server.meterProvider = mp
	}
}

func WithPropagators(p propagation.TextMapPropagator) func(server *APIServer) {
	return func(server *APIServer) {
		server.propagators = p
	}
}

// WithRecorder replaces the instruments built from the meter provider.
func WithRecorder(r metrics.Recorder) func(server *APIServer) {
	return func(server *APIServer) {
		server.recorder = r
	}
}

func WithSimulator(sim WorkSimulator) func(server *APIServer) {
	return func(server *APIServer) {
		server.simulator = sim
	}
}

// WithMetricsHandler mounts a Prometheus scrape handler at /metrics.
func WithMetricsHandler(h http.Handler) func(server *APIServer) {
	return func(server *APIServer) {
		server.metricsHandler = h
	}
}

func withClock(now func() time.Time) func(server *APIServer) {
	return func(server *APIServer) {
		server.now = now
	}
}

// setupRoutes configures the HTTP routes and wraps the router in the
// middleware chain: server span, request id, access log, CORS.
func (s *APIServer) setupRoutes() {
	s.router.HandleFunc("/ping", s.guard("/ping", s.handlePing)).Methods(http.MethodGet)
	s.router.HandleFunc("/trace", s.guard("/trace", s.handleTrace)).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics-test", s.guard("/metrics-test", s.handleMetricsTest)).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	if s.metricsHandler != nil {
		s.router.Handle("/metrics", s.metricsHandler).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	var h http.Handler = s.router
	h = srHttp.CommonMiddleware(h, s.config.CORS, s.logger)
	h = srHttp.AccessLogMiddleware(s.logger)(h)
	h = srHttp.RequestIDMiddleware(h)
	h = srHttp.TracingMiddleware(operationName, srHttp.TracingOptions{
		TracerProvider: s.tracerProvider,
		MeterProvider:  s.meterProvider,
		Propagators:    s.propagators,
		SkipPaths:      []string{"/healthz", "/metrics"},
	})(h)

	s.handler = h
}

// Handler is the fully wrapped root handler.
func (s *APIServer) Handler() http.Handler {
	return s.handler
}

// HTTPServer returns an http.Server for addr with the standard timeouts.
func (s *APIServer) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  defaultReadTimeout,  // Timeout for reading the entire request, including the body.
		WriteTimeout: defaultWriteTimeout, // Timeout for writing the response.
		IdleTimeout:  defaultIdleTimeout,  // Timeout for idle connections waiting in the Keep-Alive state.
	}
}

// MetricsServer serves only h at /metrics on addr.
func MetricsServer(addr string, h http.Handler) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", h).Methods(http.MethodGet)

	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}
}

// encodeJSONResponse marshals before writing so an encoding failure can still
// produce an error response.
func (*APIServer) encodeJSONResponse(w http.ResponseWriter, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(append(payload, '\n'))

	return nil
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		// Fallback in case encoding fails
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
