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

// Package otlptest runs an in-process OTLP receiver over gRPC and
// HTTP/protobuf and records every export request it is sent.
package otlptest

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
)

var ErrTimeout = errors.New("timed out waiting for telemetry")

const (
	protobufContentType = "application/x-protobuf"
	pollInterval        = 20 * time.Millisecond
	maxBodyBytes        = 16 << 20
)

// Collector stores what it receives; all accessors return copies of the
// slices and are safe to call while exports are in flight.
type Collector struct {
	mu      sync.Mutex
	logs    []*logspb.ResourceLogs
	spans   []*tracepb.ResourceSpans
	metrics []*metricspb.ResourceMetrics

	grpcServer *grpc.Server
	httpServer *http.Server
	grpcAddr   net.Addr
	httpAddr   net.Addr
}

// Start listens on loopback ephemeral ports for both protocols.
func Start(ctx context.Context) (*Collector, error) {
	c := &Collector{}

	var lc net.ListenConfig

	grpcLn, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OTLP/gRPC: %w", err)
	}

	httpLn, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		_ = grpcLn.Close()

		return nil, fmt.Errorf("failed to listen for OTLP/HTTP: %w", err)
	}

	c.grpcAddr = grpcLn.Addr()
	c.httpAddr = httpLn.Addr()

	c.grpcServer = grpc.NewServer()
	collogspb.RegisterLogsServiceServer(c.grpcServer, &logsService{c: c})
	coltracepb.RegisterTraceServiceServer(c.grpcServer, &traceService{c: c})
	colmetricspb.RegisterMetricsServiceServer(c.grpcServer, &metricsService{c: c})

	c.httpServer = &http.Server{
		Handler:           c.httpRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() { _ = c.grpcServer.Serve(grpcLn) }()
	go func() { _ = c.httpServer.Serve(httpLn) }()

	return c, nil
}

// GRPCEndpoint is a URL suitable for an OTLP/gRPC exporter endpoint.
func (c *Collector) GRPCEndpoint() string {
	return "http://" + c.grpcAddr.String()
}

// HTTPEndpoint is the base URL for OTLP/HTTP; exporters append /v1/<signal>.
func (c *Collector) HTTPEndpoint() string {
	return "http://" + c.httpAddr.String()
}

func (c *Collector) Stop() {
	c.grpcServer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_ = c.httpServer.Shutdown(ctx)
}

func (c *Collector) ResourceLogs() []*logspb.ResourceLogs {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*logspb.ResourceLogs(nil), c.logs...)
}

func (c *Collector) ResourceSpans() []*tracepb.ResourceSpans {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*tracepb.ResourceSpans(nil), c.spans...)
}

func (c *Collector) ResourceMetrics() []*metricspb.ResourceMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*metricspb.ResourceMetrics(nil), c.metrics...)
}

// LogRecords flattens every received log record.
func (c *Collector) LogRecords() []*logspb.LogRecord {
	var out []*logspb.LogRecord

	for _, rl := range c.ResourceLogs() {
		for _, sl := range rl.GetScopeLogs() {
			out = append(out, sl.GetLogRecords()...)
		}
	}

	return out
}

// Spans flattens every received span.
func (c *Collector) Spans() []*tracepb.Span {
	var out []*tracepb.Span

	for _, rs := range c.ResourceSpans() {
		for _, ss := range rs.GetScopeSpans() {
			out = append(out, ss.GetSpans()...)
		}
	}

	return out
}

// MetricNames lists the distinct metric names received so far.
func (c *Collector) MetricNames() []string {
	seen := make(map[string]struct{})

	var out []string

	for _, rm := range c.ResourceMetrics() {
		for _, sm := range rm.GetScopeMetrics() {
			for _, m := range sm.GetMetrics() {
				if _, ok := seen[m.GetName()]; ok {
					continue
				}

				seen[m.GetName()] = struct{}{}
				out = append(out, m.GetName())
			}
		}
	}

	return out
}

// WaitFor polls cond until it holds or ctx ends.
func (c *Collector) WaitFor(ctx context.Context, cond func(*Collector) bool) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if cond(c) {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Collector) addLogs(rl []*logspb.ResourceLogs) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logs = append(c.logs, rl...)
}

func (c *Collector) addSpans(rs []*tracepb.ResourceSpans) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.spans = append(c.spans, rs...)
}

func (c *Collector) addMetrics(rm []*metricspb.ResourceMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics = append(c.metrics, rm...)
}

type logsService struct {
	collogspb.UnimplementedLogsServiceServer
	c *Collector
}

func (s *logsService) Export(
	_ context.Context, req *collogspb.ExportLogsServiceRequest,
) (*collogspb.ExportLogsServiceResponse, error) {
	s.c.addLogs(req.GetResourceLogs())

	return &collogspb.ExportLogsServiceResponse{}, nil
}

type traceService struct {
	coltracepb.UnimplementedTraceServiceServer
	c *Collector
}

func (s *traceService) Export(
	_ context.Context, req *coltracepb.ExportTraceServiceRequest,
) (*coltracepb.ExportTraceServiceResponse, error) {
	s.c.addSpans(req.GetResourceSpans())

	return &coltracepb.ExportTraceServiceResponse{}, nil
}

type metricsService struct {
	colmetricspb.UnimplementedMetricsServiceServer
	c *Collector
}

func (s *metricsService) Export(
	_ context.Context, req *colmetricspb.ExportMetricsServiceRequest,
) (*colmetricspb.ExportMetricsServiceResponse, error) {
	s.c.addMetrics(req.GetResourceMetrics())

	return &colmetricspb.ExportMetricsServiceResponse{}, nil
}

func (c *Collector) httpRouter() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/v1/logs", exportHandler(
		func() *collogspb.ExportLogsServiceRequest { return &collogspb.ExportLogsServiceRequest{} },
		func(req *collogspb.ExportLogsServiceRequest) proto.Message {
			c.addLogs(req.GetResourceLogs())
			return &collogspb.ExportLogsServiceResponse{}
		})).Methods(http.MethodPost)

	r.HandleFunc("/v1/traces", exportHandler(
		func() *coltracepb.ExportTraceServiceRequest { return &coltracepb.ExportTraceServiceRequest{} },
		func(req *coltracepb.ExportTraceServiceRequest) proto.Message {
			c.addSpans(req.GetResourceSpans())
			return &coltracepb.ExportTraceServiceResponse{}
		})).Methods(http.MethodPost)

	r.HandleFunc("/v1/metrics", exportHandler(
		func() *colmetricspb.ExportMetricsServiceRequest { return &colmetricspb.ExportMetricsServiceRequest{} },
		func(req *colmetricspb.ExportMetricsServiceRequest) proto.Message {
			c.addMetrics(req.GetResourceMetrics())
			return &colmetricspb.ExportMetricsServiceResponse{}
		})).Methods(http.MethodPost)

	return r
}

func exportHandler[T proto.Message](newReq func() T, handle func(T) proto.Message) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var src io.Reader = r.Body

		if r.Header.Get("Content-Encoding") == "gzip" {
			gz, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer gz.Close()

			src = gz
		}

		body, err := io.ReadAll(io.LimitReader(src, maxBodyBytes))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req := newReq()
		if err := proto.Unmarshal(body, req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp, err := proto.Marshal(handle(req))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", protobufContentType)
		_, _ = w.Write(resp)
	}
}
