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

// Package metrics holds the process-wide OpenTelemetry instruments the demo
// endpoints record into.
package metrics

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/otel-demo/pkg/version"
)

const (
	MeterName = "github.com/carverauto/otel-demo"

	RequestsName          = "api.requests"
	RequestDurationName   = "api.request.duration"
	ActiveConnectionsName = "api.active_connections"
	OrdersProcessedName   = "api.orders.processed"

	AttrEndpoint = "endpoint"
	AttrStatus   = "status"
	AttrCategory = "category"

	StatusSuccess = "success"
	StatusError   = "error"
)

//nolint:gochecknoglobals // bucket layout for second-valued latencies
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Instruments is safe for concurrent use; the SDK synchronizes the
// instruments and inFlight mirrors the up-down counter so handlers can report it.
type Instruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
	orders   metric.Int64Counter

	inFlight atomic.Int64
}

var _ Recorder = (*Instruments)(nil)

func NewInstruments(provider metric.MeterProvider) (*Instruments, error) {
	meter := provider.Meter(MeterName, metric.WithInstrumentationVersion(version.GetVersion()))

	requests, err := meter.Int64Counter(RequestsName,
		metric.WithDescription("Requests handled, by endpoint and outcome"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", RequestsName, err)
	}

	duration, err := meter.Float64Histogram(RequestDurationName,
		metric.WithDescription("Request handling time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", RequestDurationName, err)
	}

	active, err := meter.Int64UpDownCounter(ActiveConnectionsName,
		metric.WithDescription("Requests currently inside /metrics-test"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s gauge: %w", ActiveConnectionsName, err)
	}

	orders, err := meter.Int64Counter(OrdersProcessedName,
		metric.WithDescription("Synthetic orders processed, by category"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", OrdersProcessedName, err)
	}

	return &Instruments{
		requests: requests,
		duration: duration,
		active:   active,
		orders:   orders,
	}, nil
}

// RecordRequest counts one request and records its duration in seconds.
func (i *Instruments) RecordRequest(ctx context.Context, endpoint, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrEndpoint, endpoint),
		attribute.String(AttrStatus, status),
	)

	i.requests.Add(ctx, 1, attrs)
	i.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// ConnectionOpened returns the in-flight count including this connection.
func (i *Instruments) ConnectionOpened(ctx context.Context) int64 {
	i.active.Add(ctx, 1)

	return i.inFlight.Add(1)
}

func (i *Instruments) ConnectionClosed(ctx context.Context) int64 {
	i.active.Add(ctx, -1)

	return i.inFlight.Add(-1)
}

func (i *Instruments) ActiveConnections() int64 {
	return i.inFlight.Load()
}

func (i *Instruments) RecordOrder(ctx context.Context, category string) {
	i.orders.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrCategory, category)))
}
