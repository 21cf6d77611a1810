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

// Package models pkg/models/api_types.go
package models

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	// Error message
	Message string `json:"message"`
	// HTTP status code
	Status int `json:"status"`
}

// PingResponse is returned by GET /ping.
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// TraceResponse identifies the trace created by GET /trace.
type TraceResponse struct {
	TraceID string `json:"traceId"`
	SpanID  string `json:"spanId"`
	Message string `json:"message"`
}

// MetricsTestResponse summarizes one simulated order batch.
type MetricsTestResponse struct {
	OrdersProcessed   int    `json:"ordersProcessed"`
	Category          string `json:"category"`
	ProcessingTimeMs  int64  `json:"processingTimeMs"`
	ActiveConnections int64  `json:"activeConnections"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	BuildID string `json:"build_id,omitempty"`
}
