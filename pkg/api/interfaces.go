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

// Package api pkg/api/interfaces.go
package api

import "time"

//go:generate mockgen -destination=mock_simulator.go -package=api github.com/carverauto/otel-demo/pkg/api WorkSimulator

// WorkSimulator decides the synthetic workload of /metrics-test.
type WorkSimulator interface {
	// ProcessingTime is how long the request pretends to work.
	ProcessingTime() time.Duration
	// OrderCount is the size of the order batch, at least 1.
	OrderCount() int
	Category() string
	// Fail reports whether this request takes the error path.
	Fail() bool
}
