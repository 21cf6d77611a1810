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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/otel-demo/pkg/logger"
)

func TestRandomSimulatorBounds(t *testing.T) {
	sim := NewRandomSimulator(SimulationConfig{
		MinWork:   logger.Duration(100 * time.Millisecond),
		MaxWork:   logger.Duration(500 * time.Millisecond),
		MaxOrders: 10,
	})

	seen := make(map[string]bool)

	for range 2000 {
		d := sim.ProcessingTime()
		require.GreaterOrEqual(t, d, 100*time.Millisecond)
		require.LessOrEqual(t, d, 500*time.Millisecond)

		n := sim.OrderCount()
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 10)

		seen[sim.Category()] = true

		require.False(t, sim.Fail(), "failure_rate 0 never fails")
	}

	assert.Len(t, seen, len(Categories))
}

func TestRandomSimulatorAlwaysFails(t *testing.T) {
	sim := NewRandomSimulator(SimulationConfig{FailureRate: 1, MaxOrders: 1})

	for range 100 {
		require.True(t, sim.Fail())
		require.Equal(t, 1, sim.OrderCount())
	}
}

func TestRandomSimulatorDegenerateRange(t *testing.T) {
	sim := NewRandomSimulator(SimulationConfig{
		MinWork: logger.Duration(time.Millisecond),
		MaxWork: logger.Duration(time.Millisecond),
	})

	assert.Equal(t, time.Millisecond, sim.ProcessingTime())
	assert.Equal(t, 1, sim.OrderCount(), "max_orders below 1 is clamped")
}

func TestSleepContext(t *testing.T) {
	start := time.Now()
	require.NoError(t, sleepContext(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start = time.Now()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	require.ErrorIs(t, sleepContext(ctx, 0), context.Canceled)
}
