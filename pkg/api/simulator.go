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
	"math/rand/v2"
	"time"
)

//nolint:gochecknoglobals // fixed category set reported on api.orders.processed
var Categories = []string{"electronics", "clothing", "books", "food"}

// RandomSimulator draws every decision from math/rand/v2, which is safe for
// concurrent use.
type RandomSimulator struct {
	minWork     time.Duration
	maxWork     time.Duration
	maxOrders   int
	failureRate float64
}

var _ WorkSimulator = (*RandomSimulator)(nil)

func NewRandomSimulator(cfg SimulationConfig) *RandomSimulator {
	maxOrders := cfg.MaxOrders
	if maxOrders < 1 {
		maxOrders = 1
	}

	return &RandomSimulator{
		minWork:     time.Duration(cfg.MinWork),
		maxWork:     time.Duration(cfg.MaxWork),
		maxOrders:   maxOrders,
		failureRate: cfg.FailureRate,
	}
}

// ProcessingTime is uniform in [minWork, maxWork].
func (s *RandomSimulator) ProcessingTime() time.Duration {
	if s.maxWork <= s.minWork {
		return s.minWork
	}

	return s.minWork + rand.N(s.maxWork-s.minWork+1)
}

// OrderCount is uniform in [1, maxOrders].
func (s *RandomSimulator) OrderCount() int {
	return rand.IntN(s.maxOrders) + 1
}

func (*RandomSimulator) Category() string {
	return Categories[rand.IntN(len(Categories))]
}

func (s *RandomSimulator) Fail() bool {
	return s.failureRate > 0 && rand.Float64() < s.failureRate
}

// FixedSimulator always returns the same decisions.
type FixedSimulator struct {
	Work       time.Duration
	Orders     int
	Kind       string
	ShouldFail bool
}

var _ WorkSimulator = FixedSimulator{}

func (f FixedSimulator) ProcessingTime() time.Duration { return f.Work }
func (f FixedSimulator) OrderCount() int               { return f.Orders }
func (f FixedSimulator) Category() string              { return f.Kind }
func (f FixedSimulator) Fail() bool                    { return f.ShouldFail }

// sleepContext blocks for d, returning early with ctx's error on cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
