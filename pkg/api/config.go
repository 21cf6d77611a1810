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
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/carverauto/otel-demo/pkg/config"
	"github.com/carverauto/otel-demo/pkg/logger"
	"github.com/carverauto/otel-demo/pkg/models"
)

var (
	errInvalidWorkRange  = errors.New("simulation.min_work must not exceed simulation.max_work")
	errMetricsAddrReused = errors.New("metrics.listen_addr must differ from listen_addr")
)

const (
	defaultListenAddr     = ":8080"
	defaultMinWork        = 100 * time.Millisecond
	defaultMaxWork        = 500 * time.Millisecond
	defaultMaxOrders      = 10
	defaultChildDelay     = 50 * time.Millisecond
	defaultExportInterval = 15 * time.Second
)

// Config is the demo-api configuration file.
type Config struct {
	ListenAddr string                `json:"listen_addr" yaml:"listen_addr" validate:"required"`
	CORS       models.CORSConfig     `json:"cors" yaml:"cors"`
	Simulation SimulationConfig      `json:"simulation" yaml:"simulation"`
	Resource   logger.ResourceConfig `json:"resource" yaml:"resource"`
	Logging    *logger.Config        `json:"logging" yaml:"logging"`
	Metrics    MetricsConfig         `json:"metrics" yaml:"metrics"`
}

// SimulationConfig bounds the synthetic work done by /trace and /metrics-test.
type SimulationConfig struct {
	MinWork     logger.Duration `json:"min_work" yaml:"min_work" validate:"gte=0"`
	MaxWork     logger.Duration `json:"max_work" yaml:"max_work" validate:"gte=0"`
	MaxOrders   int             `json:"max_orders" yaml:"max_orders" validate:"gte=1"`
	FailureRate float64         `json:"failure_rate" yaml:"failure_rate" validate:"gte=0,lte=1"`
	ChildDelay  logger.Duration `json:"child_delay" yaml:"child_delay" validate:"gte=0"`
}

type MetricsConfig struct {
	ExportInterval logger.Duration `json:"export_interval" yaml:"export_interval" validate:"gte=0"`
	Prometheus     bool            `json:"prometheus" yaml:"prometheus"`
	// ListenAddr serves /metrics on its own listener; empty mounts it on the API router.
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		ListenAddr: defaultListenAddr,
		CORS: models.CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Simulation: SimulationConfig{
			MinWork:    logger.Duration(defaultMinWork),
			MaxWork:    logger.Duration(defaultMaxWork),
			MaxOrders:  defaultMaxOrders,
			ChildDelay: logger.Duration(defaultChildDelay),
		},
		Resource: logger.DefaultResourceConfig(),
		Logging:  logger.DefaultConfig(),
		Metrics: MetricsConfig{
			ExportInterval: logger.Duration(defaultExportInterval),
		},
	}
}

// Validate checks the rules the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Simulation.MinWork > c.Simulation.MaxWork {
		return fmt.Errorf("%w: %s > %s", errInvalidWorkRange, c.Simulation.MinWork, c.Simulation.MaxWork)
	}

	if c.Metrics.ListenAddr != "" && c.Metrics.ListenAddr == c.ListenAddr {
		return errMetricsAddrReused
	}

	if c.Logging != nil && c.Logging.OTel.Enabled {
		if _, err := logger.NormalizeProtocol(c.Logging.OTel.Protocol); err != nil {
			return err
		}
	}

	return nil
}

// LoadConfig starts from DefaultConfig and overlays path (or the environment
// when CONFIG_SOURCE=env). An empty path outside env mode keeps the defaults.
func LoadConfig(ctx context.Context, path string, log logger.Logger) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" && !strings.EqualFold(os.Getenv("CONFIG_SOURCE"), "env") {
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	if err := config.NewConfig(log).LoadAndValidate(ctx, path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
