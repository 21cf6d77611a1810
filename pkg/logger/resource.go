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

package logger

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.31.0"

	"github.com/carverauto/otel-demo/pkg/version"
)

const (
	defaultServiceName = "otel-demo-api"
	defaultEnvironment = "development"
	defaultRegion      = "local"
)

// ResourceConfig is the static identity attached to every log, span, and
// metric the process emits.
type ResourceConfig struct {
	ServiceName    string `json:"service_name" yaml:"service_name"`
	ServiceVersion string `json:"service_version" yaml:"service_version"`
	Environment    string `json:"environment" yaml:"environment"`
	Region         string `json:"region" yaml:"region"`
	InstanceID     string `json:"instance_id" yaml:"instance_id"`
}

func DefaultResourceConfig() ResourceConfig {
	return ResourceConfig{
		ServiceName:    getEnvOrDefault("OTEL_SERVICE_NAME", defaultServiceName),
		ServiceVersion: version.GetVersion(),
		Environment:    getEnvOrDefault("DEPLOYMENT_ENVIRONMENT", defaultEnvironment),
		Region:         getEnvOrDefault("CLOUD_REGION", defaultRegion),
	}
}

// withDefaults fills blank fields. The instance id falls back to the hostname,
// then to a random uuid.
func (c ResourceConfig) withDefaults() ResourceConfig {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}

	if c.ServiceVersion == "" {
		c.ServiceVersion = version.GetVersion()
	}

	if c.Environment == "" {
		c.Environment = defaultEnvironment
	}

	if c.Region == "" {
		c.Region = defaultRegion
	}

	if c.InstanceID == "" {
		if host, err := os.Hostname(); err == nil && host != "" {
			c.InstanceID = host
		} else {
			c.InstanceID = uuid.NewString()
		}
	}

	return c
}

func NewResource(ctx context.Context, config ResourceConfig) (*resource.Resource, error) {
	config = config.withDefaults()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.ServiceInstanceID(config.InstanceID),
			semconv.DeploymentEnvironmentName(config.Environment),
			semconv.CloudRegion(config.Region),
		),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}
