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

// Package stack validates the declarative deployment under deploy/: the
// collector pipeline that labels logs for Loki and the Grafana datasources
// that link a log line to its trace.
package stack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	CollectorConfigPath = "otel-collector/config.yaml"
	DatasourcesPath     = "grafana/provisioning/datasources/datasources.yaml"
	ComposePath         = "docker-compose.yml"
)

var errEmptyDocument = errors.New("empty document")

// ValidateDir loads and checks every contract under deployDir. All failures
// are reported, not just the first.
func ValidateDir(deployDir string) error {
	var errs []error

	collector, err := LoadCollector(filepath.Join(deployDir, CollectorConfigPath))
	if err != nil {
		errs = append(errs, err)
	} else if err := collector.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", CollectorConfigPath, err))
	}

	datasources, err := LoadDatasources(filepath.Join(deployDir, DatasourcesPath))
	if err != nil {
		errs = append(errs, err)
	} else if err := datasources.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", DatasourcesPath, err))
	}

	compose, err := LoadCompose(filepath.Join(deployDir, ComposePath))
	if err != nil {
		errs = append(errs, err)
	} else if err := compose.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ComposePath, err))
	}

	return errors.Join(errs...)
}

func LoadCollector(path string) (*CollectorConfig, error) {
	var cfg CollectorConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func LoadDatasources(path string) (*DatasourceFile, error) {
	var file DatasourceFile
	if err := loadYAML(path, &file); err != nil {
		return nil, err
	}

	return &file, nil
}

func LoadCompose(path string) (*ComposeFile, error) {
	var file ComposeFile
	if err := loadYAML(path, &file); err != nil {
		return nil, err
	}

	return &file, nil
}

// loadYAML is lenient about unknown keys; the upstream schemas are far larger
// than the parts checked here.
func loadYAML(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(data) == 0 {
		return fmt.Errorf("failed to parse %s: %w", path, errEmptyDocument)
	}

	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}
