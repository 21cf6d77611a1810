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

package stack

import (
	"errors"
	"fmt"
)

var errMissingService = errors.New("compose file is missing service")

// RequiredServices are the containers the demo needs to be useful.
var RequiredServices = []string{"demo-api", "otel-collector", "loki", "tempo", "grafana"}

type ComposeFile struct {
	Services map[string]ComposeService `yaml:"services"`
}

type ComposeService struct {
	Image     string   `yaml:"image"`
	Ports     []string `yaml:"ports"`
	Volumes   []string `yaml:"volumes"`
	DependsOn []string `yaml:"depends_on"`
}

func (c *ComposeFile) Validate() error {
	var errs []error

	for _, name := range RequiredServices {
		if _, ok := c.Services[name]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", errMissingService, name))
		}
	}

	for name, svc := range c.Services {
		for _, dep := range svc.DependsOn {
			if _, ok := c.Services[dep]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s depends on %s", errMissingService, name, dep))
			}
		}
	}

	return errors.Join(errs...)
}
