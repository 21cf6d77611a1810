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

package config

import (
	"encoding/json"
	"fmt"

	"github.com/carverauto/otel-demo/pkg/models"
)

// Redact renders cfg as JSON without the fields tagged `sensitive:"true"`,
// for logging the effective configuration at startup.
func Redact(cfg interface{}) ([]byte, error) {
	safeData, err := models.FilterSensitiveFields(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to redact config: %w", err)
	}

	return json.Marshal(safeData)
}
