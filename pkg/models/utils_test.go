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

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exporterSettings struct {
	Endpoint string            `json:"endpoint"`
	Headers  map[string]string `json:"headers" sensitive:"true"`
	Timeout  time.Duration     `json:"timeout"`
	Started  time.Time         `json:"started"`
	internal string
}

func TestFilterSensitiveFields(t *testing.T) {
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		input    interface{}
		expected map[string]interface{}
	}{
		{
			name: "drops sensitive and unexported fields",
			input: exporterSettings{
				Endpoint: "http://collector:4317",
				Headers:  map[string]string{"authorization": "Bearer secret"},
				Timeout:  5 * time.Second,
				Started:  started,
				internal: "hidden",
			},
			expected: map[string]interface{}{
				"endpoint": "http://collector:4317",
				"timeout":  5 * time.Second,
				"started":  started,
			},
		},
		{
			name: "nested pointer and slice",
			input: &struct {
				Name     string             `json:"name"`
				Exporter *exporterSettings  `json:"exporter,omitempty"`
				Extra    []exporterSettings `json:"extra"`
				Skipped  string             `json:"-"`
				NoTag    bool
			}{
				Name:     "demo",
				Exporter: &exporterSettings{Endpoint: "a", Headers: map[string]string{"k": "v"}},
				Extra:    []exporterSettings{{Endpoint: "b"}},
				Skipped:  "x",
				NoTag:    true,
			},
			expected: map[string]interface{}{
				"name": "demo",
				"exporter": map[string]interface{}{
					"endpoint": "a", "timeout": time.Duration(0), "started": time.Time{},
				},
				"extra": []interface{}{
					map[string]interface{}{"endpoint": "b", "timeout": time.Duration(0), "started": time.Time{}},
				},
				"NoTag": true,
			},
		},
		{
			name: "all sensitive",
			input: struct {
				Secret string `json:"secret" sensitive:"true"`
			}{Secret: "s"},
			expected: map[string]interface{}{},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: map[string]interface{}{},
		},
		{
			name:     "nil pointer",
			input:    (*exporterSettings)(nil),
			expected: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterSensitiveFields(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFilterSensitiveFields_NotStruct(t *testing.T) {
	_, err := FilterSensitiveFields([]string{"a"})
	require.ErrorIs(t, err, errNotStruct)

	_, err = FilterSensitiveFields("plain")
	require.ErrorIs(t, err, errNotStruct)
}
