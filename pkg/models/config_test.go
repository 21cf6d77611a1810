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

	"github.com/stretchr/testify/assert"
)

func TestCORSConfigAllows(t *testing.T) {
	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   bool
	}{
		{name: "wildcard", cfg: CORSConfig{AllowedOrigins: []string{"*"}}, origin: "http://any.example", want: true},
		{name: "exact match", cfg: CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}, origin: "http://localhost:3000", want: true},
		{name: "not listed", cfg: CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}, origin: "http://evil.com"},
		{name: "empty list", cfg: CORSConfig{}, origin: "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Allows(tt.origin))
		})
	}
}
