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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProtocol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"", ProtocolGRPC, false},
		{"grpc", ProtocolGRPC, false},
		{" GRPC ", ProtocolGRPC, false},
		{"http", ProtocolHTTP, false},
		{"http/protobuf", ProtocolHTTP, false},
		{"http/json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeProtocol(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedProtocol)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveExporterTarget_Precedence(t *testing.T) {
	tests := []struct {
		name         string
		config       OTelConfig
		envEndpoint  string
		envProtocol  string
		wantEndpoint string
		wantProtocol string
		wantSource   string
		wantInsecure bool
	}{
		{
			name:         "hardcoded grpc default",
			wantEndpoint: "localhost:4317",
			wantProtocol: ProtocolGRPC,
			wantSource:   EndpointSourceDefault,
			wantInsecure: true,
		},
		{
			name:         "hardcoded http default follows protocol",
			config:       OTelConfig{Protocol: "http"},
			wantEndpoint: "localhost:4318",
			wantProtocol: ProtocolHTTP,
			wantSource:   EndpointSourceDefault,
			wantInsecure: true,
		},
		{
			name:         "env beats default",
			envEndpoint:  "http://otel-collector:4317",
			wantEndpoint: "otel-collector:4317",
			wantProtocol: ProtocolGRPC,
			wantSource:   EndpointSourceEnv,
			wantInsecure: true,
		},
		{
			name:         "config beats env",
			config:       OTelConfig{Endpoint: "collector.internal:4317"},
			envEndpoint:  "http://otel-collector:4317",
			wantEndpoint: "collector.internal:4317",
			wantProtocol: ProtocolGRPC,
			wantSource:   EndpointSourceConfig,
		},
		{
			name:         "env protocol used when config silent",
			envProtocol:  "http/protobuf",
			wantEndpoint: "localhost:4318",
			wantProtocol: ProtocolHTTP,
			wantSource:   EndpointSourceDefault,
			wantInsecure: true,
		},
		{
			name:         "config protocol beats env protocol",
			config:       OTelConfig{Protocol: "grpc"},
			envProtocol:  "http/protobuf",
			wantEndpoint: "localhost:4317",
			wantProtocol: ProtocolGRPC,
			wantSource:   EndpointSourceDefault,
			wantInsecure: true,
		},
		{
			name:         "https keeps TLS",
			config:       OTelConfig{Endpoint: "https://otlp.example.com"},
			wantEndpoint: "otlp.example.com",
			wantProtocol: ProtocolGRPC,
			wantSource:   EndpointSourceConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envOTLPEndpoint, tt.envEndpoint)
			t.Setenv(envOTLPProtocol, tt.envProtocol)

			target, err := ResolveExporterTarget(tt.config)
			require.NoError(t, err)

			assert.Equal(t, tt.wantEndpoint, target.Endpoint)
			assert.Equal(t, tt.wantProtocol, target.Protocol)
			assert.Equal(t, tt.wantSource, target.Source)
			assert.Equal(t, tt.wantInsecure, target.Insecure)
		})
	}
}

func TestResolveExporterTarget_HTTPSignalPaths(t *testing.T) {
	target, err := ResolveExporterTarget(OTelConfig{
		Protocol: ProtocolHTTP,
		Endpoint: "http://gateway:4318/otlp/",
	})
	require.NoError(t, err)

	assert.Equal(t, "gateway:4318", target.Endpoint)
	assert.Equal(t, "/otlp/v1/logs", target.signalPath("logs"))
	assert.Equal(t, "/otlp/v1/traces", target.signalPath("traces"))

	target, err = ResolveExporterTarget(OTelConfig{Protocol: ProtocolHTTP})
	require.NoError(t, err)
	assert.Equal(t, "/v1/metrics", target.signalPath("metrics"))
}

func TestResolveExporterTarget_Invalid(t *testing.T) {
	t.Setenv(envOTLPEndpoint, "")
	t.Setenv(envOTLPProtocol, "")

	_, err := ResolveExporterTarget(OTelConfig{Endpoint: "ftp://collector:21"})
	require.ErrorIs(t, err, errInvalidEndpoint)

	_, err = ResolveExporterTarget(OTelConfig{Endpoint: "http://"})
	require.ErrorIs(t, err, errInvalidEndpoint)

	_, err = ResolveExporterTarget(OTelConfig{Protocol: "thrift"})
	require.ErrorIs(t, err, ErrUnsupportedProtocol)
}

func TestSetupTLSConfig_MissingCA(t *testing.T) {
	_, err := setupTLSConfig(&TLSConfig{CAFile: "/nonexistent/ca.pem"})
	require.Error(t, err)
}
