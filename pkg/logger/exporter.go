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
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"

	// Used when neither the config nor OTEL_EXPORTER_OTLP_ENDPOINT names a collector.
	DefaultGRPCEndpoint = "http://localhost:4317"
	DefaultHTTPEndpoint = "http://localhost:4318"

	EndpointSourceConfig  = "config"
	EndpointSourceEnv     = "env"
	EndpointSourceDefault = "default"

	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPProtocol = "OTEL_EXPORTER_OTLP_PROTOCOL"
)

var (
	ErrUnsupportedProtocol = errors.New("unsupported OTLP protocol")
	ErrUnsupportedExporter = errors.New("unsupported telemetry exporter")
	errInvalidEndpoint     = errors.New("invalid OTLP endpoint")
	errFailedToParseCACert = errors.New("failed to parse CA certificate")
)

// ExporterTarget is the resolved destination shared by the log, trace, and
// metric exporters.
type ExporterTarget struct {
	Protocol string
	// Endpoint is host:port.
	Endpoint string
	// URLPath is a base path; HTTP exporters append /v1/<signal>.
	URLPath  string
	Insecure bool
	Source   string
}

// NormalizeProtocol maps accepted spellings onto ProtocolGRPC or ProtocolHTTP.
// An empty value means gRPC.
func NormalizeProtocol(protocol string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", ProtocolGRPC:
		return ProtocolGRPC, nil
	case "http", ProtocolHTTP:
		return ProtocolHTTP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProtocol, protocol)
	}
}

// ResolveExporterTarget applies endpoint precedence: the configured value,
// then OTEL_EXPORTER_OTLP_ENDPOINT, then the hardcoded local collector.
func ResolveExporterTarget(config OTelConfig) (ExporterTarget, error) {
	protocol := config.Protocol
	if protocol == "" {
		protocol = os.Getenv(envOTLPProtocol)
	}

	protocol, err := NormalizeProtocol(protocol)
	if err != nil {
		return ExporterTarget{}, err
	}

	raw, source := strings.TrimSpace(config.Endpoint), EndpointSourceConfig

	if raw == "" {
		if env := strings.TrimSpace(os.Getenv(envOTLPEndpoint)); env != "" {
			raw, source = env, EndpointSourceEnv
		}
	}

	if raw == "" {
		raw, source = defaultEndpoint(protocol), EndpointSourceDefault
	}

	target := ExporterTarget{
		Protocol: protocol,
		Insecure: config.Insecure,
		Source:   source,
	}

	if !strings.Contains(raw, "://") {
		target.Endpoint = raw

		return target, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ExporterTarget{}, fmt.Errorf("%w: %q", errInvalidEndpoint, raw)
	}

	switch u.Scheme {
	case "http":
		target.Insecure = true
	case "https":
	default:
		return ExporterTarget{}, fmt.Errorf("%w: unsupported scheme %q", errInvalidEndpoint, u.Scheme)
	}

	target.Endpoint = u.Host
	target.URLPath = strings.TrimSuffix(u.Path, "/")

	return target, nil
}

func defaultEndpoint(protocol string) string {
	if protocol == ProtocolHTTP {
		return DefaultHTTPEndpoint
	}

	return DefaultGRPCEndpoint
}

func (t ExporterTarget) signalPath(signal string) string {
	return t.URLPath + "/v1/" + signal
}

func checkExporter(config *OTelConfig) error {
	switch config.Exporter {
	case "", ExporterOTLP, ExporterStdout:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedExporter, config.Exporter)
	}
}

func newLogExporter(ctx context.Context, config *OTelConfig) (sdklog.Exporter, error) {
	if err := checkExporter(config); err != nil {
		return nil, err
	}

	if config.Exporter == ExporterStdout {
		return stdoutlog.New(stdoutlog.WithWriter(os.Stderr))
	}

	target, err := ResolveExporterTarget(*config)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := exporterTLS(config, target)
	if err != nil {
		return nil, err
	}

	if target.Protocol == ProtocolHTTP {
		opts := []otlploghttp.Option{
			otlploghttp.WithEndpoint(target.Endpoint),
			otlploghttp.WithURLPath(target.signalPath("logs")),
		}

		if target.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		} else if tlsConfig != nil {
			opts = append(opts, otlploghttp.WithTLSClientConfig(tlsConfig))
		}

		if len(config.Headers) > 0 {
			opts = append(opts, otlploghttp.WithHeaders(config.Headers))
		}

		return otlploghttp.New(ctx, opts...)
	}

	opts := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(target.Endpoint),
	}

	if target.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	} else if tlsConfig != nil {
		opts = append(opts, otlploggrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig)))
	}

	if len(config.Headers) > 0 {
		opts = append(opts, otlploggrpc.WithHeaders(config.Headers))
	}

	return otlploggrpc.New(ctx, opts...)
}

func newSpanExporter(ctx context.Context, config *OTelConfig) (trace.SpanExporter, error) {
	if err := checkExporter(config); err != nil {
		return nil, err
	}

	if config.Exporter == ExporterStdout {
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	}

	target, err := ResolveExporterTarget(*config)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := exporterTLS(config, target)
	if err != nil {
		return nil, err
	}

	if target.Protocol == ProtocolHTTP {
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(target.Endpoint),
			otlptracehttp.WithURLPath(target.signalPath("traces")),
		}

		if target.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		} else if tlsConfig != nil {
			opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsConfig))
		}

		if len(config.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(config.Headers))
		}

		return otlptracehttp.New(ctx, opts...)
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(target.Endpoint),
	}

	if target.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else if tlsConfig != nil {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig)))
	}

	if len(config.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(config.Headers))
	}

	return otlptracegrpc.New(ctx, opts...)
}

func newMetricExporter(ctx context.Context, config *OTelConfig) (sdkmetric.Exporter, error) {
	if err := checkExporter(config); err != nil {
		return nil, err
	}

	if config.Exporter == ExporterStdout {
		return stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	}

	target, err := ResolveExporterTarget(*config)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := exporterTLS(config, target)
	if err != nil {
		return nil, err
	}

	if target.Protocol == ProtocolHTTP {
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(target.Endpoint),
			otlpmetrichttp.WithURLPath(target.signalPath("metrics")),
		}

		if target.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		} else if tlsConfig != nil {
			opts = append(opts, otlpmetrichttp.WithTLSClientConfig(tlsConfig))
		}

		if len(config.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(config.Headers))
		}

		return otlpmetrichttp.New(ctx, opts...)
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(target.Endpoint),
	}

	if target.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	} else if tlsConfig != nil {
		opts = append(opts, otlpmetricgrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig)))
	}

	if len(config.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(config.Headers))
	}

	return otlpmetricgrpc.New(ctx, opts...)
}

func exporterTLS(config *OTelConfig, target ExporterTarget) (*tls.Config, error) {
	if target.Insecure || config.TLS == nil {
		return nil, nil
	}

	tlsConfig, err := setupTLSConfig(config.TLS)
	if err != nil {
		return nil, fmt.Errorf("failed to setup TLS configuration: %w", err)
	}

	return tlsConfig, nil
}

func setupTLSConfig(tlsConfig *TLSConfig) (*tls.Config, error) {
	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}

		config.Certificates = []tls.Certificate{cert}
	}

	if tlsConfig.CAFile != "" {
		caCert, err := os.ReadFile(tlsConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, errFailedToParseCACert
		}

		config.RootCAs = caCertPool
	}

	return config, nil
}
