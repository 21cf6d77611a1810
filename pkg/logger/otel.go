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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	log "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace"
)

// Static errors for err113 compliance
var (
	ErrOTelLoggingDisabled = errors.New("OTel logging is disabled")
)

const (
	maxAttributeValueLength   = 4096
	maxStructuredPreviewCount = 5
	maxPreviewElementLength   = 64
	truncatedKeysAttribute    = "otel.truncated_keys"
	exceptionMessageAttribute = "exception.message"
	defaultScopeName          = "otel-demo"
)

// NewLoggerProvider builds the log pipeline: exporter, batch processor, and
// provider carrying the shared resource. Extra processors are registered after
// the exporter's; with OTel disabled they are the only ones.
func NewLoggerProvider(
	ctx context.Context, config OTelConfig, res *resource.Resource, extra ...sdklog.Processor,
) (*sdklog.LoggerProvider, error) {
	if !config.Enabled && len(extra) == 0 {
		return nil, ErrOTelLoggingDisabled
	}

	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}

	if config.Enabled {
		exporter, err := newLogExporter(ctx, &config)
		if err != nil {
			return nil, fmt.Errorf("failed to create log exporter: %w", err)
		}

		batchTimeout := time.Duration(config.BatchTimeout)
		if batchTimeout == 0 {
			batchTimeout = defaultBatchTimeout
		}

		opts = append(opts, sdklog.WithProcessor(
			sdklog.NewBatchProcessor(exporter, sdklog.WithExportTimeout(batchTimeout)),
		))
	}

	for _, p := range extra {
		opts = append(opts, sdklog.WithProcessor(p))
	}

	return sdklog.NewLoggerProvider(opts...), nil
}

// OTelWriter is an io.Writer that turns zerolog JSON lines into OTel log
// records. One OTel logger is kept per "component" field value.
type OTelWriter struct {
	provider log.LoggerProvider
	loggers  map[string]log.Logger
	mu       sync.Mutex
	ctx      context.Context
}

func NewOTelWriter(ctx context.Context, provider log.LoggerProvider) *OTelWriter {
	return &OTelWriter{
		provider: provider,
		loggers:  make(map[string]log.Logger),
		ctx:      ctx,
	}
}

func (w *OTelWriter) Write(p []byte) (n int, err error) {
	if w.provider == nil {
		return len(p), nil
	}

	logEntry := make(map[string]interface{})
	if err := json.Unmarshal(p, &logEntry); err != nil {
		return len(p), nil
	}

	record := log.Record{}

	if timestamp, ok := logEntry["time"].(string); ok {
		if parsedTime, err := time.Parse(time.RFC3339, timestamp); err == nil {
			record.SetTimestamp(parsedTime)
			delete(logEntry, "time")
		}
	}

	if levelStr, ok := logEntry["level"].(string); ok {
		record.SetSeverity(mapZerologLevelToOTel(levelStr))
		record.SetSeverityText(levelStr)
		delete(logEntry, "level")
	}

	if message, ok := logEntry["message"].(string); ok {
		record.SetBody(log.StringValue(message))
		delete(logEntry, "message")
	}

	if errMsg, ok := logEntry["error"]; ok {
		logEntry[exceptionMessageAttribute] = errMsg
		delete(logEntry, "error")
	}

	// Trace ids written by TraceHook become the record's trace context so the
	// backend can correlate without parsing attributes.
	ctx := w.ctx
	if sc, ok := spanContextFromEntry(logEntry); ok {
		ctx = trace.ContextWithSpanContext(ctx, sc)

		delete(logEntry, TraceIDField)
		delete(logEntry, SpanIDField)
	}

	componentName := defaultScopeName
	if component, ok := logEntry["component"].(string); ok && component != "" {
		componentName = component

		delete(logEntry, "component")
	}

	logger := w.scopeLogger(componentName)

	sanitized, truncatedKeys := sanitizeLogEntry(logEntry)
	for key, value := range sanitized {
		record.AddAttributes(log.String(key, value))
	}

	if len(truncatedKeys) > 0 {
		record.AddAttributes(log.String(truncatedKeysAttribute, strings.Join(truncatedKeys, ",")))
	}

	logger.Emit(ctx, record)

	return len(p), nil
}

func (w *OTelWriter) scopeLogger(name string) log.Logger {
	w.mu.Lock()
	defer w.mu.Unlock()

	logger, found := w.loggers[name]
	if !found {
		logger = w.provider.Logger(name)
		w.loggers[name] = logger
	}

	return logger
}

func spanContextFromEntry(logEntry map[string]interface{}) (trace.SpanContext, bool) {
	traceHex, _ := logEntry[TraceIDField].(string)
	spanHex, _ := logEntry[SpanIDField].(string)

	traceID, err := trace.TraceIDFromHex(traceHex)
	if err != nil {
		return trace.SpanContext{}, false
	}

	spanID, err := trace.SpanIDFromHex(spanHex)
	if err != nil {
		return trace.SpanContext{}, false
	}

	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}), true
}

func sanitizeLogEntry(logEntry map[string]interface{}) (map[string]string, []string) {
	sanitized := make(map[string]string, len(logEntry))
	truncated := make([]string, 0, len(logEntry))

	for key, value := range logEntry {
		formatted, wasTruncated := formatAttributeValue(value)
		sanitized[key] = formatted

		if wasTruncated {
			truncated = append(truncated, key)
		}
	}

	sort.Strings(truncated)

	return sanitized, truncated
}

func formatAttributeValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "null", false
	case string:
		return truncateString(v, maxAttributeValueLength)
	case bool:
		return fmt.Sprintf("%t", v), false
	case float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%v", v), false
	case json.Number:
		return v.String(), false
	case []interface{}:
		return summarizeSlice(v)
	case map[string]interface{}:
		return summarizeMap(v)
	default:
		if marshaled, err := json.Marshal(value); err == nil {
			return truncateString(string(marshaled), maxAttributeValueLength)
		}

		return truncateString(fmt.Sprintf("%v", value), maxAttributeValueLength)
	}
}

func summarizeSlice(items []interface{}) (string, bool) {
	length := len(items)
	if length == 0 {
		return "[]", false
	}

	if length <= maxStructuredPreviewCount {
		if payload, err := json.Marshal(items); err == nil {
			return truncateString(string(payload), maxAttributeValueLength)
		}
	}

	previews := make([]string, 0, maxStructuredPreviewCount)
	for i := 0; i < maxStructuredPreviewCount && i < length; i++ {
		previews = append(previews, previewString(items[i]))
	}

	builder := strings.Builder{}
	builder.WriteString("[")
	builder.WriteString(strings.Join(previews, ", "))

	if length > len(previews) {
		builder.WriteString(", ...")
	}

	fmt.Fprintf(&builder, "] (total=%d, truncated)", length)

	result, _ := truncateString(builder.String(), maxAttributeValueLength)

	return result, true
}

func summarizeMap(values map[string]interface{}) (string, bool) {
	totalKeys := len(values)
	if totalKeys == 0 {
		return "{}", false
	}

	if totalKeys <= maxStructuredPreviewCount {
		if payload, err := json.Marshal(values); err == nil {
			return truncateString(string(payload), maxAttributeValueLength)
		}
	}

	keys := make([]string, 0, totalKeys)
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	preview := keys[:maxStructuredPreviewCount]

	result, _ := truncateString(
		fmt.Sprintf("{keys=%d, sample=[%s, ...], truncated}", totalKeys, strings.Join(preview, ", ")),
		maxAttributeValueLength,
	)

	return result, true
}

func previewString(value interface{}) string {
	switch v := value.(type) {
	case string:
		truncated, _ := truncateString(v, maxPreviewElementLength)
		return fmt.Sprintf("%q", truncated)
	case map[string]interface{}:
		return fmt.Sprintf("map(len=%d)", len(v))
	case []interface{}:
		return fmt.Sprintf("slice(len=%d)", len(v))
	default:
		truncated, _ := truncateString(fmt.Sprintf("%v", v), maxPreviewElementLength)
		return truncated
	}
}

func truncateString(value string, limit int) (string, bool) {
	if len(value) <= limit {
		return value, false
	}

	if limit <= 3 {
		return trimToValidUTF8(value[:limit]), true
	}

	return trimToValidUTF8(value[:limit-3]) + "...", true
}

func trimToValidUTF8(s string) string {
	for !utf8.ValidString(s) && len(s) > 0 {
		s = s[:len(s)-1]
	}

	return s
}

func mapZerologLevelToOTel(level string) log.Severity {
	switch strings.ToLower(level) {
	case "trace":
		return log.SeverityTrace
	case "debug":
		return log.SeverityDebug
	case "info":
		return log.SeverityInfo
	case "warn", "warning":
		return log.SeverityWarn
	case "error":
		return log.SeverityError
	case "fatal", "panic":
		return log.SeverityFatal
	default:
		return log.SeverityInfo
	}
}

// MultiWriter fans a log line out to every writer, stopping at the first
// failure.
type MultiWriter struct {
	writers []io.Writer
}

func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (mw *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range mw.writers {
		n, err = w.Write(p)
		if err != nil {
			return n, err
		}

		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}

	return len(p), nil
}
