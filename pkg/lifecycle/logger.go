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

package lifecycle

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/carverauto/otel-demo/pkg/logger"
)

// InitializeLogger initializes the global logger with the provided configuration.
// If config is nil, it uses the default configuration.
func InitializeLogger(config *logger.Config) error {
	if config == nil {
		config = logger.DefaultConfig()
	}

	if err := logger.Init(config); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// LoggerImpl implements the logger.Logger interface without using global state
type LoggerImpl struct {
	logger zerolog.Logger
}

var _ logger.Logger = (*LoggerImpl)(nil)

// NewLoggerImpl creates a new logger implementation. When otelWriter is
// non-nil every line is also handed to it.
func NewLoggerImpl(config *logger.Config, otelWriter io.Writer) (*LoggerImpl, error) {
	if config == nil {
		config = logger.DefaultConfig()
	}

	level, err := logger.ParseLevel(config)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	output := logger.OutputWriter(config)
	if otelWriter != nil {
		output = logger.NewMultiWriter(output, otelWriter)
	}

	return NewLoggerFromWriter(output, level), nil
}

// NewLoggerFromWriter builds a logger writing JSON lines to w with the trace
// hook installed.
func NewLoggerFromWriter(w io.Writer, level zerolog.Level) *LoggerImpl {
	zlog := zerolog.New(w).
		Level(level).
		Hook(logger.TraceHook{}).
		With().
		Timestamp().
		Logger()

	return &LoggerImpl{logger: zlog}
}

func (l *LoggerImpl) Trace() *zerolog.Event {
	return l.logger.Trace()
}

func (l *LoggerImpl) Debug() *zerolog.Event {
	return l.logger.Debug()
}

func (l *LoggerImpl) Info() *zerolog.Event {
	return l.logger.Info()
}

func (l *LoggerImpl) Warn() *zerolog.Event {
	return l.logger.Warn()
}

func (l *LoggerImpl) Error() *zerolog.Event {
	return l.logger.Error()
}

func (l *LoggerImpl) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

func (l *LoggerImpl) Panic() *zerolog.Event {
	return l.logger.Panic()
}

func (l *LoggerImpl) With() zerolog.Context {
	return l.logger.With()
}

func (l *LoggerImpl) WithComponent(component string) zerolog.Logger {
	return l.logger.With().Str("component", component).Logger()
}

func (l *LoggerImpl) WithFields(fields map[string]interface{}) zerolog.Logger {
	ctx := l.logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}

	return ctx.Logger()
}

func (l *LoggerImpl) SetLevel(level zerolog.Level) {
	l.logger = l.logger.Level(level)
}

func (l *LoggerImpl) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
	} else {
		l.SetLevel(zerolog.InfoLevel)
	}
}

// Component returns a child logger tagged with component. The OTel log
// bridge uses the tag as the instrumentation scope.
func (l *LoggerImpl) Component(component string) *LoggerImpl {
	return &LoggerImpl{logger: l.WithComponent(component)}
}

// CreateLogger creates a new logger instance with the provided configuration.
// This returns a logger that can be injected into services.
func CreateLogger(config *logger.Config, otelWriter io.Writer) (logger.Logger, error) {
	return NewLoggerImpl(config, otelWriter)
}

// CreateComponentLogger creates a logger for a specific component.
func CreateComponentLogger(component string, config *logger.Config, otelWriter io.Writer) (logger.Logger, error) {
	loggerImpl, err := NewLoggerImpl(config, otelWriter)
	if err != nil {
		return nil, err
	}

	return loggerImpl.Component(component), nil
}
