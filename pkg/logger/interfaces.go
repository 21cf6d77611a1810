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
	"io"

	"github.com/rs/zerolog"
)

// Logger is what handlers, middleware and loaders write through. Events
// started with .Ctx(ctx) pick up the active span's ids via TraceHook.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
	Panic() *zerolog.Event
	With() zerolog.Context
}

// NewTestLogger returns a Logger that drops everything.
func NewTestLogger() Logger {
	return discardLogger{nop: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

type discardLogger struct {
	nop zerolog.Logger
}

func (d discardLogger) Trace() *zerolog.Event { return d.nop.Trace() }
func (d discardLogger) Debug() *zerolog.Event { return d.nop.Debug() }
func (d discardLogger) Info() *zerolog.Event  { return d.nop.Info() }
func (d discardLogger) Warn() *zerolog.Event  { return d.nop.Warn() }
func (d discardLogger) Error() *zerolog.Event { return d.nop.Error() }
func (d discardLogger) Fatal() *zerolog.Event { return d.nop.Fatal() }
func (d discardLogger) Panic() *zerolog.Event { return d.nop.Panic() }
func (d discardLogger) With() zerolog.Context { return d.nop.With() }
