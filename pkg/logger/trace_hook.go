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
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const (
	TraceIDField = "trace_id"
	SpanIDField  = "span_id"
)

// TraceHook stamps trace_id and span_id onto events logged with .Ctx(ctx)
// while a span is active. OTelWriter turns them back into record trace context.
type TraceHook struct{}

func (TraceHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	sc := trace.SpanContextFromContext(e.GetCtx())
	if !sc.IsValid() {
		return
	}

	e.Str(TraceIDField, sc.TraceID().String()).
		Str(SpanIDField, sc.SpanID().String())
}
