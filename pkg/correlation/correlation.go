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

// Package correlation owns the text form of the trace id embedded in log
// messages. Grafana's Loki datasource extracts it with TraceIDPattern to link
// a log line to its trace in Tempo, so the two must never drift apart.
package correlation

import (
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

const (
	// DerivedFieldName is the Loki derived field name provisioned in Grafana.
	DerivedFieldName = "TraceID"

	// TraceIDPattern has exactly one capture group holding the trace id.
	TraceIDPattern = `TraceID: (\w+)`
)

var (
	traceIDRegexp    = regexp.MustCompile(TraceIDPattern)
	hexTraceIDRegexp = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// Embed appends the trace id to a log message in the form TraceIDPattern matches.
func Embed(message string, traceID trace.TraceID) string {
	return strings.TrimSuffix(message, ".") + ". " + DerivedFieldName + ": " + traceID.String()
}

// Extract returns the first trace id embedded in line.
func Extract(line string) (string, bool) {
	m := traceIDRegexp.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// IsValidTraceID reports whether s is a W3C trace id: 32 lowercase hex digits,
// not all zero.
func IsValidTraceID(s string) bool {
	return hexTraceIDRegexp.MatchString(s) && strings.Trim(s, "0") != ""
}
