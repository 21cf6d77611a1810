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

package stack

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/carverauto/otel-demo/pkg/correlation"
)

const (
	datasourceLoki  = "loki"
	datasourceTempo = "tempo"
)

var (
	errMissingDatasource   = errors.New("missing datasource")
	errMissingDerivedField = errors.New("loki datasource has no derived field")
	errRegexDrift          = errors.New("derived field regex does not match the logged trace id format")
	errBadCaptureGroups    = errors.New("derived field regex must have exactly one capture group")
	errDanglingUID         = errors.New("datasource uid does not resolve")
	errMissingTracesToLogs = errors.New("tempo datasource has no traces-to-logs link")
)

// DatasourceFile is a Grafana datasource provisioning document.
type DatasourceFile struct {
	APIVersion  int          `yaml:"apiVersion"`
	Datasources []Datasource `yaml:"datasources"`
}

type Datasource struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	UID       string         `yaml:"uid"`
	Access    string         `yaml:"access"`
	URL       string         `yaml:"url"`
	IsDefault bool           `yaml:"isDefault"`
	JSONData  DatasourceJSON `yaml:"jsonData"`
}

type DatasourceJSON struct {
	DerivedFields []DerivedField  `yaml:"derivedFields"`
	TracesToLogs  *TracesToLogsV2 `yaml:"tracesToLogsV2"`
}

type DerivedField struct {
	Name          string `yaml:"name"`
	MatcherRegex  string `yaml:"matcherRegex"`
	DatasourceUID string `yaml:"datasourceUid"`
	URL           string `yaml:"url"`
}

type TracesToLogsV2 struct {
	DatasourceUID   string `yaml:"datasourceUid"`
	FilterByTraceID bool   `yaml:"filterByTraceID"`
}

func (f *DatasourceFile) byType(typ string) *Datasource {
	for i := range f.Datasources {
		if f.Datasources[i].Type == typ {
			return &f.Datasources[i]
		}
	}

	return nil
}

// Validate checks the log to trace link in both directions. The Loki derived
// field must use exactly the regex the API's log lines are written for.
func (f *DatasourceFile) Validate() error {
	loki := f.byType(datasourceLoki)
	tempo := f.byType(datasourceTempo)

	var errs []error

	if loki == nil {
		errs = append(errs, fmt.Errorf("%w: %s", errMissingDatasource, datasourceLoki))
	}

	if tempo == nil {
		errs = append(errs, fmt.Errorf("%w: %s", errMissingDatasource, datasourceTempo))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	field, ok := findDerivedField(loki.JSONData.DerivedFields, correlation.DerivedFieldName)
	if !ok {
		errs = append(errs, fmt.Errorf("%w: %s", errMissingDerivedField, correlation.DerivedFieldName))
	} else {
		errs = append(errs, validateDerivedField(field, tempo.UID)...)
	}

	switch {
	case tempo.JSONData.TracesToLogs == nil:
		errs = append(errs, errMissingTracesToLogs)
	case tempo.JSONData.TracesToLogs.DatasourceUID != loki.UID:
		errs = append(errs, fmt.Errorf("%w: traces-to-logs %q, loki uid %q",
			errDanglingUID, tempo.JSONData.TracesToLogs.DatasourceUID, loki.UID))
	}

	return errors.Join(errs...)
}

func findDerivedField(fields []DerivedField, name string) (DerivedField, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}

	return DerivedField{}, false
}

func validateDerivedField(field DerivedField, tempoUID string) []error {
	var errs []error

	if field.MatcherRegex != correlation.TraceIDPattern {
		errs = append(errs, fmt.Errorf("%w: got %q, want %q", errRegexDrift, field.MatcherRegex, correlation.TraceIDPattern))
	}

	re, err := regexp.Compile(field.MatcherRegex)
	if err != nil {
		errs = append(errs, fmt.Errorf("derived field %s: %w", field.Name, err))
	} else if re.NumSubexp() != 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", errBadCaptureGroups, re.NumSubexp()))
	}

	if field.DatasourceUID != tempoUID {
		errs = append(errs, fmt.Errorf("%w: derived field %q, tempo uid %q", errDanglingUID, field.DatasourceUID, tempoUID))
	}

	return errs
}
