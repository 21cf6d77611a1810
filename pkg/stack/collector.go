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
	"slices"
	"strings"
)

const (
	LokiResourceLabelsKey  = "loki.resource.labels"
	LokiAttributeLabelsKey = "loki.attribute.labels"

	otlpGRPCPort = "4317"
	otlpHTTPPort = "4318"
)

var (
	// LokiResourceLabels are the resource attributes promoted to stream labels.
	LokiResourceLabels = []string{"service.name", "deployment.environment.name"}
	// LokiAttributeLabels are the record attributes promoted to stream labels.
	LokiAttributeLabels = []string{"level"}
)

var (
	errUndefinedComponent = errors.New("pipeline references undefined component")
	errMissingPipeline    = errors.New("missing pipeline")
	errMissingReceiver    = errors.New("no otlp receiver listening on the standard ports")
	errMissingProcessor   = errors.New("pipeline is missing processor")
	errMissingExporter    = errors.New("pipeline is missing exporter")
	errMissingLabelHint   = errors.New("missing loki label hint")
	errTracesModified     = errors.New("traces pipeline must not carry loki label processors")
)

type CollectorConfig struct {
	Receivers  map[string]ReceiverConfig  `yaml:"receivers"`
	Processors map[string]ProcessorConfig `yaml:"processors"`
	Exporters  map[string]ExporterConfig  `yaml:"exporters"`
	Extensions map[string]interface{}     `yaml:"extensions"`
	Service    ServiceConfig              `yaml:"service"`
}

type ReceiverConfig struct {
	Protocols struct {
		GRPC *EndpointConfig `yaml:"grpc"`
		HTTP *EndpointConfig `yaml:"http"`
	} `yaml:"protocols"`
}

type EndpointConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// ProcessorConfig covers the resource processor (attributes) and the
// attributes processor (actions). Both use the same action shape.
type ProcessorConfig struct {
	Attributes []AttributeAction `yaml:"attributes"`
	Actions    []AttributeAction `yaml:"actions"`
}

type AttributeAction struct {
	Key    string `yaml:"key"`
	Value  string `yaml:"value"`
	Action string `yaml:"action"`
}

type ExporterConfig struct {
	Endpoint string `yaml:"endpoint"`
	TLS      *struct {
		Insecure bool `yaml:"insecure"`
	} `yaml:"tls"`
}

type ServiceConfig struct {
	Extensions []string            `yaml:"extensions"`
	Pipelines  map[string]Pipeline `yaml:"pipelines"`
}

type Pipeline struct {
	Receivers  []string `yaml:"receivers"`
	Processors []string `yaml:"processors"`
	Exporters  []string `yaml:"exporters"`
}

// componentType strips the optional "/name" suffix of a component id.
func componentType(id string) string {
	typ, _, _ := strings.Cut(id, "/")

	return typ
}

// Validate checks that every pipeline reference resolves, that OTLP is
// received on 4317/4318, that logs reach Loki with the label hints inserted,
// and that traces reach an OTLP exporter untouched by those hints.
func (c *CollectorConfig) Validate() error {
	var errs []error

	errs = append(errs, c.validateReferences()...)

	if !c.hasOTLPReceiver() {
		errs = append(errs, errMissingReceiver)
	}

	logs, ok := c.Service.Pipelines["logs"]
	if !ok {
		errs = append(errs, fmt.Errorf("%w: logs", errMissingPipeline))
	} else {
		errs = append(errs, c.validateLogs(logs)...)
	}

	traces, ok := c.Service.Pipelines["traces"]
	if !ok {
		errs = append(errs, fmt.Errorf("%w: traces", errMissingPipeline))
	} else {
		errs = append(errs, c.validateTraces(traces)...)
	}

	return errors.Join(errs...)
}

func (c *CollectorConfig) validateReferences() []error {
	var errs []error

	names := make([]string, 0, len(c.Service.Pipelines))
	for name := range c.Service.Pipelines {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		p := c.Service.Pipelines[name]

		for _, id := range p.Receivers {
			if _, ok := c.Receivers[id]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s receiver %q", errUndefinedComponent, name, id))
			}
		}

		for _, id := range p.Processors {
			if _, ok := c.Processors[id]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s processor %q", errUndefinedComponent, name, id))
			}
		}

		for _, id := range p.Exporters {
			if _, ok := c.Exporters[id]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s exporter %q", errUndefinedComponent, name, id))
			}
		}
	}

	for _, id := range c.Service.Extensions {
		if _, ok := c.Extensions[id]; !ok {
			errs = append(errs, fmt.Errorf("%w: extension %q", errUndefinedComponent, id))
		}
	}

	return errs
}

func (c *CollectorConfig) hasOTLPReceiver() bool {
	for id, r := range c.Receivers {
		if componentType(id) != "otlp" || r.Protocols.GRPC == nil || r.Protocols.HTTP == nil {
			continue
		}

		if strings.HasSuffix(r.Protocols.GRPC.Endpoint, ":"+otlpGRPCPort) &&
			strings.HasSuffix(r.Protocols.HTTP.Endpoint, ":"+otlpHTTPPort) {
			return true
		}
	}

	return false
}

func (c *CollectorConfig) validateLogs(p Pipeline) []error {
	var errs []error

	if !hasType(p.Processors, "batch") {
		errs = append(errs, fmt.Errorf("%w: logs batch", errMissingProcessor))
	}

	if !hasType(p.Exporters, "loki") {
		errs = append(errs, fmt.Errorf("%w: logs loki", errMissingExporter))
	}

	if !c.inserts(p.Processors, "resource", LokiResourceLabelsKey, LokiResourceLabels) {
		errs = append(errs, fmt.Errorf("%w: %s must list %s",
			errMissingLabelHint, LokiResourceLabelsKey, strings.Join(LokiResourceLabels, ", ")))
	}

	if !c.inserts(p.Processors, "attributes", LokiAttributeLabelsKey, LokiAttributeLabels) {
		errs = append(errs, fmt.Errorf("%w: %s must list %s",
			errMissingLabelHint, LokiAttributeLabelsKey, strings.Join(LokiAttributeLabels, ", ")))
	}

	return errs
}

func (c *CollectorConfig) validateTraces(p Pipeline) []error {
	var errs []error

	if !hasType(p.Exporters, "otlp") {
		errs = append(errs, fmt.Errorf("%w: traces otlp", errMissingExporter))
	}

	for _, id := range p.Processors {
		proc := c.Processors[id]
		for _, a := range slices.Concat(proc.Attributes, proc.Actions) {
			if strings.HasPrefix(a.Key, "loki.") {
				errs = append(errs, fmt.Errorf("%w: %s", errTracesModified, id))

				break
			}
		}
	}

	return errs
}

// inserts reports whether a processor of type typ in ids sets key to a list
// containing every label in want.
func (c *CollectorConfig) inserts(ids []string, typ, key string, want []string) bool {
	for _, id := range ids {
		if componentType(id) != typ {
			continue
		}

		proc := c.Processors[id]
		for _, a := range slices.Concat(proc.Attributes, proc.Actions) {
			if a.Key != key || (a.Action != "insert" && a.Action != "upsert") {
				continue
			}

			if containsAll(splitLabels(a.Value), want) {
				return true
			}
		}
	}

	return false
}

func splitLabels(value string) []string {
	parts := strings.Split(value, ",")
	labels := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}

	return labels
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}

	return true
}

func hasType(ids []string, typ string) bool {
	return slices.ContainsFunc(ids, func(id string) bool { return componentType(id) == typ })
}
