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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/carverauto/otel-demo/pkg/lifecycle"
	"github.com/carverauto/otel-demo/pkg/logger"
)

var (
	errInvalidConfigSource = errors.New("invalid CONFIG_SOURCE value")
	errInvalidConfigPtr    = errors.New("config must be a non-nil pointer")
	errValidationFailed    = errors.New("configuration validation failed")
)

const (
	configSourceFile = "file"
	configSourceEnv  = "env"

	// DefaultEnvPrefix is used for CONFIG_SOURCE=env when CONFIG_ENV_PREFIX is unset.
	DefaultEnvPrefix = "OTEL_DEMO_"
)

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var structValidator = newStructValidator()

// Config holds the configuration loading dependencies.
type Config struct {
	defaultLoader ConfigLoader
	envPrefix     string
	logger        logger.Logger
}

type Option func(*Config)

// WithEnvPrefix sets the prefix used by the env loader.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// NewConfig initializes a new Config instance with a default file loader and logger.
// If logger is nil, a warn-level stderr logger is used.
func NewConfig(log logger.Logger, opts ...Option) *Config {
	if log == nil {
		log = lifecycle.NewLoggerFromWriter(os.Stderr, zerolog.WarnLevel).Component("config")
	}

	c := &Config{
		defaultLoader: NewFileConfigLoader(log),
		envPrefix:     DefaultEnvPrefix,
		logger:        log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ValidateConfig runs struct tag validation, then Validate if cfg implements Validator.
func ValidateConfig(cfg interface{}) error {
	if err := validateStruct(cfg); err != nil {
		return err
	}

	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// LoadAndValidate loads a configuration from the source named by
// CONFIG_SOURCE and validates it. cfg should already hold defaults; loaders
// only overwrite what their source sets.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errInvalidConfigPtr
	}

	loader, err := c.loaderForSource(os.Getenv("CONFIG_SOURCE"))
	if err != nil {
		return err
	}

	if err := loader.Load(ctx, path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}

func (c *Config) loaderForSource(source string) (ConfigLoader, error) {
	switch strings.ToLower(source) {
	case configSourceEnv:
		prefix := os.Getenv("CONFIG_ENV_PREFIX")
		if prefix == "" {
			prefix = c.envPrefix
		}

		return NewEnvConfigLoader(c.logger, prefix), nil
	case configSourceFile, "":
		return c.defaultLoader, nil
	default:
		return nil, fmt.Errorf("%w: %s (expected '%s' or '%s')",
			errInvalidConfigSource, source, configSourceFile, configSourceEnv)
	}
}

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their config key rather than the Go name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	return v
}

func validateStruct(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", errValidationFailed, err)
	}

	msgs := make([]string, 0, len(verrs))

	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}

		msgs = append(msgs, msg)
	}

	return fmt.Errorf("%w: %s", errValidationFailed, strings.Join(msgs, "; "))
}
