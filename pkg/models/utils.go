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

package models

import (
	"encoding"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

var errNotStruct = errors.New("input must be a struct or pointer to struct")

// FilterSensitiveFields returns the JSON-shaped view of input with every field
// tagged `sensitive:"true"` removed, so configs can be logged without leaking
// exporter credentials.
func FilterSensitiveFields(input interface{}) (map[string]interface{}, error) {
	if input == nil {
		return map[string]interface{}{}, nil
	}

	result, ok := filterRecursively(reflect.ValueOf(input)).(map[string]interface{})
	if !ok {
		if v := reflect.ValueOf(input); v.Kind() == reflect.Ptr && v.IsNil() {
			return map[string]interface{}{}, nil
		}

		return nil, errNotStruct
	}

	return result, nil
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

func filterRecursively(rv reflect.Value) interface{} {
	if !rv.IsValid() {
		return nil
	}

	// Types with their own encoding are leaves.
	if rv.Type().Implements(jsonMarshalerType) || rv.Type().Implements(textMarshalerType) {
		return rv.Interface()
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}

		return filterRecursively(rv.Elem())
	case reflect.Struct:
		return filterStruct(rv)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}

		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = filterRecursively(rv.Index(i))
		}

		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}

		out := make(map[string]interface{}, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			if key, ok := iter.Key().Interface().(string); ok {
				out[key] = filterRecursively(iter.Value())
			}
		}

		return out
	default:
		return rv.Interface()
	}
}

func filterStruct(rv reflect.Value) map[string]interface{} {
	rt := rv.Type()
	out := make(map[string]interface{}, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() || field.Tag.Get("sensitive") == "true" {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}

		out[name] = filterRecursively(rv.Field(i))
	}

	return out
}
