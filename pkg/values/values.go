/*
Copyright (c) 2025 Jinja-Go Project

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package values loads render contexts from YAML or JSON documents into the
// engine's value model. YAML is a superset of JSON, so one decoder covers
// both.
package values

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/work-obs/jinja-go/pkg/value"
)

// Parse decodes one YAML/JSON document into a name → value map suitable for
// Template.Render. The top level must be a mapping.
func Parse(data []byte) (map[string]value.Value, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse values document: %w", err)
	}
	return FromMap(raw), nil
}

// LoadFile reads and decodes a values file from the given filesystem.
func LoadFile(fs afero.Fs, path string) (map[string]value.Value, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
	}
	values, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse values file %s: %w", path, err)
	}
	return values, nil
}

// FromMap converts a decoded document into engine values.
func FromMap(raw map[string]interface{}) map[string]value.Value {
	out := make(map[string]value.Value, len(raw))
	for k, v := range raw {
		out[k] = value.From(normalize(v))
	}
	return out
}

// ParseAssignments turns "name=value" pairs (CLI --set flags) into engine
// values. Values parse as YAML scalars, so numbers and booleans come through
// typed.
func ParseAssignments(pairs []string) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(pairs))
	for _, pair := range pairs {
		name, rawValue, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected name=value", pair)
		}
		var decoded interface{}
		if err := yaml.Unmarshal([]byte(rawValue), &decoded); err != nil {
			decoded = rawValue
		}
		out[name] = value.From(normalize(decoded))
	}
	return out, nil
}

// normalize rewrites the map[interface{}]interface{} shapes older YAML
// decoders produce into string-keyed maps the value model accepts.
func normalize(raw interface{}) interface{} {
	switch x := raw.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalize(v)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, v := range x {
			m[k] = normalize(v)
		}
		return m
	case []interface{}:
		items := make([]interface{}, len(x))
		for i, v := range x {
			items[i] = normalize(v)
		}
		return items
	default:
		return raw
	}
}
