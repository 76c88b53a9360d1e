package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
)

// ErrInvalidSchema indicates a chart schema could not be decoded.
var ErrInvalidSchema = errors.New("invalid chart schema")

// LoadSchema decodes a chart values schema. Input that is not JSON is
// converted from YAML first.
func LoadSchema(data []byte) (*jsonschema.Schema, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidSchema)
	}

	if !json.Valid(data) {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}

		data = converted
	}

	var s jsonschema.Schema

	err := json.Unmarshal(data, &s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	return &s, nil
}

// TrueSchema returns a schema that accepts everything.
func TrueSchema() *jsonschema.Schema {
	return &jsonschema.Schema{}
}

// FalseSchema returns a schema that accepts nothing.
func FalseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

// PropertyNames returns the property names of s, those listed in
// PropertyOrder first and the rest sorted.
func PropertyNames(s *jsonschema.Schema) []string {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}

	names := make([]string, 0, len(s.Properties))
	seen := make(map[string]bool, len(s.Properties))

	for _, name := range s.PropertyOrder {
		if _, ok := s.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	rest := make([]string, 0, len(s.Properties)-len(names))

	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}

	slices.Sort(rest)

	return append(names, rest...)
}
