package store

import (
	"encoding/json"
	"log/slog"
	"maps"
	"slices"

	"k8s.io/kube-openapi/pkg/validation/spec"

	"go.jacobcolvin.com/kubeschema/openapi"
)

// ValidationMapVersion is the envelope version written to and accepted from
// _validation.json.
const ValidationMapVersion = 1

// RootPath is the path of a document root.
const RootPath = "$"

// ValidationMap lists, per GVK key, the path patterns at which a quantity
// value may occur. A pattern segment is either ".name" or "[*]", the latter
// matching every array element or map value.
//
// It is safe for concurrent use.
type ValidationMap struct {
	quantities map[string][]string
}

type validationMapEnvelope struct {
	Version    *int                `json:"version"`
	Quantities map[string][]string `json:"quantities"`
}

// BuildValidationMap builds a schema store from specs and extracts its
// quantity paths with [NewValidationMap].
func BuildValidationMap(specs map[string][]byte) (*ValidationMap, error) {
	store, err := BuildSchemaStore(specs)
	if err != nil {
		return nil, err
	}

	return NewValidationMap(store), nil
}

// NewValidationMap walks the schema of every indexed GVK in store and
// records each path that reaches a quantity. Resources without any quantity
// path are omitted.
func NewValidationMap(store *SchemaStore) *ValidationMap {
	quantities := make(map[string][]string)

	for _, key := range store.GVKKeys() {
		name := store.gvkIndex[key]

		root, ok := store.Resolve(name)
		if !ok {
			continue
		}

		w := &pathWalker{
			store: store,
			stack: map[string]bool{name: true},
			paths: make(map[string]struct{}),
		}
		w.walk(root, RootPath)

		if len(w.paths) > 0 {
			quantities[key] = slices.Sorted(maps.Keys(w.paths))
		}
	}

	slog.Debug("built validation map",
		slog.Int("resources", len(quantities)),
	)

	return &ValidationMap{quantities: quantities}
}

// LoadValidationMap decodes a map written by [ValidationMap.Encode]. It
// reports false for any version other than 1 or a missing quantities key.
func LoadValidationMap(data []byte) (*ValidationMap, bool) {
	var env validationMapEnvelope

	err := json.Unmarshal(data, &env)
	if err != nil {
		return nil, false
	}

	if env.Version == nil || *env.Version != ValidationMapVersion || env.Quantities == nil {
		return nil, false
	}

	return &ValidationMap{quantities: env.Quantities}, true
}

// Encode serializes the map with sorted keys.
func (m *ValidationMap) Encode() ([]byte, error) {
	version := ValidationMapVersion

	return marshal(validationMapEnvelope{
		Version:    &version,
		Quantities: m.quantities,
	})
}

// QuantityPaths returns the patterns recorded for a GVK key, as built by
// [openapi.APIVersionKey].
func (m *ValidationMap) QuantityPaths(key string) []string {
	return slices.Clone(m.quantities[key])
}

// Has reports whether any pattern is recorded for key.
func (m *ValidationMap) Has(key string) bool {
	_, ok := m.quantities[key]

	return ok
}

type pathWalker struct {
	store *SchemaStore
	stack map[string]bool
	paths map[string]struct{}
}

func (w *pathWalker) walk(s *spec.Schema, path string) {
	if s == nil {
		return
	}

	if name := openapi.RefName(s); name != "" {
		if name == openapi.QuantitySchema {
			w.paths[path] = struct{}{}

			return
		}

		// Refs do not consume a path segment. The stack only guards the
		// current branch, so a type reachable along two paths is walked twice.
		if w.stack[name] {
			return
		}

		target, ok := w.store.Resolve(name)
		if !ok {
			return
		}

		w.stack[name] = true
		w.walk(target, path)
		delete(w.stack, name)

		return
	}

	if s.Format == openapi.FormatQuantity {
		w.paths[path] = struct{}{}

		return
	}

	for i := range s.AllOf {
		w.walk(&s.AllOf[i], path)
	}

	for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
		prop := s.Properties[name]
		w.walk(&prop, path+"."+name)
	}

	if s.Items != nil && s.Items.Schema != nil {
		w.walk(s.Items.Schema, path+"[*]")
	}

	if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
		w.walk(s.AdditionalProperties.Schema, path+"[*]")
	}
}
