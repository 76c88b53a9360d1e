package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"k8s.io/kube-openapi/pkg/validation/spec"

	"go.jacobcolvin.com/kubeschema/openapi"
)

// SchemaStoreVersion is the envelope version written to and accepted from
// _schema.json.
const SchemaStoreVersion = 2

var (
	// ErrNoSchemas indicates that no input document contained a named schema.
	ErrNoSchemas = errors.New("no schemas found")

	// ErrEncode indicates a schema could not be serialized.
	ErrEncode = errors.New("encode schema")
)

// SchemaStore is an immutable, GVK-indexed table of schemas.
//
// It is safe for concurrent use.
type SchemaStore struct {
	gvkIndex map[string]string
	raw      map[string]json.RawMessage
	schemas  map[string]*spec.Schema
}

type schemaStoreEnvelope struct {
	Version  *int                       `json:"version"`
	GVKIndex map[string]string          `json:"gvk_index"`
	Schemas  map[string]json.RawMessage `json:"schemas"`
}

// BuildSchemaStore merges the named schemas of every document in specs.
//
// Documents are visited in sorted key order and their schemas in sorted name
// order. When two documents declare the same name, the first is kept unless
// a later one carries a GVK the kept one lacks. The first schema to claim a
// GVK key keeps it. Undecodable documents are skipped.
func BuildSchemaStore(specs map[string][]byte) (*SchemaStore, error) {
	raws := make(map[string]map[string]any)
	hasGVK := make(map[string]bool)
	index := make(map[string]string)

	for _, key := range slices.Sorted(maps.Keys(specs)) {
		schemas, err := decodeSchemas(specs[key])
		if err != nil {
			slog.Debug("skip document",
				slog.String("key", key),
				slog.Any("error", err),
			)

			continue
		}

		for _, name := range slices.Sorted(maps.Keys(schemas)) {
			s := schemas[name]
			stripRefs(s)

			gvks := openapi.ParseGVKs(s[openapi.ExtGroupVersionKind])
			if _, seen := raws[name]; !seen || (!hasGVK[name] && len(gvks) > 0) {
				raws[name] = s
				hasGVK[name] = len(gvks) > 0
			}

			for _, gvk := range gvks {
				k := openapi.GVKKey(gvk)
				if _, taken := index[k]; !taken {
					index[k] = name
				}
			}
		}
	}

	if len(raws) == 0 {
		return nil, ErrNoSchemas
	}

	if q, ok := raws[openapi.QuantitySchema]; ok {
		q["format"] = openapi.FormatQuantity
	}

	encoded := make(map[string]json.RawMessage, len(raws))

	for name, s := range raws {
		data, err := marshal(s)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", name, err)
		}

		encoded[name] = data
	}

	store := newSchemaStore(index, encoded)

	slog.Debug("built schema store",
		slog.Int("schemas", len(store.schemas)),
		slog.Int("gvks", len(store.gvkIndex)),
	)

	return store, nil
}

// LoadSchemaStore decodes a store written by [SchemaStore.Encode]. It
// reports false when data is not a version 2 store with both maps present.
// A schema that fails to decode is served as an empty schema.
func LoadSchemaStore(data []byte) (*SchemaStore, bool) {
	var env schemaStoreEnvelope

	err := json.Unmarshal(data, &env)
	if err != nil {
		return nil, false
	}

	if env.Version == nil || *env.Version != SchemaStoreVersion || env.GVKIndex == nil || env.Schemas == nil {
		return nil, false
	}

	return newSchemaStore(env.GVKIndex, env.Schemas), true
}

func newSchemaStore(index map[string]string, raw map[string]json.RawMessage) *SchemaStore {
	schemas := make(map[string]*spec.Schema, len(raw))

	for name, data := range raw {
		s, ok := openapi.DecodeSchema(name, data)
		if !ok {
			s = &spec.Schema{}
		}

		schemas[name] = s
	}

	return &SchemaStore{gvkIndex: index, raw: raw, schemas: schemas}
}

// Encode serializes the store with sorted keys.
func (s *SchemaStore) Encode() ([]byte, error) {
	version := SchemaStoreVersion

	return marshal(schemaStoreEnvelope{
		Version:  &version,
		GVKIndex: s.gvkIndex,
		Schemas:  s.raw,
	})
}

// Lookup returns the schema indexed for a document's apiVersion and kind.
func (s *SchemaStore) Lookup(apiVersion, kind string) (*spec.Schema, bool) {
	name, ok := s.FullName(apiVersion, kind)
	if !ok {
		return nil, false
	}

	return s.Resolve(name)
}

// FullName returns the schema name indexed for apiVersion and kind.
func (s *SchemaStore) FullName(apiVersion, kind string) (string, bool) {
	name, ok := s.gvkIndex[openapi.APIVersionKey(apiVersion, kind)]

	return name, ok
}

// Resolve returns the schema with the given full name. The result must not
// be modified.
func (s *SchemaStore) Resolve(fullName string) (*spec.Schema, bool) {
	schema, ok := s.schemas[fullName]

	return schema, ok
}

// Names returns every schema name in sorted order.
func (s *SchemaStore) Names() []string {
	return slices.Sorted(maps.Keys(s.schemas))
}

// GVKKeys returns every index key in sorted order.
func (s *SchemaStore) GVKKeys() []string {
	return slices.Sorted(maps.Keys(s.gvkIndex))
}

// Len returns the number of schemas.
func (s *SchemaStore) Len() int {
	return len(s.schemas)
}

type rawDocument struct {
	Components struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
	Definitions map[string]json.RawMessage `json:"definitions"`
}

// decodeSchemas decodes a fresh copy of the named schemas in raw, keeping
// numbers as [json.Number] so they re-encode unchanged. A schema that is not
// a JSON object is replaced by an empty one.
func decodeSchemas(raw []byte) (map[string]map[string]any, error) {
	var doc rawDocument

	err := json.Unmarshal(raw, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", openapi.ErrInvalidDocument, err)
	}

	raws := make(map[string]json.RawMessage, len(doc.Components.Schemas)+len(doc.Definitions))
	maps.Copy(raws, doc.Definitions)
	maps.Copy(raws, doc.Components.Schemas)

	schemas := make(map[string]map[string]any, len(raws))

	for name, data := range raws {
		var s map[string]any

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		err := dec.Decode(&s)
		if err != nil {
			slog.Debug("replace undecodable schema",
				slog.String("schema", name),
				slog.Any("error", err),
			)

			s = map[string]any{}
		}

		if s != nil {
			schemas[name] = s
		}
	}

	return schemas, nil
}

// stripRefs rewrites every "$ref" string under v to the bare name of its
// target.
func stripRefs(v any) {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			if ref, ok := child.(string); ok && k == "$ref" {
				v[k] = openapi.TrimRef(ref)

				continue
			}

			stripRefs(child)
		}
	case []any:
		for _, child := range v {
			stripRefs(child)
		}
	}
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
