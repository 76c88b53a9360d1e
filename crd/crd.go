// Package crd converts CustomResourceDefinition manifests into OpenAPI
// component documents, so custom resources flow through the same parser,
// store and emitters as the built-in API.
package crd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	apiv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/util/json"
	"k8s.io/apimachinery/pkg/util/yaml"

	"go.jacobcolvin.com/kubeschema/openapi"
)

const crdKind = "CustomResourceDefinition"

var (
	// ErrInvalidCRD indicates the input holds no decodable CRD.
	ErrInvalidCRD = errors.New("invalid custom resource definition")

	// ErrVersionNotFound indicates a requested version is not defined.
	ErrVersionNotFound = errors.New("version not found")
)

// Converter turns CRD manifests into OpenAPI component schemas.
type Converter struct {
	logger      *slog.Logger
	version     string
	allVersions bool
}

// Option configures a [Converter].
type Option func(*Converter)

// WithVersion selects the named version instead of the storage version.
func WithVersion(version string) Option {
	return func(c *Converter) {
		c.version = version
	}
}

// WithAllVersions converts every served version.
func WithAllVersions(all bool) Option {
	return func(c *Converter) {
		c.allVersions = all
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// NewConverter creates a [Converter].
func NewConverter(opts ...Option) *Converter {
	c := &Converter{logger: slog.Default()}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ToOpenAPI converts the CRDs in data with the given options and returns a
// document of the form {"components": {"schemas": {...}}}.
func ToOpenAPI(data []byte, opts ...Option) ([]byte, error) {
	return NewConverter(opts...).Convert(data)
}

// SchemaName returns the schema name used for a custom resource:
// the reversed group, the version and the kind, joined by dots.
func SchemaName(group, version, kind string) string {
	parts := strings.Split(group, ".")
	slices.Reverse(parts)

	return strings.Join(parts, ".") + "." + version + "." + kind
}

// Convert decodes every YAML or JSON document in data, skipping documents
// that are not CRDs, and returns an OpenAPI components document.
func (c *Converter) Convert(data []byte) ([]byte, error) {
	schemas, err := c.Schemas(data)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(map[string]any{
		"components": map[string]any{"schemas": schemas},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCRD, err)
	}

	return out, nil
}

// Schemas returns the named component schemas for every CRD in data.
//
// Each selected version yields a schema carrying the resource's GVK. A
// structured spec is hoisted into its own "<name>Spec" schema so that
// resource builders can expose one method per spec field.
func (c *Converter) Schemas(data []byte) (map[string]any, error) {
	dec := yaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)
	schemas := make(map[string]any)

	var found int

	for {
		var crd apiv1.CustomResourceDefinition

		err := dec.Decode(&crd)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCRD, err)
		}

		if crd.Kind != crdKind {
			if crd.Kind != "" {
				c.logger.Debug("skip document",
					slog.String("kind", crd.Kind),
					slog.String("name", crd.Name),
				)
			}

			continue
		}

		if crd.Spec.Group == "" || crd.Spec.Names.Kind == "" {
			return nil, fmt.Errorf("%w: %q has no group or kind", ErrInvalidCRD, crd.Name)
		}

		err = c.add(schemas, &crd)
		if err != nil {
			return nil, err
		}

		found++
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: no %s found", ErrInvalidCRD, crdKind)
	}

	return schemas, nil
}

func (c *Converter) add(schemas map[string]any, crd *apiv1.CustomResourceDefinition) error {
	versions, err := c.selectVersions(crd)
	if err != nil {
		return err
	}

	for _, v := range versions {
		name := SchemaName(crd.Spec.Group, v.Name, crd.Spec.Names.Kind)

		root, err := schemaMap(v.Schema)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidCRD, name, err)
		}

		root[openapi.ExtGroupVersionKind] = []any{map[string]any{
			"group":   crd.Spec.Group,
			"version": v.Name,
			"kind":    crd.Spec.Names.Kind,
		}}

		if props, ok := root["properties"].(map[string]any); ok {
			if spec, ok := props["spec"].(map[string]any); ok && spec["properties"] != nil {
				specName := name + "Spec"
				schemas[specName] = spec

				ref := map[string]any{
					"allOf": []any{map[string]any{"$ref": "#/components/schemas/" + specName}},
				}
				if desc, ok := spec["description"]; ok {
					ref["description"] = desc
				}

				props["spec"] = ref
			}
		}

		schemas[name] = root

		c.logger.Debug("converted crd",
			slog.String("name", crd.Name),
			slog.String("schema", name),
		)
	}

	return nil
}

func (c *Converter) selectVersions(crd *apiv1.CustomResourceDefinition) ([]apiv1.CustomResourceDefinitionVersion, error) {
	versions := crd.Spec.Versions

	switch {
	case c.version != "":
		for _, v := range versions {
			if v.Name == c.version {
				return []apiv1.CustomResourceDefinitionVersion{v}, nil
			}
		}

		return nil, fmt.Errorf("%w: %q in %s", ErrVersionNotFound, c.version, crd.Name)
	case c.allVersions:
		var served []apiv1.CustomResourceDefinitionVersion

		for _, v := range versions {
			if v.Served {
				served = append(served, v)
			}
		}

		if len(served) > 0 {
			return served, nil
		}
	}

	for _, v := range versions {
		if v.Storage {
			return []apiv1.CustomResourceDefinitionVersion{v}, nil
		}
	}

	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s defines no versions", ErrVersionNotFound, crd.Name)
	}

	return versions[:1], nil
}

// schemaMap returns the generic JSON form of a version's schema. Versions
// without a schema accept any object.
func schemaMap(v *apiv1.CustomResourceValidation) (map[string]any, error) {
	if v == nil || v.OpenAPIV3Schema == nil {
		return map[string]any{
			"type":                                 "object",
			"x-kubernetes-preserve-unknown-fields": true,
		}, nil
	}

	data, err := json.Marshal(v.OpenAPIV3Schema)
	if err != nil {
		return nil, err
	}

	var out map[string]any

	err = json.Unmarshal(data, &out)
	if err != nil {
		return nil, err
	}

	return out, nil
}
