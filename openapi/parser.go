package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/kube-openapi/pkg/validation/spec"
)

// Vendor extensions and well-known schema names.
const (
	ExtGroupVersionKind = "x-kubernetes-group-version-kind"
	ExtIntOrString      = "x-kubernetes-int-or-string"

	FormatIntOrString = "int-or-string"
	FormatQuantity    = "quantity"

	QuantitySchema = "io.k8s.apimachinery.pkg.api.resource.Quantity"

	commonPrefix = "io.k8s.apimachinery."
	apiPrefix    = "io.k8s.api."
)

// ErrInvalidDocument indicates the input is not a JSON object.
var ErrInvalidDocument = errors.New("invalid document")

var versionRe = regexp.MustCompile(`^v[0-9]+((alpha|beta)[0-9]+)?$`)

// Document holds the named schemas of one OpenAPI document.
type Document struct {
	Schemas map[string]*spec.Schema
}

type rawDocument struct {
	Components struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
	Definitions map[string]json.RawMessage `json:"definitions"`
}

// ParseDocument decodes the named schemas of an OpenAPI v3 or Swagger 2
// document. When both sections are present, components.schemas wins.
//
// Each schema is decoded on its own. A schema that fails to decode is
// replaced by an empty one so its siblings survive.
func ParseDocument(raw []byte) (*Document, error) {
	var doc rawDocument

	err := json.Unmarshal(raw, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	raws := make(map[string]json.RawMessage, len(doc.Components.Schemas)+len(doc.Definitions))
	maps.Copy(raws, doc.Definitions)
	maps.Copy(raws, doc.Components.Schemas)

	schemas := make(map[string]*spec.Schema, len(raws))

	for name, data := range raws {
		s, ok := DecodeSchema(name, data)
		if ok {
			schemas[name] = s
		}
	}

	return &Document{Schemas: schemas}, nil
}

// DecodeSchema decodes one named schema. It reports false for a JSON null.
// Any other input that does not decode as a schema yields an empty schema.
func DecodeSchema(name string, data json.RawMessage) (*spec.Schema, bool) {
	if len(data) == 0 || string(data) == "null" {
		return nil, false
	}

	s := &spec.Schema{}

	err := json.Unmarshal(data, s)
	if err != nil {
		slog.Debug("replace undecodable schema",
			slog.String("schema", name),
			slog.Any("error", err),
		)

		return &spec.Schema{}, true
	}

	return s, true
}

// Names returns the schema names in sorted order.
func (d *Document) Names() []string {
	return slices.Sorted(maps.Keys(d.Schemas))
}

// SchemaInfos converts every named schema in d, sorted by full name.
func (d *Document) SchemaInfos() []SchemaInfo {
	infos := make([]SchemaInfo, 0, len(d.Schemas))

	for _, name := range d.Names() {
		infos = append(infos, NewSchemaInfo(name, d.Schemas[name]))
	}

	return infos
}

// ParseSpec parses one raw document into schema records. It never fails:
// undecodable input is logged and yields no schemas.
func ParseSpec(raw []byte) []SchemaInfo {
	doc, err := ParseDocument(raw)
	if err != nil {
		slog.Debug("skip document",
			slog.Any("error", err),
		)

		return nil
	}

	return doc.SchemaInfos()
}

// ParseSpecs parses every document in specs, visiting discovery keys in
// sorted order, and merges the results with [Merge].
func ParseSpecs(specs map[string][]byte) []SchemaInfo {
	lists := make([][]SchemaInfo, 0, len(specs))

	for _, key := range slices.Sorted(maps.Keys(specs)) {
		infos := ParseSpec(specs[key])
		slog.Debug("parsed document",
			slog.String("key", key),
			slog.Int("schemas", len(infos)),
		)

		lists = append(lists, infos)
	}

	return Merge(lists...)
}

// NewSchemaInfo builds the record for the schema named fullName,
// including GVK-based reclassification.
func NewSchemaInfo(fullName string, s *spec.Schema) SchemaInfo {
	info := SchemaInfo{
		FullName:    fullName,
		ShortName:   ShortName(fullName),
		Description: s.Description,
		Location:    Classify(fullName),
	}

	if gvks := GVKs(s); len(gvks) > 0 {
		info.GVK = &gvks[0]
	}

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}

	for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
		prop := s.Properties[name]
		info.Properties = append(info.Properties, PropertyInfo{
			Name:        name,
			Description: prop.Description,
			Type:        TypeOf(&prop),
			Required:    required[name],
		})
	}

	if len(info.Properties) == 0 && info.GVK == nil {
		t := TypeOf(s)
		if t.Kind != KindAny || !hasType(s, "object") {
			info.Alias = &t
		}
	}

	if info.Location.Kind == LocationOther && info.GVK != nil {
		group := info.GVK.Group
		if group == "" {
			group = "core"
		}

		info.Location = GroupVersionLocation(group, info.GVK.Version)
	}

	return info
}

// Classify buckets a schema by its full name.
func Classify(fullName string) Location {
	if strings.HasPrefix(fullName, commonPrefix) {
		return Location{Kind: LocationCommon}
	}

	if strings.HasPrefix(fullName, apiPrefix) {
		parts := strings.Split(strings.TrimPrefix(fullName, apiPrefix), ".")
		if len(parts) == 3 && parts[0] != "" && versionRe.MatchString(parts[1]) {
			return GroupVersionLocation(parts[0], parts[1])
		}
	}

	return Location{Kind: LocationOther}
}

// TypeOf maps a schema fragment to a [TsType].
func TypeOf(s *spec.Schema) TsType {
	if s == nil {
		return TypeAny
	}

	if ref := RefName(s); ref != "" {
		return RefTo(ref)
	}

	// Some generators wrap array item refs in a single-member allOf.
	if len(s.AllOf) == 1 {
		return TypeOf(&s.AllOf[0])
	}

	if IsIntOrString(s) {
		return TypeIntOrString
	}

	if len(s.Type) == 0 {
		return TypeAny
	}

	switch s.Type[0] {
	case "string":
		return TypeString
	case "integer", "number":
		return TypeNumber
	case "boolean":
		return TypeBoolean
	case "array":
		if s.Items != nil && s.Items.Schema != nil {
			return ArrayOf(TypeOf(s.Items.Schema))
		}

		return ArrayOf(TypeAny)
	case "object":
		if s.AdditionalProperties != nil {
			if s.AdditionalProperties.Schema != nil {
				return MapOf(TypeOf(s.AdditionalProperties.Schema))
			}

			if s.AdditionalProperties.Allows {
				return MapOf(TypeAny)
			}
		}
	}

	return TypeAny
}

// RefName returns the bare schema name a $ref points to, or "" when s has
// no reference. Any document-relative prefix ("#/components/schemas/",
// "#/definitions/") is dropped.
func RefName(s *spec.Schema) string {
	if s == nil {
		return ""
	}

	return TrimRef(s.Ref.String())
}

// TrimRef drops everything up to and including the last "/" of a $ref.
func TrimRef(ref string) string {
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}

	return ref
}

// IsIntOrString reports whether s accepts either an integer or a string.
func IsIntOrString(s *spec.Schema) bool {
	if s.Format == FormatIntOrString {
		return true
	}

	v, ok := s.Extensions.GetBool(ExtIntOrString)

	return ok && v
}

// GVKs returns every GroupVersionKind listed in the schema's
// x-kubernetes-group-version-kind extension, skipping malformed entries.
func GVKs(s *spec.Schema) []schema.GroupVersionKind {
	return ParseGVKs(s.Extensions[ExtGroupVersionKind])
}

// ParseGVKs decodes the generic JSON value of an
// x-kubernetes-group-version-kind extension.
func ParseGVKs(raw any) []schema.GroupVersionKind {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	gvks := make([]schema.GroupVersionKind, 0, len(items))

	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		gvk := schema.GroupVersionKind{
			Group:   stringField(m, "group"),
			Version: stringField(m, "version"),
			Kind:    stringField(m, "kind"),
		}
		if gvk.Version == "" || gvk.Kind == "" {
			continue
		}

		gvks = append(gvks, gvk)
	}

	return gvks
}

// GVKKey returns the index key for gvk: "group/version:Kind", or
// "version:Kind" for the core group.
func GVKKey(gvk schema.GroupVersionKind) string {
	return APIVersionKey(gvk.GroupVersion().String(), gvk.Kind)
}

// APIVersionKey returns the index key for a document's apiVersion and kind.
func APIVersionKey(apiVersion, kind string) string {
	return strings.TrimPrefix(apiVersion, "/") + ":" + kind
}

func hasType(s *spec.Schema, typ string) bool {
	return slices.Contains(s.Type, typ)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)

	return s
}
