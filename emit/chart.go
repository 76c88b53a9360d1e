package emit

import (
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/kubeschema/chart"
	"go.jacobcolvin.com/kubeschema/openapi"
)

// ValuesName is the class name of a chart's root values schema.
const ValuesName = "Values"

// ChartDir is the output directory of chart modules.
const ChartDir = "charts"

// Chart renders the declaration and implementation files for the values
// schema of the named chart. Every nested object with properties becomes
// a builder class and a parallel <Name>Spec interface.
func Chart(name string, root *jsonschema.Schema, opts ...Option) ([]File, error) {
	e := newEmitter(opts)

	if root == nil {
		root = chart.TrueSchema()
	}

	c := newChartCollector()
	c.collect(root)

	return e.render(path.Join(ChartDir, name), c.view(e))
}

type chartType struct {
	schema *jsonschema.Schema
	name   string
	props  []openapi.PropertyInfo
}

// chartCollector extracts named types from a chart schema.
type chartCollector struct {
	names     *namer
	defs      map[string]*jsonschema.Schema
	defNames  map[string]string
	extracted map[*jsonschema.Schema]string
	resolving map[string]bool
	types     []*chartType
}

func newChartCollector() *chartCollector {
	names := newNamer("Spec")
	names.reserve(runtimeBuilder)

	return &chartCollector{
		names:     names,
		defs:      make(map[string]*jsonschema.Schema),
		defNames:  make(map[string]string),
		extracted: make(map[*jsonschema.Schema]string),
		resolving: make(map[string]bool),
	}
}

func (c *chartCollector) collect(root *jsonschema.Schema) {
	rootName := c.names.unique(ValuesName)

	type def struct {
		name   string
		schema *jsonschema.Schema
	}

	var defs []def

	for _, group := range []struct {
		prefix  string
		schemas map[string]*jsonschema.Schema
	}{
		{"#/$defs/", root.Defs},
		{"#/definitions/", root.Definitions},
	} {
		for _, key := range slices.Sorted(maps.Keys(group.schemas)) {
			s := group.schemas[key]
			ref := group.prefix + key
			c.defs[ref] = s

			if isObject(s) {
				name := c.names.unique(typeName(key))
				c.defNames[ref] = name
				defs = append(defs, def{name: name, schema: s})
			}
		}
	}

	c.extract(rootName, root)

	for _, d := range defs {
		if _, ok := c.extracted[d.schema]; !ok {
			c.extract(d.name, d.schema)
		}
	}
}

func (c *chartCollector) extract(name string, s *jsonschema.Schema) {
	t := &chartType{name: name, schema: s}
	c.types = append(c.types, t)
	c.extracted[s] = name

	for _, key := range chart.PropertyNames(s) {
		prop := s.Properties[key]
		t.props = append(t.props, openapi.PropertyInfo{
			Name:        key,
			Description: description(prop),
			Type:        c.typeOf(key, name, prop),
			Required:    slices.Contains(s.Required, key),
		})
	}
}

func (c *chartCollector) typeOf(key, parent string, s *jsonschema.Schema) openapi.TsType {
	if s == nil {
		return openapi.TypeAny
	}

	if s.Ref != "" {
		if name, ok := c.defNames[s.Ref]; ok {
			return openapi.NamedRef(name, name)
		}

		def, ok := c.defs[s.Ref]
		if !ok || c.resolving[s.Ref] {
			return openapi.TypeAny
		}

		c.resolving[s.Ref] = true
		defer delete(c.resolving, s.Ref)

		return c.typeOf(key, parent, def)
	}

	switch schemaType(s) {
	case "object":
		if len(s.Properties) > 0 {
			name, ok := c.extracted[s]
			if !ok {
				name = c.names.unique(typeName(key), parent)
				c.extract(name, s)
			}

			return openapi.NamedRef(name, name)
		}

		if s.AdditionalProperties != nil {
			return openapi.MapOf(c.typeOf(key+"-value", parent, s.AdditionalProperties))
		}

		return openapi.MapOf(openapi.TypeAny)
	case "array":
		if s.Items == nil {
			return openapi.ArrayOf(openapi.TypeAny)
		}

		return openapi.ArrayOf(c.typeOf(key+"-item", parent, s.Items))
	case "string":
		return openapi.TypeString
	case "integer", "number":
		return openapi.TypeNumber
	case "boolean":
		return openapi.TypeBoolean
	}

	return openapi.TypeAny
}

func (c *chartCollector) view(e *emitter) *fileView {
	view := &fileView{}

	for _, t := range c.types {
		spec := t.name + "Spec"

		iface := interfaceView{
			Doc:  docComment(description(t.schema), ""),
			Name: spec,
		}

		b := builderView{
			Doc:     docComment(description(t.schema), ""),
			Class:   t.name,
			Base:    runtimeBuilder,
			Type:    spec,
			Params:  "init?: Partial<" + spec + ">",
			Args:    "init",
			Super:   "init",
			Factory: lowerCamel(t.name),
		}

		for _, p := range t.props {
			iface.Fields = append(iface.Fields, fieldView{
				Doc:      docComment(p.Description, "  "),
				Key:      propertyKey(p.Name),
				Type:     specType(p.Type),
				Required: p.Required,
			})

			if builderMethods[p.Name] {
				continue
			}

			b.Methods = append(b.Methods, methodView{
				Doc:  docComment(p.Description, "  "),
				Name: propertyKey(p.Name),
				Type: builderParam(p.Type),
				Call: setCall(p.Name),
			})
		}

		view.Interfaces = append(view.Interfaces, iface)
		view.Builders = append(view.Builders, b)
	}

	line := e.runtimeImport([]string{runtimeBuilder})
	view.DeclImports = []string{line}
	view.ImplImports = []string{line}

	return view
}

// specType prints t with every reference pointing at the Spec interface.
func specType(t openapi.TsType) string {
	return t.Rename(func(ref openapi.TsType) string {
		return ref.Name + "Spec"
	}).String()
}

// builderParam prints t with every reference accepting either the builder
// class or a literal of its Spec interface.
func builderParam(t openapi.TsType) string {
	elem := openapi.TypeAny
	if t.Elem != nil {
		elem = *t.Elem
	}

	switch t.Kind {
	case openapi.KindRef:
		return t.Name + " | " + t.Name + "Spec"
	case openapi.KindArray:
		s := builderParam(elem)
		if strings.Contains(s, " | ") {
			return "(" + s + ")[]"
		}

		return s + "[]"
	case openapi.KindMap:
		return "Record<string, " + builderParam(elem) + ">"
	}

	return t.String()
}

// schemaType returns the single non-null type of s. Schemas without a type
// but with properties are objects.
func schemaType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}

	var types []string

	for _, t := range s.Types {
		if t != "null" {
			types = append(types, t)
		}
	}

	if len(types) == 1 {
		return types[0]
	}

	if len(types) == 0 && len(s.Properties) > 0 {
		return "object"
	}

	return ""
}

func isObject(s *jsonschema.Schema) bool {
	return s != nil && s.Ref == "" && schemaType(s) == "object" && len(s.Properties) > 0
}

func description(s *jsonschema.Schema) string {
	if s == nil {
		return ""
	}

	if s.Description != "" {
		return s.Description
	}

	return s.Title
}
