package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/google/jsonschema-go/jsonschema"
)

// ErrInvalidYAML indicates a values file could not be parsed.
var ErrInvalidYAML = errors.New("invalid yaml")

// Draft is the $schema written on inferred root schemas.
const Draft = "http://json-schema.org/draft-07/schema#"

// Inferrer builds a JSON Schema from the structure of values files.
type Inferrer struct {
	logger      *slog.Logger
	title       string
	description string
	strict      bool
}

// InferOption configures an [Inferrer].
type InferOption func(*Inferrer)

// WithTitle sets the root schema title.
func WithTitle(title string) InferOption {
	return func(i *Inferrer) {
		i.title = title
	}
}

// WithDescription sets the root schema description.
func WithDescription(desc string) InferOption {
	return func(i *Inferrer) {
		i.description = desc
	}
}

// WithStrict disallows additional properties on inferred objects.
func WithStrict(strict bool) InferOption {
	return func(i *Inferrer) {
		i.strict = strict
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) InferOption {
	return func(i *Inferrer) {
		i.logger = logger
	}
}

// NewInferrer creates an [Inferrer].
func NewInferrer(opts ...InferOption) *Inferrer {
	i := &Inferrer{logger: slog.Default()}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// InferSchema infers a schema from values files with default options.
func InferSchema(inputs ...[]byte) (*jsonschema.Schema, error) {
	return NewInferrer().Infer(inputs...)
}

// Infer returns the union schema of every input. Empty input yields a
// schema that accepts everything.
func (i *Inferrer) Infer(inputs ...[]byte) (*jsonschema.Schema, error) {
	var result *jsonschema.Schema

	for n, input := range inputs {
		s, err := i.inferOne(input)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", n, err)
		}

		result = unionSchemas(result, s)
	}

	if result == nil {
		result = TrueSchema()
	}

	result.Schema = Draft

	if i.title != "" {
		result.Title = i.title
	}

	if i.description != "" {
		result.Description = i.description
	}

	if (result.Type == typeObject || result.Properties != nil) && result.AdditionalProperties == nil {
		result.AdditionalProperties = i.additional()
	}

	return result, nil
}

func (i *Inferrer) inferOne(input []byte) (*jsonschema.Schema, error) {
	if strings.TrimSpace(string(input)) == "" {
		return TrueSchema(), nil
	}

	file, err := parser.ParseBytes(input, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return TrueSchema(), nil
	}

	if len(file.Docs) > 1 {
		i.logger.Debug("ignore extra yaml documents",
			slog.Int("documents", len(file.Docs)),
		)
	}

	w := &walker{
		Inferrer:    i,
		anchors:     collectAnchors(file.Docs[0].Body),
		visiting:    make(map[*ast.MappingNode]bool),
		annotations: parseAnnotations(input),
	}

	return w.node(file.Docs[0].Body), nil
}

func (i *Inferrer) additional() *jsonschema.Schema {
	if i.strict {
		return FalseSchema()
	}

	return TrueSchema()
}

// walker infers schemas for one document.
type walker struct {
	*Inferrer

	anchors  map[string]ast.Node
	visiting map[*ast.MappingNode]bool
	annotations
	path []string
}

func (w *walker) resolve(node ast.Node) ast.Node {
	for node != nil {
		switch n := node.(type) {
		case *ast.TagNode:
			node = n.Value
		case *ast.AnchorNode:
			node = n.Value
		case *ast.AliasNode:
			// Unknown aliases read as null.
			node = w.anchors[n.Value.String()]
		default:
			return node
		}
	}

	return nil
}

func (w *walker) node(node ast.Node) *jsonschema.Schema {
	switch n := w.resolve(node).(type) {
	case nil:
		return TrueSchema()
	case *ast.MappingNode:
		// Aliases may point back into their own anchor.
		if w.visiting[n] {
			return TrueSchema()
		}

		w.visiting[n] = true
		defer delete(w.visiting, n)

		return w.mapping(n.Values)
	case *ast.MappingValueNode:
		return w.mapping([]*ast.MappingValueNode{n})
	case *ast.SequenceNode:
		return &jsonschema.Schema{Type: typeArray, Items: w.items(n)}
	default:
		return &jsonschema.Schema{Type: scalarType(n)}
	}
}

func (w *walker) mapping(values []*ast.MappingValueNode) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:                 typeObject,
		Properties:           make(map[string]*jsonschema.Schema),
		AdditionalProperties: w.additional(),
	}

	// Explicit keys win over merged ones regardless of position.
	var merges []ast.Node

	for _, mvn := range values {
		if _, ok := mvn.Key.(*ast.MergeKeyNode); ok {
			merges = append(merges, mvn.Value)

			continue
		}

		key := mvn.Key.String()

		w.path = append(w.path, key)
		path := strings.Join(w.path, ".")
		child := w.node(mvn.Value)
		w.path = w.path[:len(w.path)-1]

		if w.skips[path] {
			continue
		}

		if p, ok := w.params[path]; ok {
			p.apply(child)
		}

		if child.Description == "" {
			child.Description = description(mvn)
		}

		if _, dup := s.Properties[key]; !dup {
			s.PropertyOrder = append(s.PropertyOrder, key)
		}

		s.Properties[key] = child
	}

	for _, m := range merges {
		for _, src := range w.mergeSources(m) {
			for _, key := range PropertyNames(src) {
				if _, ok := s.Properties[key]; !ok {
					s.Properties[key] = src.Properties[key]
					s.PropertyOrder = append(s.PropertyOrder, key)
				}
			}
		}
	}

	if len(s.Properties) == 0 {
		s.Properties = nil
		s.PropertyOrder = nil
	}

	return s
}

// mergeSources returns the object schemas named by a merge key value, which
// is either a mapping or a sequence of mappings.
func (w *walker) mergeSources(value ast.Node) []*jsonschema.Schema {
	switch n := w.resolve(value).(type) {
	case *ast.MappingNode:
		return []*jsonschema.Schema{w.node(n)}
	case *ast.SequenceNode:
		var out []*jsonschema.Schema

		for _, v := range n.Values {
			if m, ok := w.resolve(v).(*ast.MappingNode); ok {
				out = append(out, w.node(m))
			}
		}

		return out
	}

	return nil
}

func (w *walker) items(seq *ast.SequenceNode) *jsonschema.Schema {
	if len(seq.Values) == 0 {
		return nil
	}

	var (
		union   *jsonschema.Schema
		typ     string
		objects = true
	)

	for n, v := range seq.Values {
		resolved := w.resolve(v)

		if _, ok := resolved.(*ast.MappingNode); !ok {
			objects = false
		}

		t := scalarType(resolved)
		if n == 0 {
			typ = t
		} else {
			typ = widenType(typ, t)
		}
	}

	if !objects {
		if typ == "" {
			return nil
		}

		return &jsonschema.Schema{Type: typ}
	}

	for _, v := range seq.Values {
		union = unionSchemas(union, w.node(v))
	}

	return union
}

func collectAnchors(root ast.Node) map[string]ast.Node {
	v := anchorCollector{}
	ast.Walk(v, root)

	return v
}

type anchorCollector map[string]ast.Node

// Visit implements [ast.Visitor].
func (c anchorCollector) Visit(node ast.Node) ast.Visitor {
	if anchor, ok := node.(*ast.AnchorNode); ok {
		c[anchor.Name.String()] = anchor.Value
	}

	return c
}
