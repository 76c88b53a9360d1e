package validate

import (
	"encoding/json"
	"log/slog"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"k8s.io/kube-openapi/pkg/validation/spec"

	"go.jacobcolvin.com/kubeschema/openapi"
	"go.jacobcolvin.com/kubeschema/quantity"
	"go.jacobcolvin.com/kubeschema/store"
)

// DefaultMaxDepth is the default recursion limit.
const DefaultMaxDepth = 64

// Validator checks documents against a schema store, a validation map, or
// neither.
type Validator struct {
	store    *store.SchemaStore
	vmap     *store.ValidationMap
	logger   *slog.Logger
	maxDepth int
}

// Option configures a [Validator].
type Option func(*Validator)

// WithSchemaStore sets the schema store used for full validation.
func WithSchemaStore(s *store.SchemaStore) Option {
	return func(v *Validator) {
		v.store = s
	}
}

// WithValidationMap sets the quantity path map used when the schema store
// cannot resolve a document.
func WithValidationMap(m *store.ValidationMap) Option {
	return func(v *Validator) {
		v.vmap = m
	}
}

// WithMaxDepth sets the recursion limit. Values below one are ignored.
func WithMaxDepth(depth int) Option {
	return func(v *Validator) {
		if depth > 0 {
			v.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a [Validator].
func New(opts ...Option) *Validator {
	v := &Validator{
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate validates documents with a validator backed by s, which may be
// nil.
func Validate(docs []any, s *store.SchemaStore) error {
	return New(WithSchemaStore(s)).Validate(docs)
}

// Validate checks every document and returns nil, or [Errors] listing every
// problem found.
func (v *Validator) Validate(docs []any) error {
	w := &walker{
		Validator: v,
		regexps:   make(map[string]*regexp.Regexp),
	}

	for i, doc := range docs {
		w.docIndex = i

		apiVersion, kind := typeMeta(doc)

		if v.store != nil {
			if schema, ok := v.store.Lookup(apiVersion, kind); ok {
				v.logDocument(i, apiVersion, kind, "store")
				w.check(schema, doc, store.RootPath, 0)

				continue
			}
		}

		if v.vmap != nil {
			if key := openapi.APIVersionKey(apiVersion, kind); v.vmap.Has(key) {
				v.logDocument(i, apiVersion, kind, "map")

				for _, pattern := range v.vmap.QuantityPaths(key) {
					w.checkQuantityPath(doc, parsePattern(pattern), store.RootPath, 0)
				}

				continue
			}
		}

		v.logDocument(i, apiVersion, kind, "heuristic")
		w.heuristic(doc, store.RootPath, 0)
	}

	if len(w.errs) == 0 {
		return nil
	}

	return w.errs
}

func (v *Validator) logDocument(index int, apiVersion, kind, tier string) {
	v.logger.Debug("validate document",
		slog.Int("index", index),
		slog.String("apiVersion", apiVersion),
		slog.String("kind", kind),
		slog.String("tier", tier),
	)
}

// walker holds the state of one Validate call.
type walker struct {
	*Validator

	regexps  map[string]*regexp.Regexp
	errs     Errors
	docIndex int
}

func (w *walker) add(err *Error) {
	err.DocIndex = w.docIndex
	w.errs = append(w.errs, err)
}

func (w *walker) check(s *spec.Schema, v any, path string, depth int) {
	if s == nil || v == nil || depth > w.maxDepth {
		return
	}

	if name := openapi.RefName(s); name != "" {
		if target, ok := w.store.Resolve(name); ok {
			w.check(target, v, path, depth+1)
		}

		return
	}

	for i := range s.AllOf {
		w.check(&s.AllOf[i], v, path, depth+1)
	}

	if openapi.IsIntOrString(s) {
		if !isNumber(v) && !isString(v) {
			w.add(&Error{Kind: TypeMismatch, Path: path, Expected: "integer|string", Got: typeName(v), Value: v})
		}

		return
	}

	if s.Format == openapi.FormatQuantity {
		w.checkQuantity(v, path)

		return
	}

	if len(s.Type) > 0 && !slices.ContainsFunc(s.Type, func(t string) bool { return hasType(t, v) }) {
		w.add(&Error{Kind: TypeMismatch, Path: path, Expected: strings.Join(s.Type, "|"), Got: typeName(v), Value: v})

		return
	}

	w.checkEnum(s, v, path)
	w.checkBounds(s, v, path)
	w.checkPattern(s, v, path)

	switch v := v.(type) {
	case map[string]any:
		for _, name := range s.Required {
			if _, ok := v[name]; !ok {
				w.add(&Error{Kind: MissingRequired, Path: path, Property: name})
			}
		}

		for _, key := range slices.Sorted(maps.Keys(v)) {
			if prop, ok := s.Properties[key]; ok {
				w.check(&prop, v[key], childPath(path, key), depth+1)
			} else if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
				w.check(s.AdditionalProperties.Schema, v[key], childPath(path, key), depth+1)
			}
		}
	case []any:
		if s.Items != nil && s.Items.Schema != nil {
			for i, item := range v {
				w.check(s.Items.Schema, item, indexPath(path, i), depth+1)
			}
		}
	}
}

func (w *walker) checkEnum(s *spec.Schema, v any, path string) {
	str, ok := v.(string)
	if !ok || len(s.Enum) == 0 {
		return
	}

	allowed := make([]string, 0, len(s.Enum))

	for _, e := range s.Enum {
		es, ok := e.(string)
		if !ok {
			continue
		}

		if es == str {
			return
		}

		allowed = append(allowed, es)
	}

	if len(allowed) == 0 {
		return
	}

	w.add(&Error{Kind: InvalidEnum, Path: path, Value: v, Allowed: allowed})
}

func (w *walker) checkBounds(s *spec.Schema, v any, path string) {
	n, ok := toFloat(v)
	if !ok {
		return
	}

	if s.Minimum != nil && (n < *s.Minimum || (s.ExclusiveMinimum && n == *s.Minimum)) {
		w.add(&Error{Kind: BelowMinimum, Path: path, Value: v, Limit: s.Minimum})
	}

	if s.Maximum != nil && (n > *s.Maximum || (s.ExclusiveMaximum && n == *s.Maximum)) {
		w.add(&Error{Kind: AboveMaximum, Path: path, Value: v, Limit: s.Maximum})
	}
}

func (w *walker) checkPattern(s *spec.Schema, v any, path string) {
	str, ok := v.(string)
	if !ok || s.Pattern == "" {
		return
	}

	re := w.compile(s.Pattern)
	if re == nil || re.MatchString(str) {
		return
	}

	w.add(&Error{Kind: PatternMismatch, Path: path, Value: v, Pattern: s.Pattern})
}

// compile compiles pattern once per call. Invalid patterns are cached as nil.
func (w *walker) compile(pattern string) *regexp.Regexp {
	if re, ok := w.regexps[pattern]; ok {
		return re
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		w.logger.Debug("ignore invalid pattern",
			slog.String("pattern", pattern),
			slog.Any("error", err),
		)

		re = nil
	}

	w.regexps[pattern] = re

	return re
}

// checkQuantity accepts null, numbers and valid quantity strings.
func (w *walker) checkQuantity(v any, path string) {
	switch q := v.(type) {
	case nil:
	case string:
		if !quantity.IsValid(q) {
			w.add(&Error{Kind: InvalidQuantity, Path: path, Value: v})
		}
	default:
		if !isNumber(v) {
			w.add(&Error{Kind: TypeMismatch, Path: path, Expected: "quantity", Got: typeName(v), Value: v})
		}
	}
}

func typeMeta(doc any) (string, string) {
	m, ok := doc.(map[string]any)
	if !ok {
		return "", ""
	}

	apiVersion, _ := m["apiVersion"].(string)
	kind, _ := m["kind"].(string)

	return apiVersion, kind
}

func hasType(typ string, v any) bool {
	switch typ {
	case "null":
		return v == nil
	case "boolean":
		return isBool(v)
	case "string":
		return isString(v)
	case "integer":
		return isInteger(v)
	case "number":
		return isNumber(v)
	case "object":
		_, ok := v.(map[string]any)

		return ok
	case "array":
		_, ok := v.([]any)

		return ok
	}

	return true
}

func typeName(v any) string {
	switch {
	case v == nil:
		return "null"
	case isBool(v):
		return "boolean"
	case isString(v):
		return "string"
	case isInteger(v):
		return "integer"
	case isNumber(v):
		return "number"
	}

	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}

	return "unknown"
}

func isBool(v any) bool {
	_, ok := v.(bool)

	return ok
}

func isString(v any) bool {
	_, ok := v.(string)

	return ok
}

func isNumber(v any) bool {
	_, ok := toFloat(v)

	return ok
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}
	}

	f, ok := toFloat(v)

	return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
}

// toFloat converts the numeric types produced by JSON and YAML decoders.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	}

	return 0, false
}

func childPath(path, key string) string {
	if isSimpleKey(key) {
		return path + "." + key
	}

	return path + "[" + strconv.Quote(key) + "]"
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func isSimpleKey(key string) bool {
	if key == "" {
		return false
	}

	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}

	return true
}
