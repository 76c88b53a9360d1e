package chart

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// unionSchemas returns a schema accepting what either a or b accepts, as far
// as structural inference can tell. Properties are unioned, types widened,
// and required names intersected.
func unionSchemas(a, b *jsonschema.Schema) *jsonschema.Schema {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	out := &jsonschema.Schema{
		Type:        widenType(effectiveType(a), effectiveType(b)),
		Title:       firstNonEmpty(a.Title, b.Title),
		Description: firstNonEmpty(a.Description, b.Description),
		Default:     a.Default,
		Required:    intersect(a.Required, b.Required),
	}

	if out.Default == nil {
		out.Default = b.Default
	}

	if a.Properties != nil || b.Properties != nil {
		out.Properties = make(map[string]*jsonschema.Schema)

		for _, src := range []*jsonschema.Schema{a, b} {
			for _, key := range PropertyNames(src) {
				prev, ok := out.Properties[key]
				if !ok {
					out.PropertyOrder = append(out.PropertyOrder, key)
				}

				out.Properties[key] = unionSchemas(prev, src.Properties[key])
			}
		}
	}

	switch {
	case a.AdditionalProperties == nil && b.AdditionalProperties == nil:
	case isFalseSchema(a.AdditionalProperties) && isFalseSchema(b.AdditionalProperties):
		out.AdditionalProperties = FalseSchema()
	default:
		out.AdditionalProperties = TrueSchema()
	}

	out.Items = unionSchemas(a.Items, b.Items)

	return out
}

func effectiveType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}

	if len(s.Types) == 1 {
		return s.Types[0]
	}

	return ""
}

func isFalseSchema(s *jsonschema.Schema) bool {
	return s != nil && s.Not != nil && s.Type == "" && s.Properties == nil
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}

	var out []string

	for _, s := range b {
		if set[s] {
			out = append(out, s)
		}
	}

	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}

	return b
}
