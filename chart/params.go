package chart

import (
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	paramRe      = regexp.MustCompile(`^\s*##\s*@param\s+(\S+)\s*(?:\[(.*?)\])?\s*(.*)$`)
	skipRe       = regexp.MustCompile(`^\s*##\s*@skip\s+(\S+)`)
	arrayIndexRe = regexp.MustCompile(`\[\d+\]`)
)

// param is one readme-generator "## @param" annotation.
type param struct {
	description string
	typeName    string
}

// annotations holds the "## @param" and "## @skip" lines of one values
// file, keyed by dotted key path with array indices removed.
type annotations struct {
	params map[string]param
	skips  map[string]bool
}

func parseAnnotations(content []byte) annotations {
	a := annotations{
		params: make(map[string]param),
		skips:  make(map[string]bool),
	}

	for line := range strings.SplitSeq(string(content), "\n") {
		if m := skipRe.FindStringSubmatch(line); m != nil {
			a.skips[keyPath(m[1])] = true

			continue
		}

		if m := paramRe.FindStringSubmatch(line); m != nil {
			a.params[keyPath(m[1])] = param{
				description: strings.TrimSpace(m[3]),
				typeName:    paramType(m[2]),
			}
		}
	}

	return a
}

// apply overrides the inferred schema s with p. A type hint never replaces
// an object that has properties.
func (p param) apply(s *jsonschema.Schema) {
	if p.description != "" {
		s.Description = p.description
	}

	if p.typeName == "" || s.Properties != nil {
		return
	}

	s.Type = p.typeName

	if p.typeName != typeArray {
		s.Items = nil
	}
}

func keyPath(path string) string {
	return arrayIndexRe.ReplaceAllString(path, "")
}

// paramType returns the type named in a modifier list such as
// "string, nullable", or "" when there is none.
func paramType(modifiers string) string {
	for part := range strings.SplitSeq(modifiers, ",") {
		switch part = strings.TrimSpace(part); part {
		case typeString, typeArray, typeObject, typeNumber, typeInteger, typeBoolean:
			return part
		}
	}

	return ""
}
