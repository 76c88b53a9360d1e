package chart

import (
	"strings"

	"github.com/goccy/go-yaml/ast"
)

const (
	typeBoolean = "boolean"
	typeInteger = "integer"
	typeNumber  = "number"
	typeString  = "string"
	typeArray   = "array"
	typeObject  = "object"
)

// scalarType returns the JSON Schema type of a resolved node, or "" for
// null.
func scalarType(node ast.Node) string {
	switch node.(type) {
	case *ast.BoolNode:
		return typeBoolean
	case *ast.IntegerNode:
		return typeInteger
	case *ast.FloatNode, *ast.InfinityNode, *ast.NanNode:
		return typeNumber
	case *ast.StringNode, *ast.LiteralNode:
		return typeString
	case *ast.SequenceNode:
		return typeArray
	case *ast.MappingNode, *ast.MappingValueNode:
		return typeObject
	}

	return ""
}

// widenType returns the narrowest type covering a and b, or "" when none
// does.
func widenType(a, b string) string {
	switch {
	case a == b:
		return a
	case a == "":
		return b
	case b == "":
		return a
	case (a == typeInteger && b == typeNumber) || (a == typeNumber && b == typeInteger):
		return typeNumber
	}

	return ""
}

// description returns the comment attached to a key: the head comment, then
// a trailing comment on the value, then one on the key.
func description(mvn *ast.MappingValueNode) string {
	groups := []*ast.CommentGroupNode{mvn.GetComment()}

	if mvn.Value != nil {
		groups = append(groups, mvn.Value.GetComment())
	}

	if key, ok := mvn.Key.(ast.Node); ok && key != nil {
		groups = append(groups, key.GetComment())
	}

	for _, g := range groups {
		if g == nil {
			continue
		}

		if desc := commentText(g.String()); desc != "" {
			return desc
		}
	}

	return ""
}

// commentText joins the lines of the last paragraph of a comment block,
// stripped of "#" markers. helm-docs "--" markers are removed and "@"
// annotation lines are dropped.
func commentText(raw string) string {
	lines := strings.Split(raw, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		if stripMarker(lines[i]) == "" && i < len(lines)-1 {
			lines = lines[i+1:]

			break
		}
	}

	parts := make([]string, 0, len(lines))

	for _, line := range lines {
		text := stripMarker(line)

		switch {
		case text == "", text == "--", strings.HasPrefix(text, "@"):
			continue
		case strings.HasPrefix(text, "-- "):
			text = strings.TrimSpace(text[len("-- "):])
		}

		parts = append(parts, text)
	}

	return strings.Join(parts, " ")
}

func stripMarker(line string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
}
