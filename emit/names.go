package emit

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Method names owned by the runtime builder classes.
var builderMethods = map[string]bool{
	"build":       true,
	"constructor": true,
	"set":         true,
	"setIn":       true,
	"toJSON":      true,
}

// JavaScript reserved words, which cannot name a function.
var reservedWords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true,
	"in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true,
	"protected": true, "public": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

// PascalCase converts s to PascalCase. Every rune that is not a letter or
// a digit separates words and is dropped.
func PascalCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	var sb strings.Builder

	for _, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		sb.WriteRune(unicode.ToUpper(r))
		sb.WriteString(word[size:])
	}

	return sb.String()
}

// lowerCamel lower-cases the first rune of name and suffixes reserved
// words with an underscore.
func lowerCamel(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}

	out := string(unicode.ToLower(r)) + name[size:]
	if reservedWords[out] {
		out += "_"
	}

	return out
}

// typeName turns a property or definition key into a type identifier.
func typeName(key string) string {
	name := PascalCase(key)
	if name == "" {
		return "Type"
	}

	if r, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(r) {
		return "_" + name
	}

	return name
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return true
}

// propertyKey returns name as an object or class member key, quoted when it
// is not a plain identifier.
func propertyKey(name string) string {
	if isIdentifier(name) {
		return name
	}

	return strconv.Quote(name)
}

// docComment renders desc as a JSDoc block at the given indentation,
// including the trailing newline. It returns "" for an empty description.
func docComment(desc, indent string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}

	desc = strings.ReplaceAll(desc, "*/", "*\\/")

	lines := strings.Split(desc, "\n")
	if len(lines) == 1 {
		return indent + "/** " + desc + " */\n"
	}

	var sb strings.Builder

	sb.WriteString(indent + "/**\n")

	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			sb.WriteString(indent + " *\n")

			continue
		}

		sb.WriteString(indent + " * " + line + "\n")
	}

	sb.WriteString(indent + " */\n")

	return sb.String()
}

// namer hands out identifiers that are unique within one generated file.
// A name is only free when every name+suffix is free as well, so derived
// names (a builder class, a Spec interface) never collide either.
type namer struct {
	used     map[string]bool
	suffixes []string
}

func newNamer(suffixes ...string) *namer {
	return &namer{
		used:     make(map[string]bool),
		suffixes: append([]string{""}, suffixes...),
	}
}

func (n *namer) reserve(names ...string) {
	for _, name := range names {
		n.used[name] = true
	}
}

func (n *namer) free(name string) bool {
	for _, s := range n.suffixes {
		if n.used[name+s] {
			return false
		}
	}

	return true
}

func (n *namer) take(name string) string {
	for _, s := range n.suffixes {
		n.used[name+s] = true
	}

	return name
}

// unique returns base when it is free. Otherwise it tries base prefixed by
// a growing run of prefixes, nearest first, and finally a numeric suffix.
func (n *namer) unique(base string, prefixes ...string) string {
	if n.free(base) {
		return n.take(base)
	}

	name := base
	for _, prefix := range prefixes {
		name = prefix + name
		if n.free(name) {
			return n.take(name)
		}
	}

	for i := 2; ; i++ {
		name = base + strconv.Itoa(i)
		if n.free(name) {
			return n.take(name)
		}
	}
}
