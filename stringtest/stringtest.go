// Package stringtest builds expected text for tests of generated output.
package stringtest

import "strings"

// Input strips one leading and one trailing newline from s and removes the
// indentation shared by its non-blank lines. Whitespace-only lines become
// empty. Use it to write YAML documents and expected output as indented raw
// string literals.
func Input(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")

	lines := strings.Split(s, "\n")

	var (
		indent string
		seen   bool
	)

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		ws := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !seen {
			indent, seen = ws, true

			continue
		}

		indent = commonPrefix(indent, ws)
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""

			continue
		}

		lines[i] = strings.TrimPrefix(line, indent)
	}

	return strings.Join(lines, "\n")
}

// JoinLF joins lines with LF line endings, as every generated file uses.
//
//	want := stringtest.JoinLF(
//		"export interface ImageSpec {",
//		"  tag?: string;",
//		"}",
//	)
func JoinLF(lines ...string) string {
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return a[:i]
		}
	}

	return a[:n]
}
