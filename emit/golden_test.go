package emit_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/kubeschema/emit"
)

var update = flag.Bool("update", false, "update golden files")

// assertGolden compares every generated file against the golden file at the
// same relative path under dir. When -update is set, it writes the golden
// files instead.
func assertGolden(t *testing.T, dir string, files []emit.File) {
	t.Helper()

	for _, f := range files {
		goldenPath := filepath.Join(dir, filepath.FromSlash(f.Path))

		if *update {
			require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0o755))
			require.NoError(t, os.WriteFile(goldenPath, f.Content, 0o644))

			continue
		}

		want, err := os.ReadFile(goldenPath)
		require.NoError(t, err, "golden file %s not found; run with -update to create", goldenPath)

		assert.Equal(t, string(want), string(f.Content), goldenPath)
	}
}

func paths(files []emit.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}

	return out
}

func content(t *testing.T, files []emit.File, path string) string {
	t.Helper()

	for _, f := range files {
		if f.Path == path {
			return string(f.Content)
		}
	}

	require.Failf(t, "file not generated", "%s not in %v", path, paths(files))

	return ""
}
