package version_test

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/kubeschema/version"
)

func TestGet(t *testing.T) {
	t.Parallel()

	info := version.Get()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Revision)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		info version.Info
		want string
	}{
		"without build date": {
			info: version.Info{
				Version:   "v1.2.3",
				Revision:  "abc123",
				GoVersion: "go1.25.0",
				Platform:  "linux/amd64",
			},
			want: "kubeschema v1.2.3 (revision abc123, go1.25.0 linux/amd64)",
		},
		"with build date": {
			info: version.Info{
				Version:   "dev",
				Revision:  "abc123-dirty",
				BuildDate: "2026-01-02",
				GoVersion: "go1.25.0",
				Platform:  "darwin/arm64",
			},
			want: "kubeschema dev (revision abc123-dirty, built 2026-01-02, go1.25.0 darwin/arm64)",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.info.String())
		})
	}
}

func TestInfoJSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(version.Info{
		Version:   "v1.2.3",
		Revision:  "abc123",
		GoVersion: "go1.25.0",
		Platform:  "linux/amd64",
	})
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"version":"v1.2.3","revision":"abc123","goVersion":"go1.25.0","platform":"linux/amd64"}`,
		string(out))
}
