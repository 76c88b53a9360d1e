package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/kubeschema/openapi"
	"go.jacobcolvin.com/kubeschema/store"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "testdata", "openapi", name))
	require.NoError(t, err)

	return data
}

func fixtureSpecs(t *testing.T) map[string][]byte {
	t.Helper()

	return map[string][]byte{
		"apis/apps/v1": readFixture(t, "apis-apps-v1.json"),
		"api/v1":       readFixture(t, "api-v1.json"),
	}
}

func TestBuildSchemaStoreRoundTrip(t *testing.T) {
	t.Parallel()

	built, err := store.BuildSchemaStore(fixtureSpecs(t))
	require.NoError(t, err)

	data, err := built.Encode()
	require.NoError(t, err)

	loaded, ok := store.LoadSchemaStore(data)
	require.True(t, ok)
	assert.Equal(t, built.Names(), loaded.Names())
	assert.Equal(t, built.GVKKeys(), loaded.GVKKeys())

	again, err := loaded.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestBuildSchemaStoreDeterministic(t *testing.T) {
	t.Parallel()

	first, err := store.BuildSchemaStore(fixtureSpecs(t))
	require.NoError(t, err)

	second, err := store.BuildSchemaStore(fixtureSpecs(t))
	require.NoError(t, err)

	a, err := first.Encode()
	require.NoError(t, err)

	b, err := second.Encode()
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
}

func TestBuildSchemaStoreRefs(t *testing.T) {
	t.Parallel()

	built, err := store.BuildSchemaStore(fixtureSpecs(t))
	require.NoError(t, err)

	data, err := built.Encode()
	require.NoError(t, err)

	var env map[string]any

	require.NoError(t, json.Unmarshal(data, &env))

	var refs []string

	var collect func(v any)

	collect = func(v any) {
		switch v := v.(type) {
		case map[string]any:
			for k, child := range v {
				if s, ok := child.(string); ok && k == "$ref" {
					refs = append(refs, s)
				}

				collect(child)
			}
		case []any:
			for _, child := range v {
				collect(child)
			}
		}
	}

	collect(env["schemas"])

	require.NotEmpty(t, refs)

	for _, ref := range refs {
		assert.NotContains(t, ref, "/")
		assert.NotContains(t, ref, "#")

		_, ok := built.Resolve(ref)
		assert.True(t, ok, "unresolved ref %q", ref)
	}
}

func TestBuildSchemaStoreGVKIndex(t *testing.T) {
	t.Parallel()

	built, err := store.BuildSchemaStore(fixtureSpecs(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"apps/v1:ControllerRevision",
		"apps/v1:Deployment",
		"v1:ConfigMap",
		"v1:Namespace",
	}, built.GVKKeys())

	tcs := map[string]struct {
		apiVersion string
		kind       string
		want       string
	}{
		"grouped": {
			apiVersion: "apps/v1", kind: "Deployment",
			want: "io.k8s.api.apps.v1.Deployment",
		},
		"core": {
			apiVersion: "v1", kind: "ConfigMap",
			want: "io.k8s.api.core.v1.ConfigMap",
		},
		"core with slash": {
			apiVersion: "/v1", kind: "Namespace",
			want: "io.k8s.api.core.v1.Namespace",
		},
		"unknown": {
			apiVersion: "apps/v1", kind: "StatefulSet",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := built.FullName(tc.apiVersion, tc.kind)
			if tc.want == "" {
				assert.False(t, ok)

				_, ok = built.Lookup(tc.apiVersion, tc.kind)
				assert.False(t, ok)

				return
			}

			require.True(t, ok)
			assert.Equal(t, tc.want, got)

			s, ok := built.Lookup(tc.apiVersion, tc.kind)
			require.True(t, ok)
			assert.NotEmpty(t, s.Properties)
		})
	}
}

func TestBuildSchemaStoreQuantity(t *testing.T) {
	t.Parallel()

	built, err := store.BuildSchemaStore(fixtureSpecs(t))
	require.NoError(t, err)

	q, ok := built.Resolve(openapi.QuantitySchema)
	require.True(t, ok)
	assert.Equal(t, openapi.FormatQuantity, q.Format)

	data, err := built.Encode()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), `"format":"quantity"`))
}

func TestBuildSchemaStoreKeepsNumbers(t *testing.T) {
	t.Parallel()

	built, err := store.BuildSchemaStore(fixtureSpecs(t))
	require.NoError(t, err)

	port, ok := built.Resolve("io.k8s.api.core.v1.ContainerPort")
	require.True(t, ok)

	prop := port.Properties["containerPort"]
	require.NotNil(t, prop.Minimum)
	require.NotNil(t, prop.Maximum)
	assert.InDelta(t, 1, *prop.Minimum, 0)
	assert.InDelta(t, 65535, *prop.Maximum, 0)

	data, err := built.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"maximum":65535`)
}

func TestBuildSchemaStoreDedup(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		specs    map[string]string
		wantDesc string
	}{
		"first kept": {
			specs: map[string]string{
				"a": `{"components": {"schemas": {"x.v1.Thing": {"description": "a"}}}}`,
				"b": `{"components": {"schemas": {"x.v1.Thing": {"description": "b"}}}}`,
			},
			wantDesc: "a",
		},
		"gvk replaces": {
			specs: map[string]string{
				"a": `{"components": {"schemas": {"x.v1.Thing": {"description": "a"}}}}`,
				"b": `{"components": {"schemas": {"x.v1.Thing": {"description": "b",
					"x-kubernetes-group-version-kind": [{"group": "x", "version": "v1", "kind": "Thing"}]}}}}`,
			},
			wantDesc: "b",
		},
		"gvk kept": {
			specs: map[string]string{
				"a": `{"components": {"schemas": {"x.v1.Thing": {"description": "a",
					"x-kubernetes-group-version-kind": [{"group": "x", "version": "v1", "kind": "Thing"}]}}}}`,
				"b": `{"components": {"schemas": {"x.v1.Thing": {"description": "b",
					"x-kubernetes-group-version-kind": [{"group": "x", "version": "v1", "kind": "Thing"}]}}}}`,
			},
			wantDesc: "a",
		},
		"swagger definitions": {
			specs: map[string]string{
				"a": `{"definitions": {"x.v1.Thing": {"description": "a"}}}`,
				"b": `not json`,
			},
			wantDesc: "a",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			specs := make(map[string][]byte, len(tc.specs))
			for k, v := range tc.specs {
				specs[k] = []byte(v)
			}

			built, err := store.BuildSchemaStore(specs)
			require.NoError(t, err)
			require.Equal(t, 1, built.Len())

			s, ok := built.Resolve("x.v1.Thing")
			require.True(t, ok)
			assert.Equal(t, tc.wantDesc, s.Description)
		})
	}
}

func TestBuildSchemaStoreNoSchemas(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		specs map[string][]byte
	}{
		"nil":         {specs: nil},
		"empty doc":   {specs: map[string][]byte{"a": []byte(`{}`)}},
		"invalid doc": {specs: map[string][]byte{"a": []byte(`nope`)}},
		"null schema": {specs: map[string][]byte{"a": []byte(`{"definitions": {"x": null}}`)}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := store.BuildSchemaStore(tc.specs)
			require.ErrorIs(t, err, store.ErrNoSchemas)
		})
	}
}

func TestBuildSchemaStoreMalformedSibling(t *testing.T) {
	t.Parallel()

	doc := `{"components": {"schemas": {
		"io.k8s.api.apps.v1.Deployment": {
			"type": "object",
			"properties": {"kind": {"type": "string"}},
			"x-kubernetes-group-version-kind": [{"group": "apps", "version": "v1", "kind": "Deployment"}]
		},
		"io.k8s.api.apps.v1.Odd": {"required": "name"},
		"io.k8s.api.apps.v1.Scalar": "string"
	}}}`

	built, err := store.BuildSchemaStore(map[string][]byte{"apis/apps/v1": []byte(doc)})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"io.k8s.api.apps.v1.Deployment",
		"io.k8s.api.apps.v1.Odd",
		"io.k8s.api.apps.v1.Scalar",
	}, built.Names())

	deploy, ok := built.Lookup("apps/v1", "Deployment")
	require.True(t, ok)
	assert.Contains(t, deploy.Properties, "kind")

	data, err := built.Encode()
	require.NoError(t, err)

	loaded, ok := store.LoadSchemaStore(data)
	require.True(t, ok)
	assert.Equal(t, built.Names(), loaded.Names())

	odd, ok := loaded.Resolve("io.k8s.api.apps.v1.Odd")
	require.True(t, ok)
	assert.Empty(t, odd.Required)
}

func TestLoadSchemaStore(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  bool
	}{
		"valid": {
			input: `{"version": 2, "gvk_index": {"v1:Thing": "x.Thing"}, "schemas": {"x.Thing": {"type": "object"}}}`,
			want:  true,
		},
		"empty maps": {
			input: `{"version": 2, "gvk_index": {}, "schemas": {}}`,
			want:  true,
		},
		"old version": {
			input: `{"version": 1, "gvk_index": {}, "schemas": {}}`,
		},
		"future version": {
			input: `{"version": 3, "gvk_index": {}, "schemas": {}}`,
		},
		"no version": {
			input: `{"gvk_index": {}, "schemas": {}}`,
		},
		"string version": {
			input: `{"version": "2", "gvk_index": {}, "schemas": {}}`,
		},
		"missing index": {
			input: `{"version": 2, "schemas": {}}`,
		},
		"missing schemas": {
			input: `{"version": 2, "gvk_index": {}}`,
		},
		"undecodable schema": {
			input: `{"version": 2, "gvk_index": {}, "schemas": {"x": {"required": "name"}}}`,
			want:  true,
		},
		"not json": {
			input: `version: 2`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := store.LoadSchemaStore([]byte(tc.input))
			assert.Equal(t, tc.want, ok)

			if !tc.want {
				assert.Nil(t, got)
			}
		})
	}
}
