package emit_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/kubeschema/emit"
	"go.jacobcolvin.com/kubeschema/openapi"
)

func readSpecs(t *testing.T) map[string][]byte {
	t.Helper()

	specs := map[string][]byte{}

	for key, name := range map[string]string{
		"apis/apps/v1": "../testdata/openapi/apis-apps-v1.json",
		"api/v1":       "../testdata/openapi/api-v1.json",
	} {
		data, err := os.ReadFile(name)
		require.NoError(t, err)

		specs[key] = data
	}

	return specs
}

// classBlock returns the declaration of the named class, up to its closing
// brace.
func classBlock(t *testing.T, src, class string) string {
	t.Helper()

	start := strings.Index(src, "export declare class "+class+" ")
	require.GreaterOrEqual(t, start, 0, "class %s not declared", class)

	end := strings.Index(src[start:], "\n}\n")
	require.GreaterOrEqual(t, end, 0)

	return src[start : start+end]
}

func TestOpenAPIGolden(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("testdata/gadgets.json")
	require.NoError(t, err)

	files, err := emit.OpenAPI(openapi.ParseSpec(data), emit.WithVersion("v1.2.3"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"_common.d.ts",
		"_common.js",
		"example/v1.d.ts",
		"example/v1.js",
	}, paths(files))

	assertGolden(t, "testdata/golden/openapi", files)
}

func TestOpenAPIPodTemplateMethods(t *testing.T) {
	t.Parallel()

	files, err := emit.OpenAPI(openapi.ParseSpecs(readSpecs(t)))
	require.NoError(t, err)

	apps := content(t, files, "apps/v1.d.ts")

	deployment := classBlock(t, apps, "DeploymentBuilder")
	assert.Contains(t, deployment, "extends ResourceBuilder<Deployment>")
	assert.Contains(t, deployment, "  spec(value: DeploymentSpec): this;")
	assert.Contains(t, deployment, "  replicas(value: number): this;")
	assert.Contains(t, deployment, "  template(value: PodTemplateSpec): this;")
	assert.Contains(t, deployment, "  containers(value: Container[]): this;")
	assert.Contains(t, deployment, "  initContainers(value: Container[]): this;")

	revision := classBlock(t, apps, "ControllerRevisionBuilder")
	assert.Contains(t, revision, "  data(value: RawExtension): this;")
	assert.Contains(t, revision, "  revision(value: number): this;")
	assert.NotContains(t, revision, "containers")
	assert.NotContains(t, revision, "spec(")

	assert.Contains(t, apps, `import type { Container, PodTemplateSpec } from "../core/v1.js";`)
	assert.Contains(t, apps, "export declare function Deployment(name: string): DeploymentBuilder;")

	appsJS := content(t, files, "apps/v1.js")
	assert.Contains(t, appsJS, `super("apps/v1", "Deployment", name);`)
	assert.Contains(t, appsJS, `return this.setIn(["spec", "template", "spec", "containers"], value);`)
	assert.Contains(t, appsJS, `return this.setIn(["spec", "template", "spec", "initContainers"], value);`)
	assert.Contains(t, appsJS, `return this.setIn(["spec", "replicas"], value);`)

	core := content(t, files, "core/v1.d.ts")

	configMap := classBlock(t, core, "ConfigMapBuilder")
	assert.Contains(t, configMap, "  binaryData(value: Record<string, string>): this;")
	assert.Contains(t, configMap, "  immutable(value: boolean): this;")
	assert.NotContains(t, configMap, "containers")
	assert.NotContains(t, configMap, "metadata(")

	coreJS := content(t, files, "core/v1.js")
	assert.Contains(t, coreJS, `super("v1", "ConfigMap", name);`)
	assert.Contains(t, coreJS, `return this.set("binaryData", value);`)

	common := content(t, files, "_common.d.ts")
	assert.Contains(t, common, "export type Quantity = string;")
	assert.Contains(t, common, "export type IntOrString = number | string;")
	assert.Contains(t, common, "export interface ObjectMeta {")
}

func TestOpenAPIModules(t *testing.T) {
	t.Parallel()

	files, err := emit.OpenAPI(openapi.ParseSpecs(readSpecs(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"_common.d.ts",
		"_common.js",
		"apps/v1.d.ts",
		"apps/v1.js",
		"core/v1.d.ts",
		"core/v1.js",
	}, paths(files))

	for _, f := range files {
		assert.True(t, strings.HasPrefix(string(f.Content), "// Code generated by kubeschema. DO NOT EDIT.\n"), f.Path)
	}
}

func TestOpenAPINames(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		doc     string
		path    string
		want    []string
		notWant []string
	}{
		"import alias on collision": {
			doc: `{"components": {"schemas": {
				"io.k8s.api.apps.v1.Container": {"type": "object", "properties": {
					"base": {"$ref": "#/components/schemas/io.k8s.api.core.v1.Container"}}},
				"io.k8s.api.core.v1.Container": {"type": "object", "properties": {
					"name": {"type": "string"}}}
			}}}`,
			path: "apps/v1.d.ts",
			want: []string{
				`import type { Container as CoreV1Container } from "../core/v1.js";`,
				"  base?: CoreV1Container;",
				"  base(value: CoreV1Container): this;",
				"export interface Container {",
			},
		},
		"duplicate short names in one module": {
			doc: `{"components": {"schemas": {
				"com.example.v1.Thing": {"type": "object", "properties": {"a": {"type": "string"}}},
				"org.sample.v1.Thing": {"type": "object", "properties": {"b": {"type": "string"}}}
			}}}`,
			path: "_other.d.ts",
			want: []string{
				"export interface Thing {\n  a?: string;\n}",
				"export interface V1Thing {\n  b?: string;\n}",
			},
		},
		"dangling reference": {
			doc: `{"components": {"schemas": {
				"com.example.v1.Thing": {"type": "object", "properties": {
					"ref": {"$ref": "#/components/schemas/com.example.v1.Missing"},
					"refs": {"type": "array", "items": {"$ref": "#/components/schemas/com.example.v1.Missing"}}}}
			}}}`,
			path: "_other.d.ts",
			want: []string{
				"  ref?: any;",
				"  refs?: any[];",
				"export declare class ThingBuilder extends Builder<Thing> {",
			},
			notWant: []string{"import type"},
		},
		"reserved method names": {
			doc: `{"components": {"schemas": {
				"com.example.v1.Box": {"type": "object", "properties": {
					"build": {"type": "string"},
					"set": {"type": "string"},
					"item": {"$ref": "#/components/schemas/com.example.v1.Item"}}},
				"com.example.v1.Item": {"type": "object"}
			}}}`,
			path: "_other.d.ts",
			want: []string{
				"  build?: string;",
				"  set?: string;",
				"  item(value: Item): this;",
				"export interface Item {}",
			},
			notWant: []string{
				"build(value",
				"set(value",
			},
		},
		"scalar alias": {
			doc: `{"components": {"schemas": {
				"io.k8s.apimachinery.pkg.apis.meta.v1.Time": {"type": "string", "format": "date-time",
					"description": "Time is a wrapper around time.Time."}
			}}}`,
			path: "_common.d.ts",
			want: []string{
				"/** Time is a wrapper around time.Time. */\nexport type Time = string;",
			},
			notWant: []string{"interface", "Builder"},
		},
		"description escaping": {
			doc: `{"components": {"schemas": {
				"com.example.v1.Note": {"type": "object", "description": "Ends a comment: */ here.",
					"properties": {"text": {"type": "string"}}}
			}}}`,
			path: "_other.d.ts",
			want: []string{
				`/** Ends a comment: *\/ here. */`,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			files, err := emit.OpenAPI(openapi.ParseSpec([]byte(tc.doc)))
			require.NoError(t, err)

			got := content(t, files, tc.path)
			for _, want := range tc.want {
				assert.Contains(t, got, want)
			}

			for _, notWant := range tc.notWant {
				assert.NotContains(t, got, notWant)
			}
		})
	}
}

func TestOpenAPIRuntimeModule(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("testdata/gadgets.json")
	require.NoError(t, err)

	files, err := emit.OpenAPI(openapi.ParseSpec(data), emit.WithRuntimeModule("@acme/runtime"))
	require.NoError(t, err)

	for _, path := range []string{"example/v1.d.ts", "example/v1.js"} {
		assert.Contains(t, content(t, files, path),
			`import { Builder, ResourceBuilder } from "@acme/runtime";`)
	}
}

func TestOpenAPIResourceWithoutProperties(t *testing.T) {
	t.Parallel()

	infos := openapi.ParseSpec([]byte(`{"components": {"schemas": {
		"com.example.v1.Blob": {
			"x-kubernetes-group-version-kind": [{"group": "example.com", "version": "v1", "kind": "Blob"}]
		}
	}}}`))

	files, err := emit.OpenAPI(infos)
	require.NoError(t, err)

	decl := content(t, files, "example.com/v1.d.ts")
	assert.NotContains(t, decl, "export type Blob")
	assert.Contains(t, decl, "export interface Blob {}")
	assert.Contains(t, decl, "export declare class BlobBuilder extends ResourceBuilder<Blob> {")
	assert.Contains(t, decl, "export declare function Blob(name: string): BlobBuilder;")

	impl := content(t, files, "example.com/v1.js")
	assert.Contains(t, impl, "class BlobBuilder extends ResourceBuilder {")
	assert.Contains(t, impl, `super("example.com/v1", "Blob", name);`)
}

func TestOpenAPIEmpty(t *testing.T) {
	t.Parallel()

	files, err := emit.OpenAPI(nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestShouldGenerateBuilder(t *testing.T) {
	t.Parallel()

	gvk := openapi.ParseGVKs([]any{map[string]any{"group": "apps", "version": "v1", "kind": "Deployment"}})
	require.Len(t, gvk, 1)

	tcs := map[string]struct {
		info openapi.SchemaInfo
		want bool
	}{
		"scalars only": {
			info: openapi.SchemaInfo{Properties: []openapi.PropertyInfo{
				{Name: "a", Type: openapi.TypeString},
				{Name: "b", Type: openapi.MapOf(openapi.RefTo("x.Y"))},
			}},
			want: false,
		},
		"direct ref": {
			info: openapi.SchemaInfo{Properties: []openapi.PropertyInfo{
				{Name: "a", Type: openapi.RefTo("x.Y")},
			}},
			want: true,
		},
		"array of ref": {
			info: openapi.SchemaInfo{Properties: []openapi.PropertyInfo{
				{Name: "a", Type: openapi.ArrayOf(openapi.RefTo("x.Y"))},
			}},
			want: true,
		},
		"resource": {
			info: openapi.SchemaInfo{GVK: &gvk[0], Properties: []openapi.PropertyInfo{
				{Name: "spec", Type: openapi.RefTo("x.Y")},
			}},
			want: false,
		},
		"no properties": {
			info: openapi.SchemaInfo{},
			want: false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, emit.ShouldGenerateBuilder(tc.info))
		})
	}
}
