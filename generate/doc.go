// Package generate runs one generation pass: it parses OpenAPI documents and
// CRD manifests, builds the schema store and validation map, and renders the
// TypeScript modules for the API and for any charts.
//
// Outputs are returned as [emit.File] values with slash-separated paths, so
// callers can inspect them before [Generator.Write] puts them on disk:
//
//	_schema.json
//	_validation.json
//	_common.d.ts, _common.js
//	_other.d.ts, _other.js
//	<group>/<version>.d.ts, <group>/<version>.js
//	charts/<chart>.d.ts, charts/<chart>.js
//
// CLI applications create a [Config], register its flags, and then call
// [Config.ReadInput] and [Config.NewGenerator]:
//
//	cfg := generate.NewConfig()
//	cfg.RegisterFlags(cmd.Flags())
//
//	in, err := cfg.ReadInput()
//	gen, err := cfg.NewGenerator()
//	files, err := gen.Generate(in)
//	err = gen.Write(cfg.Output, files)
package generate
