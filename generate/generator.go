package generate

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/kubeschema/chart"
	"go.jacobcolvin.com/kubeschema/crd"
	"go.jacobcolvin.com/kubeschema/emit"
	"go.jacobcolvin.com/kubeschema/openapi"
	"go.jacobcolvin.com/kubeschema/store"
)

// Output file names written next to the generated modules.
const (
	SchemaStoreFile   = "_schema.json"
	ValidationMapFile = "_validation.json"
)

// Sentinel errors returned by the generator.
var (
	ErrNoSchemas     = errors.New("no schemas found")
	ErrInvalidOption = errors.New("invalid option")
	ErrReadInput     = errors.New("read input")
	ErrWriteOutput   = errors.New("write output")
)

// Input is the raw material for one generation call.
type Input struct {
	// Specs maps discovery keys such as "apis/apps/v1" to OpenAPI v3
	// documents.
	Specs map[string][]byte
	// CRDs maps a source name to a YAML or JSON manifest holding one or more
	// CustomResourceDefinitions.
	CRDs map[string][]byte
	// Charts are rendered to charts/<name>.d.ts and charts/<name>.js.
	Charts []ChartInput
}

// ChartInput describes one chart. Schema takes precedence over Values; a
// chart with neither gets a permissive Values type.
type ChartInput struct {
	Name   string
	Schema []byte
	Values [][]byte
}

func (in Input) empty() bool {
	return len(in.Specs) == 0 && len(in.CRDs) == 0 && len(in.Charts) == 0
}

// Generator turns OpenAPI documents, CRDs and chart values into the schema
// store, the validation map and TypeScript modules.
type Generator struct {
	logger        *slog.Logger
	runtimeModule string
	version       string
	crdOpts       []crd.Option
	inferOpts     []chart.InferOption
	types         bool
	store         bool
}

// Option configures a [Generator].
type Option func(*Generator)

// NewGenerator creates a [Generator] with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger: slog.Default(),
		types:  true,
		store:  true,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// WithLogger sets the logger used for progress and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithRuntimeModule sets the import path of the runtime builder classes.
func WithRuntimeModule(module string) Option {
	return func(g *Generator) {
		g.runtimeModule = module
	}
}

// WithVersion sets the tool version stamped into generated headers.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithCRDOptions sets the options used to convert CRD manifests.
func WithCRDOptions(opts ...crd.Option) Option {
	return func(g *Generator) {
		g.crdOpts = opts
	}
}

// WithInferOptions sets the options used to infer chart schemas from values
// files.
func WithInferOptions(opts ...chart.InferOption) Option {
	return func(g *Generator) {
		g.inferOpts = opts
	}
}

// WithTypes toggles TypeScript output.
func WithTypes(enabled bool) Option {
	return func(g *Generator) {
		g.types = enabled
	}
}

// WithStore toggles the _schema.json and _validation.json outputs.
func WithStore(enabled bool) Option {
	return func(g *Generator) {
		g.store = enabled
	}
}

// Generate produces every output file for in. Paths are slash-separated and
// relative to the output directory.
//
// It fails with [ErrNoSchemas] when the OpenAPI and CRD inputs yield no
// named schema and no chart was given.
func (g *Generator) Generate(in Input) ([]emit.File, error) {
	if in.empty() {
		return nil, ErrNoSchemas
	}

	specs, err := g.specs(in)
	if err != nil {
		return nil, err
	}

	var files []emit.File

	if len(specs) > 0 || len(in.Charts) == 0 {
		files, err = g.apiFiles(specs)
		if err != nil {
			return nil, err
		}
	}

	for _, c := range in.Charts {
		out, err := g.chartFiles(c)
		if err != nil {
			return nil, err
		}

		files = append(files, out...)
	}

	return files, nil
}

// specs merges the OpenAPI documents with the converted CRDs. CRD documents
// are keyed "crds/<name>" so they sort after the built-in API.
func (g *Generator) specs(in Input) (map[string][]byte, error) {
	specs := maps.Clone(in.Specs)
	if specs == nil {
		specs = make(map[string][]byte)
	}

	for _, name := range slices.Sorted(maps.Keys(in.CRDs)) {
		opts := append(slices.Clone(g.crdOpts), crd.WithLogger(g.logger))

		doc, err := crd.ToOpenAPI(in.CRDs[name], opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrReadInput, name, err)
		}

		specs["crds/"+name] = doc
	}

	return specs, nil
}

func (g *Generator) apiFiles(specs map[string][]byte) ([]emit.File, error) {
	infos := openapi.ParseSpecs(specs)
	if len(infos) == 0 {
		return nil, ErrNoSchemas
	}

	g.logger.Debug("parsed schemas",
		slog.Int("documents", len(specs)),
		slog.Int("schemas", len(infos)),
	)

	var files []emit.File

	if g.store {
		out, err := g.storeFiles(specs)
		if err != nil {
			return nil, err
		}

		files = append(files, out...)
	}

	if g.types {
		out, err := emit.OpenAPI(infos, g.emitOptions()...)
		if err != nil {
			return nil, err
		}

		files = append(files, out...)
	}

	return files, nil
}

func (g *Generator) storeFiles(specs map[string][]byte) ([]emit.File, error) {
	st, err := store.BuildSchemaStore(specs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSchemas, err)
	}

	storeJSON, err := st.Encode()
	if err != nil {
		return nil, err
	}

	mapJSON, err := store.NewValidationMap(st).Encode()
	if err != nil {
		return nil, err
	}

	return []emit.File{
		{Path: SchemaStoreFile, Content: storeJSON},
		{Path: ValidationMapFile, Content: mapJSON},
	}, nil
}

func (g *Generator) chartFiles(c ChartInput) ([]emit.File, error) {
	var (
		root *jsonschema.Schema
		err  error
	)

	switch {
	case len(c.Schema) > 0:
		root, err = chart.LoadSchema(c.Schema)
	case len(c.Values) > 0:
		opts := append([]chart.InferOption{chart.WithLogger(g.logger)}, g.inferOpts...)
		root, err = chart.NewInferrer(opts...).Infer(c.Values...)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: chart %s: %w", ErrReadInput, c.Name, err)
	}

	if !g.types {
		return nil, nil
	}

	return emit.Chart(c.Name, root, g.emitOptions()...)
}

func (g *Generator) emitOptions() []emit.Option {
	opts := []emit.Option{
		emit.WithLogger(g.logger),
		emit.WithVersion(g.version),
	}

	if g.runtimeModule != "" {
		opts = append(opts, emit.WithRuntimeModule(g.runtimeModule))
	}

	return opts
}

// Write writes files below dir, creating directories as needed.
func (g *Generator) Write(dir string, files []emit.File) error {
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))

		err := os.MkdirAll(filepath.Dir(path), os.ModePerm)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}

		err = os.WriteFile(path, f.Content, 0o644)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}

		g.logger.Info("wrote file",
			slog.String("path", path),
			slog.Int("bytes", len(f.Content)),
		)
	}

	return nil
}
