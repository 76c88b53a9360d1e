package emit

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/template"
)

// DefaultRuntimeModule is the import path of the builder runtime.
const DefaultRuntimeModule = "kubeschema/runtime"

// Runtime classes the generated builders extend.
const (
	runtimeBuilder         = "Builder"
	runtimeResourceBuilder = "ResourceBuilder"
)

// ErrRender indicates a template failed to execute.
var ErrRender = errors.New("render")

var (
	//go:embed templates/*.tpl
	templateFS embed.FS

	templates = template.Must(template.ParseFS(templateFS, "templates/*.tpl"))
)

// File is one generated file. Path is slash separated and relative to the
// output directory.
type File struct {
	Path    string
	Content []byte
}

// Option configures an emitter.
type Option func(*emitter)

// WithRuntimeModule sets the module the generated code imports the builder
// runtime from.
func WithRuntimeModule(module string) Option {
	return func(e *emitter) {
		e.runtimeModule = module
	}
}

// WithVersion sets the generator version named in file headers.
func WithVersion(version string) Option {
	return func(e *emitter) {
		e.version = version
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *emitter) {
		e.logger = logger
	}
}

type emitter struct {
	logger        *slog.Logger
	runtimeModule string
	version       string
}

func newEmitter(opts []Option) *emitter {
	e := &emitter{
		runtimeModule: DefaultRuntimeModule,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.runtimeModule == "" {
		e.runtimeModule = DefaultRuntimeModule
	}

	return e
}

type fileView struct {
	Version     string
	DeclImports []string
	ImplImports []string
	Aliases     []aliasView
	Interfaces  []interfaceView
	Builders    []builderView
}

type aliasView struct {
	Doc  string
	Name string
	Type string
}

type interfaceView struct {
	Doc    string
	Name   string
	Fields []fieldView
}

type fieldView struct {
	Doc      string
	Key      string
	Type     string
	Required bool
}

type builderView struct {
	Doc     string
	Class   string
	Base    string
	Type    string
	Params  string
	Args    string
	Super   string
	Factory string
	Methods []methodView
}

type methodView struct {
	Doc  string
	Name string
	Type string
	Call string
}

// runtimeImport returns the import line for the runtime bindings, or "".
// Each binding is "Name" or "Name as Local".
func (e *emitter) runtimeImport(bindings []string) string {
	if len(bindings) == 0 {
		return ""
	}

	return fmt.Sprintf("import { %s } from %s;", strings.Join(bindings, ", "), strconv.Quote(e.runtimeModule))
}

// render executes both templates for view and returns the declaration and
// implementation files for the module at base.
func (e *emitter) render(base string, view *fileView) ([]File, error) {
	view.Version = e.version

	decl, err := execute("declarations.d.ts.tpl", view)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, base, err)
	}

	impl, err := execute("implementation.js.tpl", view)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, base, err)
	}

	e.logger.Debug("rendered module",
		slog.String("module", base),
		slog.Int("interfaces", len(view.Interfaces)+len(view.Aliases)),
		slog.Int("builders", len(view.Builders)),
	)

	return []File{
		{Path: base + ".d.ts", Content: []byte(decl)},
		{Path: base + ".js", Content: []byte(impl)},
	}, nil
}

func execute(name string, view *fileView) (string, error) {
	var sb strings.Builder

	err := templates.ExecuteTemplate(&sb, name, view)
	if err != nil {
		return "", err
	}

	return sb.String(), nil
}

func setCall(name string) string {
	return fmt.Sprintf("this.set(%s, value)", strconv.Quote(name))
}

func setInCall(path ...string) string {
	quoted := make([]string, len(path))
	for i, p := range path {
		quoted[i] = strconv.Quote(p)
	}

	return fmt.Sprintf("this.setIn([%s], value)", strings.Join(quoted, ", "))
}
