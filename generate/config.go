package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/kubeschema/chart"
	"go.jacobcolvin.com/kubeschema/crd"
	"go.jacobcolvin.com/kubeschema/version"
)

// Chart file names looked up inside a chart directory.
const (
	chartSchemaFile = "values.schema.json"
	chartValuesFile = "values.yaml"
)

// Flags holds CLI flag names for generation configuration, allowing callers
// to customize flag names while keeping sensible defaults.
type Flags struct {
	Output         string
	Specs          string
	CRDs           string
	CRDVersion     string
	AllCRDVersions string
	Charts         string
	ChartStrict    string
	RuntimeModule  string
	Types          string
	Store          string
}

// NewConfig creates a new [Config] using these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags:  f,
		Output: "generated",
		Types:  true,
		Store:  true,
	}
}

// Config holds CLI flag values for generation.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.ReadInput] to load the named files and
// [Config.NewGenerator] to create a [Generator].
type Config struct {
	Flags          Flags
	Output         string
	CRDVersion     string
	RuntimeModule  string
	Specs          []string
	CRDs           []string
	Charts         []string
	AllCRDVersions bool
	ChartStrict    bool
	Types          bool
	Store          bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Output:         "output",
		Specs:          "spec",
		CRDs:           "crd",
		CRDVersion:     "crd-version",
		AllCRDVersions: "all-crd-versions",
		Charts:         "chart",
		ChartStrict:    "chart-strict",
		RuntimeModule:  "runtime-module",
		Types:          "types",
		Store:          "store",
	}

	return f.NewConfig()
}

// RegisterFlags adds generation flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Output, c.Flags.Output, "o", c.Output,
		"output directory")
	flags.StringArrayVar(&c.Specs, c.Flags.Specs, nil,
		"OpenAPI v3 document, as path or key=path (repeatable)")
	flags.StringArrayVar(&c.CRDs, c.Flags.CRDs, nil,
		"CustomResourceDefinition manifest (repeatable)")
	flags.StringVar(&c.CRDVersion, c.Flags.CRDVersion, "",
		"CRD version to convert instead of the storage version")
	flags.BoolVar(&c.AllCRDVersions, c.Flags.AllCRDVersions, false,
		"convert every served CRD version")
	flags.StringArrayVar(&c.Charts, c.Flags.Charts, nil,
		"chart directory or values file, as path or name=path (repeatable)")
	flags.BoolVar(&c.ChartStrict, c.Flags.ChartStrict, false,
		"disallow keys absent from inferred chart values")
	flags.StringVar(&c.RuntimeModule, c.Flags.RuntimeModule, "",
		"import path of the runtime builder classes")
	flags.BoolVar(&c.Types, c.Flags.Types, c.Types,
		"write TypeScript modules")
	flags.BoolVar(&c.Store, c.Flags.Store, c.Store,
		"write "+SchemaStoreFile+" and "+ValidationMapFile)
}

// RegisterCompletions registers shell completions for generation flags on
// cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Output,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Output, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{c.Flags.CRDVersion, c.Flags.RuntimeModule} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	return nil
}

// NewGenerator creates a [Generator] using this [Config].
func (c *Config) NewGenerator() (*Generator, error) {
	if c.CRDVersion != "" && c.AllCRDVersions {
		return nil, fmt.Errorf("%w: --%s and --%s are mutually exclusive",
			ErrInvalidOption, c.Flags.CRDVersion, c.Flags.AllCRDVersions)
	}

	if !c.Types && !c.Store {
		return nil, fmt.Errorf("%w: nothing to write with --%s=false and --%s=false",
			ErrInvalidOption, c.Flags.Types, c.Flags.Store)
	}

	var crdOpts []crd.Option

	if c.CRDVersion != "" {
		crdOpts = append(crdOpts, crd.WithVersion(c.CRDVersion))
	}

	if c.AllCRDVersions {
		crdOpts = append(crdOpts, crd.WithAllVersions(true))
	}

	opts := []Option{
		WithCRDOptions(crdOpts...),
		WithInferOptions(chart.WithStrict(c.ChartStrict)),
		WithTypes(c.Types),
		WithStore(c.Store),
	}

	if c.RuntimeModule != "" {
		opts = append(opts, WithRuntimeModule(c.RuntimeModule))
	}

	if version.Version != "" {
		opts = append(opts, WithVersion(version.Version))
	}

	return NewGenerator(opts...), nil
}

// ReadInput reads every file named by the --spec, --crd and --chart flags.
//
// A spec without an explicit key is keyed by its path. A chart without an
// explicit name is named after its directory. A chart directory is read as
// values.schema.json when present, else values.yaml. A chart file is read as
// a schema when its name contains ".schema.", else as values.
func (c *Config) ReadInput() (Input, error) {
	in := Input{
		Specs: make(map[string][]byte, len(c.Specs)),
		CRDs:  make(map[string][]byte, len(c.CRDs)),
	}

	for _, arg := range c.Specs {
		key, path := splitArg(arg)
		if key == "" {
			key = filepath.ToSlash(filepath.Clean(path))
		}

		if _, ok := in.Specs[key]; ok {
			return Input{}, fmt.Errorf("%w: duplicate spec key %q", ErrInvalidOption, key)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return Input{}, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		in.Specs[key] = data
	}

	for _, path := range c.CRDs {
		data, err := os.ReadFile(path)
		if err != nil {
			return Input{}, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		in.CRDs[filepath.ToSlash(filepath.Clean(path))] = data
	}

	for _, arg := range c.Charts {
		ci, err := readChart(arg)
		if err != nil {
			return Input{}, err
		}

		if slices.ContainsFunc(in.Charts, func(o ChartInput) bool { return o.Name == ci.Name }) {
			return Input{}, fmt.Errorf("%w: duplicate chart name %q", ErrInvalidOption, ci.Name)
		}

		in.Charts = append(in.Charts, ci)
	}

	return in, nil
}

func readChart(arg string) (ChartInput, error) {
	name, path := splitArg(arg)

	info, err := os.Stat(path)
	if err != nil {
		return ChartInput{}, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	dir, file := path, ""
	if !info.IsDir() {
		dir, file = filepath.Dir(path), filepath.Base(path)
	}

	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return ChartInput{}, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		name = filepath.Base(abs)
	}

	if !validChartName(name) {
		return ChartInput{}, fmt.Errorf("%w: invalid chart name %q", ErrInvalidOption, name)
	}

	ci := ChartInput{Name: name}

	if file == "" {
		file = chartSchemaFile

		_, err := os.Stat(filepath.Join(dir, file))
		if err != nil {
			file = chartValuesFile
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return ChartInput{}, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	if strings.Contains(file, ".schema.") {
		ci.Schema = data
	} else {
		ci.Values = [][]byte{data}
	}

	return ci, nil
}

// splitArg splits "key=path" into its parts. Without "=" the key is empty.
func splitArg(arg string) (string, string) {
	key, path, ok := strings.Cut(arg, "=")
	if !ok {
		return "", arg
	}

	return key, path
}

func validChartName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}
