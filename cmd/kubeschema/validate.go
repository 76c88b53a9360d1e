package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/kubeschema/store"
	"go.jacobcolvin.com/kubeschema/validate"
)

var (
	errReadInput        = errors.New("read input")
	errInvalidDocument  = errors.New("invalid document")
	errValidationFailed = errors.New("validation failed")
)

type validateConfig struct {
	Store    string
	Map      string
	MaxDepth int
}

func (c *validateConfig) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Store, "store", "generated/_schema.json",
		"schema store written by generate (empty to skip)")
	flags.StringVar(&c.Map, "map", "generated/_validation.json",
		"validation map written by generate (empty to skip)")
	flags.IntVar(&c.MaxDepth, "max-depth", validate.DefaultMaxDepth,
		"maximum schema recursion depth")
}

func (c *validateConfig) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc("max-depth",
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		})
	if err != nil {
		return fmt.Errorf("registering max-depth completion: %w", err)
	}

	return nil
}

func newValidateCmd() *cobra.Command {
	cfg := &validateConfig{}

	cmd := &cobra.Command{
		Use:   "validate [flags] <file.yaml> [file2.yaml ...]",
		Short: "Validate manifests against a generated schema store",
		Long: `validate checks every YAML or JSON document in the given files (- for stdin)
against the schema store. Resources missing from the store fall back to the
validation map's quantity paths, then to a check of container resources.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cfg, cmd.InOrStdin(), cmd.OutOrStdout(), args)
		},
	}

	cfg.RegisterFlags(cmd.Flags())

	completionErr := cfg.RegisterCompletions(cmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	return cmd
}

func runValidate(cfg *validateConfig, stdin io.Reader, stdout io.Writer, args []string) error {
	opts := []validate.Option{validate.WithMaxDepth(cfg.MaxDepth)}

	if cfg.Store != "" {
		s, ok := loadOptional(cfg.Store, store.LoadSchemaStore)
		if ok {
			opts = append(opts, validate.WithSchemaStore(s))
		}
	}

	if cfg.Map != "" {
		m, ok := loadOptional(cfg.Map, store.LoadValidationMap)
		if ok {
			opts = append(opts, validate.WithValidationMap(m))
		}
	}

	v := validate.New(opts...)

	var failed int

	for _, arg := range args {
		data, err := readArg(arg, stdin)
		if err != nil {
			return err
		}

		docs, err := decodeDocuments(data)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}

		var errs validate.Errors

		err = v.Validate(docs)
		if errors.As(err, &errs) {
			for _, e := range errs {
				fmt.Fprintf(stdout, "%s: %v\n", arg, e)
			}

			failed += len(errs)
		}

		slog.Debug("validated file",
			slog.String("file", arg),
			slog.Int("documents", len(docs)),
			slog.Int("errors", len(errs)),
		)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d errors", errValidationFailed, failed)
	}

	return nil
}

// loadOptional reads and decodes an optional input. A missing or unusable
// file is logged and reported as unavailable.
func loadOptional[T any](path string, load func([]byte) (T, bool)) (T, bool) {
	var zero T

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skip validation input",
			slog.String("path", path),
			slog.Any("error", err),
		)

		return zero, false
	}

	out, ok := load(data)
	if !ok {
		slog.Warn("skip validation input",
			slog.String("path", path),
			slog.String("error", "unsupported or malformed file"),
		)
	}

	return out, ok
}

func readArg(arg string, stdin io.Reader) ([]byte, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %w", errReadInput, err)
		}

		return data, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errReadInput, err)
	}

	return data, nil
}

// decodeDocuments decodes every document of a YAML or JSON stream. Empty
// documents are dropped.
func decodeDocuments(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []any

	for {
		var doc any

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidDocument, err)
		}

		if doc != nil {
			docs = append(docs, doc)
		}
	}
}
