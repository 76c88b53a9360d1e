package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/kubeschema/generate"
)

func newGenerateCmd() *cobra.Command {
	cfg := generate.NewConfig()

	cmd := &cobra.Command{
		Use:   "generate [flags]",
		Short: "Generate the schema store and TypeScript modules",
		Long: `generate parses OpenAPI v3 documents (--spec), CRD manifests (--crd) and
Helm charts (--chart), and writes _schema.json, _validation.json and one
TypeScript module per API group-version and chart to the output directory.`,
		Example: `  kubeschema generate --spec apis/apps/v1=apps-v1.json --spec api/v1=core-v1.json
  kubeschema generate --crd crds.yaml --chart ./charts/web -o types`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGenerate(cfg)
		},
	}

	cfg.RegisterFlags(cmd.Flags())

	completionErr := cfg.RegisterCompletions(cmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	return cmd
}

func runGenerate(cfg *generate.Config) error {
	gen, err := cfg.NewGenerator()
	if err != nil {
		return err
	}

	in, err := cfg.ReadInput()
	if err != nil {
		return err
	}

	files, err := gen.Generate(in)
	if err != nil {
		return err
	}

	return gen.Write(cfg.Output, files)
}
