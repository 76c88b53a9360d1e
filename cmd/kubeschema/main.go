// Package main provides the CLI entry point for kubeschema, a tool that
// turns Kubernetes OpenAPI documents, CRDs and Helm chart values into typed
// TypeScript builders and validates manifests against the generated schema
// store.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/kubeschema/log"
	"go.jacobcolvin.com/kubeschema/profile"
)

func main() {
	profileCfg := profile.NewConfig()
	profiler := profileCfg.NewProfiler()

	rootCmd := newRootCmd(os.Stdout, os.Stderr, profileCfg, profiler)

	err := rootCmd.Execute()

	stopErr := profiler.Stop()
	if stopErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", stopErr)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer, profileCfg *profile.Config, profiler *profile.Profiler) *cobra.Command {
	logCfg := log.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "kubeschema",
		Short: "Generate typed TypeScript builders from Kubernetes schemas",
		Long: `kubeschema reads Kubernetes OpenAPI v3 documents, CustomResourceDefinitions
and Helm chart values, and generates a schema store, a validation map and
TypeScript modules with typed, chainable builders. The validate command checks
manifests against a generated schema store.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			handler, err := logCfg.NewHandler(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			slog.SetDefault(slog.New(handler))

			return profiler.Start()
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	profileCfg.RegisterFlags(rootCmd.PersistentFlags())

	for _, reg := range []func(*cobra.Command) error{
		logCfg.RegisterCompletions,
		profileCfg.RegisterCompletions,
	} {
		completionErr := reg(rootCmd)
		if completionErr != nil {
			fmt.Fprintf(stderr, "register completions: %v\n", completionErr)
		}
	}

	rootCmd.AddCommand(
		newGenerateCmd(),
		newValidateCmd(),
		newVersionCmd(),
	)

	return rootCmd
}
