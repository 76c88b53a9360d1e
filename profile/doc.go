// Package profile adds CPU and heap profiling to the kubeschema CLI.
//
// Generating types for a whole cluster's OpenAPI documents is CPU-bound, so
// the root command wraps every subcommand in a [Profiler]:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	p := cfg.NewProfiler()
//
//	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
//	    return p.Start()
//	}
//	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error {
//	    return p.Stop()
//	}
//
// Profiling is enabled with --cpu-profile=cpu.prof or
// --heap-profile=heap.prof.
package profile
