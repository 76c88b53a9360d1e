// Package log builds [log/slog] handlers from level and format names.
//
// Three formats are supported: [FormatJSON] and [FormatLogfmt] use the
// handlers from [log/slog], and [FormatText] uses the human-readable handler
// from charm.land/log. [DefaultFormat] picks text for terminals and logfmt
// for everything else.
//
// Typical usage creates a [Config], registers flags, then installs the
// handler at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
package log
