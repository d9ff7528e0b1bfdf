// Package log provides a leveled structured logger based on [log/slog].
//
// A [Logger] is configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger.Info("parsed file", slog.String("path", path))
//
// Every logging method takes typed [slog.Attr] values. Each level has a
// context-aware variant; the plain variants use [DefaultContextProvider].
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. Trace sits below slog's debug level and is
// rendered as TRACE.
//
// # Output
//
// [FormatText] writes key=value lines, colorized with lipgloss when
// [WithPretty] is enabled and the output is a terminal. [FormatJSON] writes
// one JSON object per line.
//
// # Zero value
//
// The zero Logger discards every message. Packages that log optionally
// accept a Logger and use it unconditionally.
//
// # Package-level logger
//
// Functions such as [Info] and [Warn] write to a package-level logger that
// writes to standard error; [Config] reconfigures it.
package log
