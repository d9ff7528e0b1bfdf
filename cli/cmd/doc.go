// Package cmd implements the nml subcommands: formatting and export (fmt),
// scripted edits (get, set, del), queries (query), configuration
// bootstrapping (init), and the interactive editor (edit).
//
// Every subcommand reads its sources through a search path stored in the
// context with [WithSearchPath], and performs its I/O through the streams
// stored with [WithStdio].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file, and the name of the namelist it is read from.
	ConfigIdentifier = "config"
)
