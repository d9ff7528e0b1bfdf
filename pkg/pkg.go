//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the nml module embedded at build time.
//
//go:embed VERSION
var version string

// Version returns the embedded semantic version without surrounding space.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier. It appears in help
	// text and default config paths.
	Name = "nml"
	// Description is a short summary of the project used in help output.
	Description = "Fortran namelist formatter and editor"
	// ConfigFile is the base name of the user configuration file, itself a
	// namelist file, found in [ConfigDir].
	ConfigFile = "config.nml"
	// HistoryFile is the base name of the interactive editor history found in
	// [CacheDir].
	HistoryFile = "history"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
