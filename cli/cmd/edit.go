package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/nml/cli/cmd/repl"
	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

// Edit opens an interactive session for querying and editing a namelist
// file.
type Edit struct {
	Layout `embed:""`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the edit command.
func (e *Edit) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	file, err := load(ctx, []string{e.Source}, namelist.WithAlignment(e.Alignment()))
	if err != nil {
		return err
	}

	path := e.Source
	if path != stdinSource {
		if path, err = Locate(ctx, e.Source); err != nil {
			return err
		}
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	log.DebugContext(ctx, "edit session",
		slog.String("path", path),
		slog.String("cache_dir", cacheDir),
	)

	return repl.Run(ctx, file, path, cacheDir, log.Default())
}
