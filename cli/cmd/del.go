package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

// Del removes assignments, or whole namelists when no key is given.
type Del struct {
	Destination `embed:""`

	Index int  `default:"0" help:"Remove the Nth (0-based) match; larger values remove the last match." short:"n"`
	All   bool `help:"Remove every match; overrides --index."                                               short:"a"`

	Source   string `arg:"" help:"Source input file or '-' for stdin." name:"source"`
	Namelist string `arg:"" help:"Namelist name."                       name:"namelist"`
	Key      string `arg:"" help:"Assignment key."                      name:"key"      optional:""`
}

func (d *Del) index() int {
	if d.All {
		return namelist.All
	}

	return d.Index
}

// Run executes the del command.
func (d *Del) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	file, err := load(ctx, []string{d.Source})
	if err != nil {
		return err
	}

	var res namelist.Result

	if d.Key == "" {
		if res = file.DeleteNamelist(d.Namelist, d.index()); !res.Found() {
			return namelistNotFound(file, d.Namelist, d.index())
		}
	} else {
		first, ok := file.Namelist(d.Namelist, 0)
		if !ok {
			return namelistNotFound(file, d.Namelist, 0)
		}

		// The key is removed from the first same-named namelist holding it.
		n := first
		for i := 1; ok && !n.HasKey(d.Key); i++ {
			n, ok = file.Namelist(d.Namelist, i)
		}

		if !ok {
			return keyNotFound(first, d.Key, d.index())
		}

		res = n.DeleteEntry(d.Key, d.index())
	}

	log.DebugContext(ctx, "deleted",
		slog.String("namelist", d.Namelist),
		slog.String("key", d.Key),
		slog.String("status", res.Status.String()),
		slog.Int("removed", res.Removed),
		slog.Int("matches", res.Matches),
	)

	return d.emit(ctx, file, d.Source)
}
