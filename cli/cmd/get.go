package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/nml/log"
)

// Get prints a namelist, or the value of one of its keys.
type Get struct {
	Index    int `default:"0" help:"Select the Nth (0-based) namelist when the name repeats." short:"n"`
	KeyIndex int `default:"0" help:"Select the Nth (0-based) assignment when the key repeats." short:"k"`

	Source   string `arg:"" help:"Source input file or '-' for stdin." name:"source"`
	Namelist string `arg:"" help:"Namelist name."                       name:"namelist"`
	Key      string `arg:"" help:"Assignment key."                      name:"key"      optional:""`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	file, err := load(ctx, []string{g.Source})
	if err != nil {
		return err
	}

	n, ok := file.Namelist(g.Namelist, g.Index)
	if !ok {
		return namelistNotFound(file, g.Namelist, g.Index)
	}

	out := stdioFrom(ctx).out

	if g.Key == "" {
		_, err = fmt.Fprintln(out, n.Render())

		return err
	}

	e, ok := n.Get(g.Key, g.KeyIndex)
	if !ok {
		return keyNotFound(n, g.Key, g.KeyIndex)
	}

	if count := n.KeyCount(g.Key); count > 1 {
		log.InfoContext(ctx, "key repeats",
			slog.String("key", g.Key),
			slog.Int("count", count),
			slog.Int("index", g.KeyIndex),
		)
	}

	_, err = fmt.Fprintln(out, e.Value().String())

	return err
}
