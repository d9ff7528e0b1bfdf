package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

// Query prints the assignments satisfying an expression.
type Query struct {
	Count bool `help:"Print only the number of matching assignments." short:"c"`

	Expr   string   `arg:"" help:"Boolean expr-lang predicate over namelist, index, key, value, kind, comment and native." name:"expr"`
	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin."                                     name:"source"`
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	query, err := namelist.CompileQuery(q.Expr)
	if err != nil {
		return err
	}

	file, err := load(ctx, q.Source)
	if err != nil {
		return err
	}

	found, err := file.Select(ctx, query)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "query complete",
		slog.String("query", query.String()),
		slog.Int("matches", len(found)),
	)

	out := stdioFrom(ctx).out

	if q.Count {
		_, err = fmt.Fprintln(out, len(found))

		return err
	}

	for _, m := range found {
		if _, err := fmt.Fprintln(out, m.String()); err != nil {
			return err
		}
	}

	return nil
}
