package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

// Set assigns a value to a key, replacing the first matching assignment or
// appending a new one.
type Set struct {
	Layout      `embed:""`
	Destination `embed:""`

	Comment string `help:"Comment attached to the assignment."                     short:"m"`
	Index   int    `default:"0" help:"Select the Nth (0-based) namelist when the name repeats." short:"n"`
	Create  bool   `help:"Append the namelist when it does not exist."`

	Source   string `arg:"" help:"Source input file or '-' for stdin."          name:"source"`
	Namelist string `arg:"" help:"Namelist name."                                name:"namelist"`
	Key      string `arg:"" help:"Assignment key."                               name:"key"`
	Value    string `arg:"" help:"Value literal, e.g. 3, 1.5d0, .true., 'text'." name:"value"`
}

// Run executes the set command.
func (s *Set) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	v, err := namelist.Classify(s.Value)
	if err != nil {
		return ErrInvalidValue.Wrap(err).With(slog.String("value", s.Value))
	}

	file, err := load(ctx, []string{s.Source}, namelist.WithAlignment(s.Alignment()))
	if err != nil {
		return err
	}

	n, ok := file.Namelist(s.Namelist, s.Index)

	switch {
	case !ok && !s.Create:
		return namelistNotFound(file, s.Namelist, s.Index)

	case !ok:
		n = namelist.NewNamelist(s.Namelist)
		file.AddNamelist(n)

		log.InfoContext(ctx, "added namelist", slog.String("namelist", s.Namelist))
	}

	e, err := n.Set(s.Key, v, s.Comment)
	if err != nil {
		return ErrInvalidValue.Wrap(err).With(slog.String("key", s.Key))
	}

	log.DebugContext(ctx, "set value",
		slog.String("namelist", n.Name()),
		slog.String("key", e.Key()),
		slog.String("value", e.Value().String()),
		slog.String("kind", e.Value().Kind.String()),
	)

	return s.emit(ctx, file, s.Source)
}
