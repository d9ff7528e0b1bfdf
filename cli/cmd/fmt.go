package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

// Fmt parses namelist input and writes it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as aligned namelists (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	HCL    HCL    `cmd:""                    help:"Format as HCL."`
}

// Layout holds the alignment flags shared by commands that render
// namelists.
type Layout struct {
	KeyIndent     int  `default:"2" help:"Spaces between the line start and the key column."     placeholder:"N"`
	EqPad         int  `default:"1" help:"Spaces of padding on each side of '='."                placeholder:"N"`
	CommentIndent int  `default:"1" help:"Spaces between the value column and a comment." placeholder:"N"`
	RightKeys     bool `help:"Right-justify the key column."`
	LeftValues    bool `help:"Left-justify the value column."`
}

// Alignment returns the namelist layout selected by l.
func (l Layout) Alignment() namelist.Alignment {
	return namelist.Alignment{
		KeyIndent:     l.KeyIndent,
		EqPad:         l.EqPad,
		CommentIndent: l.CommentIndent,
		LeftKey:       !l.RightKeys,
		LeftValue:     l.LeftValues,
	}
}

// Native formats input as aligned namelists.
type Native struct {
	Layout `embed:""`
	Target `embed:""`

	Check bool `help:"Exit with an error if any source is not already formatted." short:"c"`

	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if f.Check {
		return f.check(ctx)
	}

	file, err := load(ctx, f.Source, namelist.WithAlignment(f.Alignment()))
	if err != nil {
		return err
	}

	return f.emit(ctx, func(w io.Writer) error { return file.Format(ctx, w) })
}

// check compares the digest of each source with the digest of its
// formatted rendering.
func (f *Native) check(ctx context.Context) error {
	var unformatted []string

	for _, src := range f.Source {
		raw, err := readAll(ctx, src)
		if err != nil {
			return err
		}

		file, err := namelist.ParseReader(ctx, bytes.NewReader(raw),
			namelist.WithAlignment(f.Alignment()),
			namelist.WithLogger(log.Default()),
		)
		if err != nil {
			return namelist.WrapError(err).With(slog.String("source", src))
		}

		want, got := file.Digest(), namelist.Digest(string(raw))

		log.DebugContext(ctx, "format check",
			slog.String("source", src),
			slog.String("digest", got),
			slog.String("canonical", want),
		)

		if want != got {
			unformatted = append(unformatted, src)
		}
	}

	if len(unformatted) > 0 {
		return ErrNotCanonical.With(slog.Any("source", unformatted))
	}

	return nil
}

// readAll returns the contents of a single source.
func readAll(ctx context.Context, source string) ([]byte, error) {
	path, err := Locate(ctx, source)
	if err != nil {
		return nil, err
	}

	var r io.Reader = stdioFrom(ctx).in

	if path != stdinSource {
		file, ok, err := openUniqueFile(path, map[fileKey]struct{}{})
		if err != nil || !ok {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
		}
		defer file.Close()

		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
	}

	return data, nil
}

// JSON formats input as JSON.
type JSON struct {
	Target `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output; 0 for compact output." short:"n"`

	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	file, err := load(ctx, j.Source)
	if err != nil {
		return err
	}

	return j.emit(ctx, func(w io.Writer) error {
		if err := file.FormatJSON(ctx, w, j.Indent); err != nil {
			return ErrExport.Wrap(err).With(slog.String("format", "json"))
		}

		return nil
	})
}

// YAML formats input as YAML.
type YAML struct {
	Target `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output; 0 for flow style." short:"n"`

	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	file, err := load(ctx, y.Source)
	if err != nil {
		return err
	}

	return y.emit(ctx, func(w io.Writer) error {
		if err := file.FormatYAML(ctx, w, y.Indent); err != nil {
			return ErrExport.Wrap(err).With(slog.String("format", "yaml"))
		}

		return nil
	})
}

// HCL formats input as HCL, one block per namelist.
type HCL struct {
	Target `embed:""`

	Source []string `arg:"" default:"-" help:"Source input file(s) or '-' for stdin." name:"source"`
}

// Run executes the hcl command.
func (h *HCL) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	file, err := load(ctx, h.Source)
	if err != nil {
		return err
	}

	return h.emit(ctx, func(w io.Writer) error {
		if err := file.FormatHCL(ctx, w); err != nil {
			return ErrExport.Wrap(err).With(slog.String("format", "hcl"))
		}

		return nil
	})
}
