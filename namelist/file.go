package namelist

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/ardnew/nml/log"
)

// File is an ordered collection of namelists. Alignment columns are shared by
// every assignment of every namelist in the file.
type File struct {
	namelists []*Namelist
	align     Alignment
	max       columns
	logger    log.Logger
}

// NewFile creates a file holding no namelists.
func NewFile(opts ...Option) *File {
	o := makeOptions(opts...)

	return &File{align: o.align, logger: o.logger}
}

// Parse parses the namelists in text.
//
// Lines outside any namelist are ignored. Start and end markers are paired
// in the order they are found; a count mismatch, or an end marker that does
// not follow its start, fails with [ErrStructuralMismatch]. Text without any
// marker fails with [ErrNoNamelistsFound].
func Parse(text string, opts ...Option) (*File, error) {
	return parse(text, makeOptions(opts...))
}

// Open reads and parses the file at path.
func Open(path string, opts ...Option) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound.With(slog.String("path", path))
		}

		return nil, ErrIO.Wrap(err).With(slog.String("path", path))
	}

	f, err := Parse(string(data), opts...)
	if err != nil {
		return nil, WrapError(err).With(slog.String("path", path))
	}

	return f, nil
}

func parse(text string, o options) (*File, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var starts, ends []int

	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
		case isStart(line):
			starts = append(starts, i)

			name := reStart.FindString(line)
			if endSlash(strings.TrimSpace(line[len(name):])) >= 0 {
				ends = append(ends, i)
			}

		case isEnd(line):
			ends = append(ends, i)
		}
	}

	if len(starts) == 0 && len(ends) == 0 {
		return nil, ErrNoNamelistsFound
	}

	if len(starts) != len(ends) {
		return nil, ErrStructuralMismatch.With(
			slog.Int("starts", len(starts)),
			slog.Int("ends", len(ends)),
		)
	}

	// Every pair is checked before any block is parsed, so nested markers
	// are reported as a mismatch rather than as a bad entry.
	for k, start := range starts {
		end := ends[k]

		if end < start || (k > 0 && start <= ends[k-1]) {
			return nil, ErrStructuralMismatch.With(
				slog.Int("start", start+1),
				slog.Int("end", end+1),
			)
		}
	}

	f := &File{align: o.align, logger: o.logger}

	for k, start := range starts {
		end := ends[k]

		block := lines[start:end]
		if start == end {
			block = lines[start : start+1]
		} else {
			dropTrailing(o.logger, lines[end], end)
		}

		n, err := parseNamelist(block, start, o)
		if err != nil {
			return nil, err
		}

		f.attach(n)
	}

	f.update()

	o.logger.DebugContext(context.Background(), "parsed namelists",
		slog.Int("count", len(f.namelists)),
		slog.Int("lines", len(lines)),
	)

	return f, nil
}

// dropTrailing warns when a terminating line carries code before its '/'.
func dropTrailing(logger log.Logger, raw string, at int) {
	line := strings.TrimSpace(raw)

	i := endSlash(line)
	if i <= 0 {
		return
	}

	if text := strings.TrimSpace(line[:i]); text != "" {
		logger.WarnContext(context.Background(),
			"ignoring text before namelist terminator",
			slog.Int("line", at+1),
			slog.String("text", text),
		)
	}
}

// Alignment returns the layout applied to every entry.
func (f *File) Alignment() Alignment { return f.align }

// Realign changes the layout file-wide.
func (f *File) Realign(a Alignment) {
	f.align = a.normalize()
	f.update()
}

// MaxKeyLength returns the longest key across all namelists.
func (f *File) MaxKeyLength() int { return f.max.key }

// MaxValueLength returns the longest value rendering across all namelists.
func (f *File) MaxValueLength() int { return f.max.value }

// Len returns the number of namelists.
func (f *File) Len() int { return len(f.namelists) }

// Namelists returns the namelists in order. The slice is a copy; the
// namelists are not.
func (f *File) Namelists() []*Namelist { return slices.Clone(f.namelists) }

// Names returns the namelist names in order, duplicates included.
func (f *File) Names() []string {
	names := make([]string, len(f.namelists))
	for i, n := range f.namelists {
		names[i] = n.name
	}

	return names
}

// AddNamelist appends a namelist. It is detached from any file it belonged
// to and aligned with the rest of f.
func (f *File) AddNamelist(n *Namelist) {
	if n == nil {
		return
	}

	if n.file != nil && n.file != f {
		n.file.detach(n)
	}

	f.attach(n)
	f.update()
}

// DeleteNamelist removes the index-th namelist matching name. Pass [All] to
// remove every match. A missing name is a no-op reported as
// [StatusNotFound].
func (f *File) DeleteNamelist(name string, index int) Result {
	_, res := f.PopNamelist(name, index)

	return res
}

// PopNamelist is like DeleteNamelist but returns the removed namelists,
// which no longer belong to f.
func (f *File) PopNamelist(name string, index int) ([]*Namelist, Result) {
	rest, removed, res := remove(f.namelists, name, index, namelistName)
	warn(f.logger, "namelist", name, index, res)

	if !res.Found() {
		return nil, res
	}

	f.namelists = rest

	for _, n := range removed {
		n.file = nil
		n.update()
	}

	f.update()

	return removed, res
}

// HasNamelist reports whether any namelist matches name.
func (f *File) HasNamelist(name string) bool { return f.NamelistCount(name) > 0 }

// NamelistCount returns the number of namelists matching name.
func (f *File) NamelistCount(name string) int {
	return len(matchIndices(f.namelists, name, namelistName))
}

// NamelistMatches reports, for each namelist in order, whether it matches
// name.
func (f *File) NamelistMatches(name string) []bool {
	return matches(f.namelists, name, namelistName)
}

// Namelist returns the index-th namelist matching name.
func (f *File) Namelist(name string, index int) (*Namelist, bool) {
	idx := matchIndices(f.namelists, name, namelistName)
	if index < 0 || index >= len(idx) {
		return nil, false
	}

	return f.namelists[idx[index]], true
}

// ToMap groups the assignments of every namelist by namelist name as
// spelled. Repeated namelists are kept in order.
func (f *File) ToMap() map[string][]map[string]*Value {
	m := make(map[string][]map[string]*Value, len(f.namelists))

	for _, n := range f.namelists {
		m[n.name] = append(m[n.name], n.ToMap())
	}

	return m
}

// Render returns the file text: every namelist joined by one blank line,
// with a trailing newline.
func (f *File) Render() string {
	f.update()

	if len(f.namelists) == 0 {
		return ""
	}

	part := make([]string, len(f.namelists))
	for i, n := range f.namelists {
		part[i] = n.render()
	}

	return strings.Join(part, "\n\n") + "\n"
}

// String implements fmt.Stringer.
func (f *File) String() string { return f.Render() }

// WriteTo implements io.WriterTo.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.Render())
	if err != nil {
		return int64(n), ErrIO.Wrap(err)
	}

	return int64(n), nil
}

// Write renders f to the file at path. An existing file is replaced only if
// overwrite is true; otherwise Write fails with [ErrWriteConflict].
func (f *File) Write(path string, overwrite bool) (err error) {
	_, statErr := os.Stat(path)

	switch {
	case statErr == nil && !overwrite:
		return ErrWriteConflict.With(slog.String("path", path))

	case statErr == nil:
		f.logger.WarnContext(context.Background(), "overwriting file",
			slog.String("path", path),
		)

	case !errors.Is(statErr, fs.ErrNotExist):
		return ErrIO.Wrap(statErr).With(slog.String("path", path))
	}

	out, err := os.Create(path)
	if err != nil {
		return ErrIO.Wrap(err).With(slog.String("path", path))
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = ErrIO.Wrap(cerr).With(slog.String("path", path))
		}
	}()

	if _, err := f.WriteTo(out); err != nil {
		return WrapError(err).With(slog.String("path", path))
	}

	return nil
}

// Clone returns a deep copy of f.
func (f *File) Clone() *File {
	c := &File{align: f.align, max: f.max, logger: f.logger}

	for _, n := range f.namelists {
		c.attach(n.Clone())
	}

	c.update()

	return c
}

func (f *File) attach(n *Namelist) {
	n.file = f
	if n.logger.Logger == nil {
		n.logger = f.logger
	}

	f.namelists = append(f.namelists, n)
}

func (f *File) detach(n *Namelist) {
	if i := slices.Index(f.namelists, n); i >= 0 {
		f.namelists = slices.Delete(f.namelists, i, i+1)
	}

	n.file = nil
	f.update()
}

// update runs the recompute cascade: entry lengths, then file-wide maxima,
// then the layout of every entry.
func (f *File) update() {
	f.max = columns{}

	for _, n := range f.namelists {
		f.max = f.max.widen(n.refresh())
	}

	for _, n := range f.namelists {
		n.broadcast(f.align, f.max)
	}
}

func namelistName(n *Namelist) string { return n.name }
