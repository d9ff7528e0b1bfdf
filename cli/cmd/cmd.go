package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	searchPathKey struct{}
	stdioKey      struct{}

	stdio struct {
		in  io.Reader
		out io.Writer
	}
)

// WithStdio returns a new context.Context whose commands read "-" sources
// from in and write their output to out.
func WithStdio(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, stdioKey{}, stdio{in: in, out: out})
}

func stdioFrom(ctx context.Context) stdio {
	s, _ := ctx.Value(stdioKey{}).(stdio)

	if s.in == nil {
		s.in = os.Stdin
	}

	if s.out == nil {
		s.out = os.Stdout
	}

	return s
}

// WithSearchPath returns a new context.Context in which relative source
// paths not found in the working directory are looked up in dirs, in order.
//
// Each element of dirs may itself be a list delimited by
// [os.PathListSeparator]. The working directory is always searched first.
func WithSearchPath(ctx context.Context, dirs ...string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, SearchPath(dirs...))
}

// SearchPath composes the directory search list: the working directory
// followed by each element of dirs, with duplicates removed.
func SearchPath(dirs ...string) []string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	delim := string(os.PathListSeparator)

	joined := mung.Make(
		mung.WithSubjectItems(strings.Join(dirs, delim)),
		mung.WithDelim(delim),
		mung.WithPrefixItems(cwd),
	).String()

	var path []string

	seen := make(map[string]struct{})

	for dir := range strings.SplitSeq(joined, delim) {
		if dir = strings.TrimSpace(dir); dir == "" {
			continue
		}

		if _, dup := seen[dir]; dup {
			continue
		}

		seen[dir] = struct{}{}
		path = append(path, dir)
	}

	return path
}

func searchPathFrom(ctx context.Context) []string {
	if dirs, ok := ctx.Value(searchPathKey{}).([]string); ok {
		return dirs
	}

	return SearchPath()
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Locate returns the path of the existing file named by source. Absolute
// paths are returned as-is; relative paths are tried against each directory
// of the search path stored in ctx.
func Locate(ctx context.Context, source string) (string, error) {
	if source == stdinSource {
		return source, nil
	}

	if filepath.IsAbs(source) {
		if _, err := os.Stat(source); err != nil {
			return "", namelist.ErrFileNotFound.Wrap(err).
				With(slog.String("path", source))
		}

		return source, nil
	}

	for _, dir := range searchPathFrom(ctx) {
		path := filepath.Join(dir, source)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", namelist.ErrFileNotFound.
		With(slog.String("path", source)).
		With(slog.Any("search", searchPathFrom(ctx)))
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources returns a reader over the concatenation of the given sources,
// each terminated by a newline so that the last line of one file never runs
// into the first line of the next.
//
// Sources naming the same file, including through symlinks, are read once.
// Every "-" is read as a single stdin source placed last.
func openSources(ctx context.Context, sources []string) (io.Reader, func(), error) {
	if len(sources) == 0 {
		return nil, nil, ErrNoSource
	}

	var (
		readers  []io.Reader
		closers  []io.Closer
		hasStdin bool
	)

	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	seen := make(map[fileKey]struct{})

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		path, err := Locate(ctx, src)
		if err != nil {
			closeAll()

			return nil, nil, err
		}

		file, ok, err := openUniqueFile(path, seen)
		if err != nil {
			closeAll()

			return nil, nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
		}

		if !ok {
			log.DebugContext(ctx, "skip duplicate source", slog.String("path", path))

			continue
		}

		closers = append(closers, file)
		readers = append(readers, file, newline())
	}

	if hasStdin {
		readers = append(readers, stdioFrom(ctx).in, newline())
	}

	return io.MultiReader(readers...), closeAll, nil
}

func newline() io.Reader { return bytes.NewReader([]byte{'\n'}) }

// openUniqueFile opens the file at path unless a file with the same device
// and inode was opened before.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, bool, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, false, err
	}

	return file, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// load parses the namelists of the given sources.
func load(
	ctx context.Context,
	sources []string,
	opts ...namelist.Option,
) (*namelist.File, error) {
	r, done, err := openSources(ctx, sources)
	if err != nil {
		return nil, err
	}
	defer done()

	opts = append([]namelist.Option{namelist.WithLogger(log.Default())}, opts...)

	file, err := namelist.ParseReader(ctx, r, opts...)
	if err != nil {
		return nil, namelist.WrapError(err).
			With(slog.Any("source", sources))
	}

	log.DebugContext(ctx, "loaded namelists",
		slog.Any("source", sources),
		slog.Int("namelists", file.Len()),
	)

	return file, nil
}

// Target selects the file receiving command output.
type Target struct {
	Output string `help:"Write the result to this file instead of stdout." placeholder:"PATH" short:"o"`
	Force  bool   `help:"Overwrite an existing output file."                                short:"f"`
}

// emit writes the output produced by render to the selected file, or to
// stdout when no file was selected.
func (t Target) emit(ctx context.Context, render func(io.Writer) error) error {
	if t.Output == "" || t.Output == stdinSource {
		if err := render(stdioFrom(ctx).out); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	return writeFile(ctx, t.Output, t.Force, render)
}

// Destination selects where an edited namelist file is written.
type Destination struct {
	Target `embed:""`

	InPlace bool `help:"Write the result back to the source file." short:"i"`
}

// emit writes f to the selected destination. Source names the file f was
// read from, used by --in-place.
func (d Destination) emit(ctx context.Context, f *namelist.File, source string) error {
	if !d.InPlace {
		return d.Target.emit(ctx, writerTo(f))
	}

	if d.Output != "" {
		return ErrConflictingOutput
	}

	if source == stdinSource {
		return ErrWriteOutput.With(slog.String("issue", "cannot edit stdin in place"))
	}

	path, err := Locate(ctx, source)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	if err := f.Write(path, true); err != nil {
		return ErrWriteOutput.With(slog.String("path", path)).Wrap(err)
	}

	log.InfoContext(ctx, "rewrote namelists", slog.String("path", path))

	return nil
}

func writerTo(f *namelist.File) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := f.WriteTo(w)

		return err
	}
}

// writeFile creates path and fills it using render. An existing file is
// replaced only with overwrite.
func writeFile(
	ctx context.Context,
	path string,
	overwrite bool,
	render func(io.Writer) error,
) (err error) {
	_, statErr := os.Stat(path)

	switch {
	case statErr == nil && !overwrite:
		return ErrWriteOutput.
			With(slog.String("path", path)).
			Wrap(ErrFileExists)

	case statErr == nil:
		log.WarnContext(ctx, "overwriting file", slog.String("path", path))

	case !errors.Is(statErr, fs.ErrNotExist):
		return ErrWriteOutput.With(slog.String("path", path)).Wrap(statErr)
	}

	file, err := os.Create(path)
	if err != nil {
		return ErrWriteOutput.With(slog.String("path", path)).Wrap(err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = ErrWriteOutput.With(slog.String("path", path)).Wrap(cerr)
		}
	}()

	if err := render(file); err != nil {
		return ErrWriteOutput.With(slog.String("path", path)).Wrap(err)
	}

	log.InfoContext(ctx, "wrote output", slog.String("path", path))

	return nil
}
