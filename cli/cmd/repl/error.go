package repl

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/nml/namelist"
)

// Sentinel errors.
var (
	ErrOutOfBounds    = errors.New("index out of range")
	ErrEditDeclined   = errors.New("decline edit")
	ErrNoSource       = namelist.NewError("no source to edit")
	ErrUnknownCommand = namelist.NewError("unknown command (try 'help')")
	ErrUsage          = namelist.NewError("invalid arguments")
	ErrNoSuchNamelist = namelist.NewError("namelist not found")
	ErrNoSuchKey      = namelist.NewError("key not found")
)

// MaxSuggestions bounds the list returned by [Suggest].
const MaxSuggestions = 3

// Suggest returns up to [MaxSuggestions] candidates resembling name, best
// first. Candidates are compared case-insensitively and reported once each,
// as first spelled.
func Suggest(name string, candidates []string) []string {
	var (
		folded []string
		spelt  []string
	)

	for _, c := range candidates {
		f := strings.ToLower(strings.TrimSpace(c))
		if f == "" || slices.Contains(folded, f) {
			continue
		}

		folded = append(folded, f)
		spelt = append(spelt, c)
	}

	var out []string

	for _, m := range fuzzy.Find(strings.ToLower(strings.TrimSpace(name)), folded) {
		out = append(out, spelt[m.Index])

		if len(out) == MaxSuggestions {
			break
		}
	}

	return out
}

// notFound returns base annotated with name and the closest candidates.
func notFound(base *namelist.Error, name string, candidates []string) error {
	err := base.With(slog.String("name", name))

	if similar := Suggest(name, candidates); len(similar) > 0 {
		err = err.With(slog.String("suggest", strings.Join(similar, ", ")))
	}

	return err
}

// describe renders err with its structured attributes for display, e.g.
// "key not found: name=dtt suggest=dt".
func describe(err error) string {
	var ne *namelist.Error
	if !errors.As(err, &ne) {
		return err.Error()
	}

	var b strings.Builder

	b.WriteString(err.Error())

	for _, a := range ne.Attrs() {
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value.String())
	}

	return b.String()
}
