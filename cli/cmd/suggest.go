package cmd

import (
	"log/slog"

	"github.com/ardnew/nml/cli/cmd/repl"
	"github.com/ardnew/nml/namelist"
)

// namelistNotFound reports a missing namelist, hinting at the namelists of
// f resembling name.
func namelistNotFound(f *namelist.File, name string, index int) error {
	return ErrNamelistNotFound.With(
		slog.String("namelist", name),
		slog.Int("index", index),
		slog.Int("count", f.NamelistCount(name)),
	).Hint(repl.Suggest(name, f.Names())...)
}

// keyNotFound reports a missing key, hinting at the keys of n resembling
// key.
func keyNotFound(n *namelist.Namelist, key string, index int) error {
	return ErrKeyNotFound.With(
		slog.String("namelist", n.Name()),
		slog.String("key", key),
		slog.Int("index", index),
		slog.Int("count", n.KeyCount(key)),
	).Hint(repl.Suggest(key, n.Keys())...)
}
