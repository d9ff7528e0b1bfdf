package namelist

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/nml/log"
)

// All is the index that selects every match in delete and pop operations.
const All = -1

// Status reports the outcome of a delete or pop operation.
type Status int

const (
	// StatusNotFound means nothing matched; the operation was a no-op.
	StatusNotFound Status = iota

	// StatusRemoved means the requested match(es) were removed.
	StatusRemoved

	// StatusClamped means the requested index exceeded the number of
	// matches and the last match was removed instead.
	StatusClamped
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "not found"
	case StatusRemoved:
		return "removed"
	case StatusClamped:
		return "clamped"
	default:
		return "unknown"
	}
}

// Result describes what a delete or pop operation did.
type Result struct {
	Status  Status
	Matches int // number of matches before removal
	Index   int // effective index used, or All
	Removed int // number of elements removed
}

// Found reports whether anything was removed.
func (r Result) Found() bool { return r.Status != StatusNotFound }

// Clamped reports whether the requested index was clamped to the last match.
func (r Result) Clamped() bool { return r.Status == StatusClamped }

// SameName is the comparator used by every name and key lookup: names match
// case-insensitively, ignoring surrounding whitespace.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// matches reports, for each item, whether its name matches name.
func matches[T any](items []T, name string, nameOf func(T) string) []bool {
	out := make([]bool, len(items))
	for i, it := range items {
		out[i] = SameName(nameOf(it), name)
	}

	return out
}

// matchIndices returns the positions of items whose name matches name.
func matchIndices[T any](items []T, name string, nameOf func(T) string) []int {
	var idx []int

	for i, ok := range matches(items, name, nameOf) {
		if ok {
			idx = append(idx, i)
		}
	}

	return idx
}

// remove deletes the index-th item named name from items. A negative index
// removes every match, one at a time, first match first.
func remove[T any](
	items []T,
	name string,
	index int,
	nameOf func(T) string,
) (rest, removed []T, res Result) {
	idx := matchIndices(items, name, nameOf)

	res.Matches = len(idx)
	res.Index = index

	if len(idx) == 0 {
		return items, nil, res
	}

	if index < 0 {
		res.Index = All
		res.Status = StatusRemoved

		for range len(idx) {
			var one []T

			items, one, _ = remove(items, name, 0, nameOf)
			removed = append(removed, one...)
		}

		res.Removed = len(removed)

		return items, removed, res
	}

	res.Status = StatusRemoved

	if index >= len(idx) {
		res.Status = StatusClamped
		index = len(idx) - 1
		res.Index = index
	}

	at := idx[index]
	removed = []T{items[at]}
	res.Removed = 1

	return slices.Delete(items, at, at+1), removed, res
}

// warn reports a permissive edit outcome on the opt-in logger.
func warn(logger log.Logger, what, name string, requested int, res Result) {
	switch res.Status {
	case StatusNotFound:
		logger.WarnContext(context.Background(), what+" not found",
			slog.String("name", name),
		)

	case StatusClamped:
		logger.WarnContext(context.Background(),
			"index exceeds number of matching "+what+"s, removing last",
			slog.String("name", name),
			slog.Int("index", requested),
			slog.Int("matches", res.Matches),
		)
	}
}
