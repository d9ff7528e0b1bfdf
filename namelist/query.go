package namelist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Query is a compiled boolean expression selecting assignments.
//
// The expression is written in the expr language and sees these variables
// for each assignment:
//
//	namelist  string  name of the enclosing namelist
//	index     int     occurrence of that name among same-named namelists
//	key       string  assignment key
//	value     string  rendered value
//	kind      string  value kind: logical, string, integer, real, ...
//	comment   string  trailing comment, without the '!'
//	native    any     value as bool, string, int, float, complex or list
//
// For example:
//
//	kind == "real" && native > 1.5
//	namelist == "physics" && key startsWith "dt"
type Query struct {
	source  string
	program *vm.Program
}

// queryEnv is the environment each assignment is evaluated in.
type queryEnv struct {
	Namelist string `expr:"namelist"`
	Index    int    `expr:"index"`
	Key      string `expr:"key"`
	Value    string `expr:"value"`
	Kind     string `expr:"kind"`
	Comment  string `expr:"comment"`
	Native   any    `expr:"native"`
}

// CompileQuery compiles source into a [Query]. An empty source selects
// every assignment.
func CompileQuery(source string) (*Query, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		source = "true"
	}

	program, err := expr.Compile(source, expr.Env(queryEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrInvalidQuery.Wrap(err).With(slog.String("query", source))
	}

	return &Query{source: source, program: program}, nil
}

// String returns the query source.
func (q *Query) String() string { return q.source }

// Match is an assignment selected by a [Query].
type Match struct {
	Namelist *Namelist
	Index    int // occurrence of the namelist name, as in [File.Namelist]
	Entry    *Entry
}

// String renders the match as name.key = value. Repeated namelists after
// the first carry their occurrence in brackets.
func (m Match) String() string {
	name := m.Namelist.Name()
	if m.Index > 0 {
		name = fmt.Sprintf("%s[%d]", name, m.Index)
	}

	return name + "." + m.Entry.Key() + " = " + m.Entry.Value().String()
}

// Test reports whether the assignment e of namelist n (the index-th of its
// name) satisfies q.
func (q *Query) Test(n *Namelist, index int, e *Entry) (bool, error) {
	if !e.IsAssignment() {
		return false, nil
	}

	env := queryEnv{
		Namelist: n.Name(),
		Index:    index,
		Key:      e.Key(),
		Value:    e.Value().String(),
		Kind:     e.Value().Kind.String(),
		Comment:  strings.TrimSpace(strings.TrimPrefix(e.Comment(), "!")),
		Native:   queryNative(e.Value().Native()),
	}

	out, err := expr.Run(q.program, env)
	if err != nil {
		return false, ErrInvalidQuery.Wrap(err).With(
			slog.String("query", q.source),
			slog.String("namelist", n.Name()),
			slog.String("key", e.Key()),
		)
	}

	ok, _ := out.(bool)

	return ok, nil
}

// queryNative widens int64 to int so that comparisons with untyped integer
// constants in a query behave as written.
func queryNative(v any) any {
	switch v := v.(type) {
	case int64:
		return int(v)
	case []any:
		for i := range v {
			v[i] = queryNative(v[i])
		}

		return v
	default:
		return v
	}
}

// Select returns the assignments of f satisfying q, in file order. An
// assignment the query fails to evaluate on, such as a numeric comparison
// against a string value, is not selected.
func (f *File) Select(ctx context.Context, q *Query) ([]Match, error) {
	var out []Match

	seen := make(map[string]int)

	for _, n := range f.namelists {
		if err := ctx.Err(); err != nil {
			return nil, ErrIO.Wrap(err)
		}

		name := strings.ToLower(strings.TrimSpace(n.name))
		index := seen[name]
		seen[name]++

		for _, e := range n.entries {
			ok, err := q.Test(n, index, e)
			if err != nil {
				f.logger.DebugContext(ctx, "query skipped entry", slog.Any("error", err))

				continue
			}

			if ok {
				out = append(out, Match{Namelist: n, Index: index, Entry: e})
			}
		}
	}

	f.logger.TraceContext(ctx, "query",
		slog.String("query", q.source),
		slog.Int("matches", len(out)),
	)

	return out, nil
}

// QueryVariables returns the names of the variables a query can refer to.
func QueryVariables() []string {
	return []string{"namelist", "index", "key", "value", "kind", "comment", "native"}
}
