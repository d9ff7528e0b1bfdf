package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

// action is a side effect requested by a command, carried out by the
// terminal model.
type action int

const (
	actNone action = iota
	actQuit
	actClear
	actEdit
)

// command describes a control-mode command.
type command struct {
	name    string
	params  []string // positional parameter names; optional ones in [brackets]
	summary string
}

// usage returns the command's usage string, e.g. "get nml [key]".
func (c command) usage() string {
	return strings.Join(append([]string{c.name}, c.params...), " ")
}

// commands are the available control-mode commands, in help order.
var commands = []command{
	{"list", nil, "List namelists"},
	{"show", []string{"[nml]", "[index]"}, "Print a namelist, or the whole file"},
	{"get", []string{"nml", "[key]"}, "Print a namelist or the value of one key"},
	{"set", []string{"nml", "key", "value..."}, "Assign a value, appending the key or namelist if missing"},
	{"del", []string{"nml", "[key]", "[index|*]"}, "Delete a key, or a whole namelist"},
	{"write", []string{"[path]"}, "Write the file (write! to overwrite another file)"},
	{"edit", nil, "Edit the file in external $EDITOR"},
	{"clear", nil, "Clear screen"},
	{"help", nil, "Print this cruft"},
	{"quit", nil, "Exit (quit! discards unsaved changes)"},
}

// commandNames returns the names of all commands.
func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}

	return names
}

// lookupCommand resolves a command by name or unique prefix.
func lookupCommand(name string) (command, bool) {
	name = strings.TrimSuffix(name, "!")

	var found []command

	for _, c := range commands {
		if c.name == name {
			return c, true
		}

		if strings.HasPrefix(c.name, name) {
			found = append(found, c)
		}
	}

	if len(found) == 1 {
		return found[0], true
	}

	return command{}, false
}

// session holds the file being edited and interprets commands against it.
type session struct {
	file   *namelist.File
	path   string // source path, "-" for stdin
	dirty  bool   // modified since last write
	warned bool   // quit was refused once because of unsaved changes
	logger log.Logger
}

func newSession(file *namelist.File, path string, logger log.Logger) *session {
	return &session{file: file, path: path, logger: logger}
}

// exec runs one control-mode command line and returns its output.
func (s *session) exec(ctx context.Context, line string) (string, action, error) {
	args := splitArgs(line)
	if len(args) == 0 {
		return "", actNone, nil
	}

	name, args := args[0], args[1:]
	force := strings.HasSuffix(name, "!")

	cmd, ok := lookupCommand(name)
	if !ok {
		return "", actNone, ErrUnknownCommand.With(slog.String("command", name))
	}

	s.logger.TraceContext(ctx, "repl exec command",
		slog.String("command", cmd.name),
		slog.Any("args", args),
		slog.Bool("force", force),
	)

	if !strings.EqualFold(cmd.name, "quit") {
		s.warned = false
	}

	switch cmd.name {
	case "list":
		return s.list(), actNone, nil

	case "show":
		out, err := s.show(args)

		return out, actNone, err

	case "get":
		out, err := s.get(args)

		return out, actNone, err

	case "set":
		out, err := s.set(args)

		return out, actNone, err

	case "del":
		out, err := s.del(args)

		return out, actNone, err

	case "write":
		out, err := s.write(ctx, args, force)

		return out, actNone, err

	case "edit":
		return "", actEdit, nil

	case "clear":
		return "", actClear, nil

	case "help":
		return helpMessage(), actNone, nil

	case "quit":
		if s.dirty && !force && !s.warned {
			s.warned = true

			return "unsaved changes: write first, or quit again to discard", actNone, nil
		}

		return "", actQuit, nil
	}

	return "", actNone, ErrUnknownCommand.With(slog.String("command", name))
}

// query runs a query-mode expression and returns the matches, one per line.
func (s *session) query(ctx context.Context, source string) (string, error) {
	q, err := namelist.CompileQuery(source)
	if err != nil {
		return "", err
	}

	found, err := s.file.Select(ctx, q)
	if err != nil {
		return "", err
	}

	if len(found) == 0 {
		return "no matches", nil
	}

	lines := make([]string, len(found))
	for i, m := range found {
		lines[i] = m.String()
	}

	return strings.Join(lines, "\n"), nil
}

func (s *session) list() string {
	if s.file.Len() == 0 {
		return "no namelists"
	}

	var b strings.Builder

	seen := make(map[string]int)

	for i, n := range s.file.Namelists() {
		if i > 0 {
			b.WriteByte('\n')
		}

		key := strings.ToLower(n.Name())
		name := n.Name()

		if s.file.NamelistCount(name) > 1 {
			name = fmt.Sprintf("%s[%d]", name, seen[key])
		}

		seen[key]++

		fmt.Fprintf(&b, "  %s %s", name, hintStyle.Render(preview(n)))
	}

	return b.String()
}

// preview summarizes a namelist for the list command.
func preview(n *namelist.Namelist) string {
	keys := n.Keys()

	const maxKeys = 4

	switch {
	case len(keys) == 0:
		return "(empty)"
	case len(keys) > maxKeys:
		return fmt.Sprintf("(%d keys: %s, ...)", len(keys), strings.Join(keys[:maxKeys], ", "))
	default:
		return fmt.Sprintf("(%d keys: %s)", len(keys), strings.Join(keys, ", "))
	}
}

func (s *session) show(args []string) (string, error) {
	if len(args) == 0 {
		return strings.TrimSuffix(s.file.Render(), "\n"), nil
	}

	index := 0

	if len(args) > 1 {
		i, err := strconv.Atoi(args[1])
		if err != nil {
			return "", ErrUsage.Wrap(err).With(slog.String("index", args[1]))
		}

		index = i
	}

	n, err := s.namelist(args[0], index)
	if err != nil {
		return "", err
	}

	return n.Render(), nil
}

func (s *session) get(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrUsage.With(slog.String("usage", "get nml [key]"))
	}

	n, err := s.namelist(args[0], 0)
	if err != nil {
		return "", err
	}

	if len(args) == 1 {
		return n.Render(), nil
	}

	found := n.Lookup(args[1])
	if len(found) == 0 {
		return "", notFound(ErrNoSuchKey, args[1], n.Keys())
	}

	lines := make([]string, len(found))
	for i, e := range found {
		lines[i] = e.Value().String()
	}

	return strings.Join(lines, "\n"), nil
}

func (s *session) set(args []string) (string, error) {
	if len(args) < 3 {
		return "", ErrUsage.With(slog.String("usage", "set nml key value..."))
	}

	literal := strings.Join(args[2:], " ")

	v, err := namelist.Classify(literal)
	if err != nil {
		return "", err
	}

	n, ok := s.file.Namelist(args[0], 0)
	if !ok {
		n = namelist.NewNamelist(args[0])
		s.file.AddNamelist(n)
	}

	e, err := n.Set(args[1], v, "")
	if err != nil {
		return "", err
	}

	s.dirty = true

	return strings.TrimSpace(e.Render()), nil
}

func (s *session) del(args []string) (string, error) {
	args, index, err := cutIndex(args)
	if err != nil {
		return "", err
	}

	if len(args) == 0 || len(args) > 2 {
		return "", ErrUsage.With(slog.String("usage", "del nml [key] [index|*]"))
	}

	var res namelist.Result

	if len(args) == 1 {
		res = s.file.DeleteNamelist(args[0], index)
		if !res.Found() {
			return "", notFound(ErrNoSuchNamelist, args[0], s.file.Names())
		}
	} else {
		n, err := s.namelist(args[0], 0)
		if err != nil {
			return "", err
		}

		res = n.DeleteEntry(args[1], index)
		if !res.Found() {
			return "", notFound(ErrNoSuchKey, args[1], n.Keys())
		}
	}

	s.dirty = true

	out := fmt.Sprintf("removed %d of %d", res.Removed, res.Matches)
	if res.Clamped() {
		out += " (index clamped to last match)"
	}

	return out, nil
}

// cutIndex removes a trailing occurrence index from the arguments of del.
// Keys never look like an index, so "del nml 1" addresses a namelist.
func cutIndex(args []string) ([]string, int, error) {
	if len(args) < 2 {
		return args, 0, nil
	}

	last := args[len(args)-1]
	if last == "*" {
		return args[:len(args)-1], namelist.All, nil
	}

	if i, err := strconv.Atoi(last); err == nil {
		return args[:len(args)-1], i, nil
	}

	if len(args) > 2 {
		return nil, 0, ErrUsage.With(slog.String("index", last))
	}

	return args, 0, nil
}

func (s *session) write(ctx context.Context, args []string, force bool) (string, error) {
	path := s.path
	overwrite := true

	if len(args) > 0 && args[0] != s.path {
		path = args[0]
		overwrite = force
	}

	if path == "" || path == "-" {
		return "", ErrUsage.With(slog.String("usage", "write path"))
	}

	if err := s.file.Write(path, overwrite); err != nil {
		if errors.Is(err, namelist.ErrWriteConflict) {
			return "", ErrUsage.Wrap(err).With(slog.String("hint", "use write! to overwrite"))
		}

		return "", err
	}

	s.logger.DebugContext(ctx, "repl write", slog.String("path", path))

	if path == s.path {
		s.dirty = false
	}

	return "wrote " + path, nil
}

func (s *session) namelist(name string, index int) (*namelist.Namelist, error) {
	n, ok := s.file.Namelist(name, index)
	if !ok {
		return nil, notFound(ErrNoSuchNamelist, name, s.file.Names())
	}

	return n, nil
}

// splitArgs splits a command line on white space outside quotes. Quotes
// are kept so that string literals survive intact.
func splitArgs(line string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		open  bool
	)

	flush := func() {
		if open {
			args = append(args, cur.String())
			cur.Reset()
			open = false
		}
	}

	for _, r := range line {
		switch {
		case quote != 0:
			cur.WriteRune(r)

			if r == quote {
				quote = 0
			}

		case r == '\'' || r == '"':
			quote = r
			open = true

			cur.WriteRune(r)

		case r == ' ' || r == '\t':
			flush()

		default:
			open = true

			cur.WriteRune(r)
		}
	}

	flush()

	return args
}
