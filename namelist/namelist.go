package namelist

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/ardnew/nml/log"
)

var (
	reStart      = regexp.MustCompile(`^&([^\s!/]+)`)
	reEndKeyword = regexp.MustCompile(`(?i)^[&$]end\b`)
)

// isStart reports whether a trimmed line opens a namelist.
func isStart(line string) bool {
	return reStart.MatchString(line) && !reEndKeyword.MatchString(line)
}

// isEnd reports whether a trimmed line closes a namelist: a '/' at the start
// of the line, a '/' after whitespace outside quotes and comments, or an
// &END / $END keyword.
func isEnd(line string) bool {
	return endSlash(line) >= 0 || reEndKeyword.MatchString(line)
}

// endSlash returns the index of the terminating '/' on a trimmed line, or -1.
func endSlash(line string) int {
	code, _ := splitComment(line)

	var quote byte

	for i := 0; i < len(code); i++ {
		switch c := code[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '/':
			if i == 0 || code[i-1] == ' ' || code[i-1] == '\t' {
				return i
			}
		}
	}

	return -1
}

// Namelist is an ordered collection of entries under one name.
type Namelist struct {
	name    string
	entries []*Entry
	max     columns
	align   Alignment
	logger  log.Logger
	file    *File
}

// NewNamelist creates a namelist holding the given entries. Nil entries are
// skipped.
func NewNamelist(name string, entries ...*Entry) *Namelist {
	n := &Namelist{
		name:  strings.TrimSpace(name),
		align: DefaultAlignment(),
	}

	for _, e := range entries {
		if e != nil {
			n.entries = append(n.entries, e)
		}
	}

	n.update()

	return n
}

// ParseNamelist parses the lines of one namelist block. The first non-blank
// line must open the namelist (&NAME); each later non-blank line becomes an
// entry. Parsing stops at a terminating line, which is not included.
//
// A line holding code but no '=' continues the value of the preceding
// assignment.
func ParseNamelist(lines []string, opts ...Option) (*Namelist, error) {
	o := makeOptions(opts...)

	return parseNamelist(lines, 0, o)
}

func parseNamelist(lines []string, offset int, o options) (*Namelist, error) {
	n := &Namelist{align: o.align, logger: o.logger}

	var (
		opened  bool
		closed  bool
		prev    *Entry
		literal string // value text of prev, as written
	)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		lineAttr := slog.Int("line", offset+i+1)

		if !opened {
			m := reStart.FindStringSubmatch(line)
			if m == nil || reEndKeyword.MatchString(line) {
				return nil, ErrInvalidEntry.With(
					slog.String("reason", "missing namelist start"),
					lineAttr,
				)
			}

			n.name = m[1]
			opened = true

			rest := strings.TrimSpace(line[len(m[0]):])
			if i := endSlash(rest); i >= 0 {
				_, comment := splitComment(rest)
				rest = strings.TrimSpace(rest[:i] + " " + comment)
				closed = true
			}

			if rest == "" {
				if closed {
					break
				}

				continue
			}

			line = rest
		} else if isEnd(line) {
			break
		}

		t, err := parseLine(line)
		if err != nil {
			return nil, WrapError(err).With(lineAttr)
		}

		if t.lead != "" {
			if prev == nil {
				return nil, ErrInvalidEntry.With(
					slog.String("reason", "continuation without assignment"),
					lineAttr,
				)
			}

			var comment string
			if len(t.entries) == 0 {
				comment = t.comment
			}

			if literal, err = continueValue(prev, literal, t.lead, comment); err != nil {
				return nil, WrapError(err).With(lineAttr)
			}
		}

		for _, e := range t.entries {
			if e.IsAssignment() {
				prev = e
			}

			if e.Kind() != EntryBlank {
				n.entries = append(n.entries, e)
			}
		}

		if t.literal != "" {
			literal = t.literal
		}

		if closed {
			break
		}
	}

	if !opened {
		return nil, ErrNoNamelistsFound
	}

	n.update()

	o.logger.TraceContext(context.Background(), "namelist parsed",
		slog.String("name", n.name),
		slog.Int("entries", len(n.entries)),
	)

	return n, nil
}

// continueValue appends continuation code to the value text of an
// assignment, re-classifies it, and returns the joined text.
func continueValue(e *Entry, literal, code, comment string) (string, error) {
	literal = strings.TrimSpace(literal + " " + code)

	v, err := Classify(literal)
	if err != nil {
		return literal, WrapError(err).With(slog.String("key", e.key))
	}

	if comment != "" {
		if e.comment == "" {
			e.comment = comment
		} else {
			e.comment += " " + strings.TrimSpace(strings.TrimPrefix(comment, "!"))
		}
	}

	return literal, e.SetValue(v)
}

// Name returns the namelist group name.
func (n *Namelist) Name() string { return n.name }

// SetName renames the namelist.
func (n *Namelist) SetName(name string) { n.name = strings.TrimSpace(name) }

// Len returns the number of entries.
func (n *Namelist) Len() int { return len(n.entries) }

// Entries returns the entries in order. The slice is a copy; the entries are
// not.
func (n *Namelist) Entries() []*Entry { return slices.Clone(n.entries) }

// Assignments returns the key = value entries in order.
func (n *Namelist) Assignments() []*Entry {
	var out []*Entry

	for _, e := range n.entries {
		if e.IsAssignment() {
			out = append(out, e)
		}
	}

	return out
}

// MaxKeyLength returns the longest key among the namelist's assignments.
func (n *Namelist) MaxKeyLength() int { return n.max.key }

// MaxValueLength returns the longest value rendering among the namelist's
// assignments.
func (n *Namelist) MaxValueLength() int { return n.max.value }

// Alignment returns the layout applied to the namelist's entries.
func (n *Namelist) Alignment() Alignment { return n.align }

// Realign changes the layout of the namelist. A namelist belonging to a file
// shares the file's layout, so the whole file is realigned.
func (n *Namelist) Realign(a Alignment) {
	if n.file != nil {
		n.file.Realign(a)

		return
	}

	n.align = a.normalize()
	n.update()
}

// AddEntry appends an entry.
func (n *Namelist) AddEntry(e *Entry) {
	if e == nil {
		return
	}

	n.entries = append(n.entries, e)
	n.update()
}

// InsertEntry inserts an entry before position i. Out of range positions are
// clamped to the ends.
func (n *Namelist) InsertEntry(i int, e *Entry) {
	if e == nil {
		return
	}

	i = min(max(i, 0), len(n.entries))
	n.entries = slices.Insert(n.entries, i, e)
	n.update()
}

// Set replaces the value of the first assignment matching key, or appends a
// new assignment when none matches.
func (n *Namelist) Set(key string, v *Value, comment string) (*Entry, error) {
	if e, ok := n.Get(key, 0); ok {
		if err := e.SetValue(v); err != nil {
			return nil, err
		}

		if comment != "" {
			e.SetComment(comment)
		}

		n.update()

		return e, nil
	}

	e, err := NewAssignment(key, v, comment)
	if err != nil {
		return nil, err
	}

	n.AddEntry(e)

	return e, nil
}

// DeleteEntry removes the index-th assignment matching key. See [remove]
// for index semantics; pass [All] to remove every match. A missing key is a
// no-op reported as [StatusNotFound].
func (n *Namelist) DeleteEntry(key string, index int) Result {
	_, res := n.PopEntry(key, index)

	return res
}

// PopEntry is like DeleteEntry but returns the removed entries.
func (n *Namelist) PopEntry(key string, index int) ([]*Entry, Result) {
	rest, removed, res := remove(n.entries, key, index, entryKey)
	warn(n.logger, "key", key, index, res)

	if !res.Found() {
		return nil, res
	}

	n.entries = rest
	n.update()

	for _, e := range removed {
		e.owner = nil
		e.setAlignment(e.align, e.columns())
	}

	return removed, res
}

// HasKey reports whether any assignment matches key.
func (n *Namelist) HasKey(key string) bool { return n.KeyCount(key) > 0 }

// KeyCount returns the number of assignments matching key. Duplicate keys
// are tolerated, so the count may exceed one.
func (n *Namelist) KeyCount(key string) int {
	return len(matchIndices(n.entries, key, entryKey))
}

// KeyMatches reports, for each entry in order, whether it is an assignment
// matching key.
func (n *Namelist) KeyMatches(key string) []bool {
	return matches(n.entries, key, entryKey)
}

// Lookup returns every assignment matching key, in order.
func (n *Namelist) Lookup(key string) []*Entry {
	var out []*Entry

	for _, i := range matchIndices(n.entries, key, entryKey) {
		out = append(out, n.entries[i])
	}

	return out
}

// Get returns the index-th assignment matching key.
func (n *Namelist) Get(key string, index int) (*Entry, bool) {
	found := n.Lookup(key)
	if index < 0 || index >= len(found) {
		return nil, false
	}

	return found[index], true
}

// Keys returns the keys of all assignments, in order.
func (n *Namelist) Keys() []string {
	var keys []string

	for _, e := range n.entries {
		if e.IsAssignment() {
			keys = append(keys, e.key)
		}
	}

	return keys
}

// ToMap returns the namelist's assignments keyed by key as spelled. A later
// duplicate key overwrites an earlier one.
func (n *Namelist) ToMap() map[string]*Value {
	m := make(map[string]*Value, len(n.entries))

	for _, e := range n.entries {
		if e.IsAssignment() {
			m[e.key] = e.value
		}
	}

	return m
}

// Render returns the namelist text: the &NAME line, every entry in order,
// and the terminating '/'.
func (n *Namelist) Render() string {
	n.update()

	return n.render()
}

// render joins the entry renderings under the current alignment.
func (n *Namelist) render() string {
	lines := make([]string, 0, len(n.entries)+2)
	lines = append(lines, "&"+n.name)

	for _, e := range n.entries {
		lines = append(lines, e.render())
	}

	lines = append(lines, "/")

	return strings.Join(lines, "\n")
}

// String implements fmt.Stringer.
func (n *Namelist) String() string { return n.Render() }

// Clone returns a deep copy of n that belongs to no file.
func (n *Namelist) Clone() *Namelist {
	c := &Namelist{
		name:    n.name,
		entries: make([]*Entry, len(n.entries)),
		max:     n.max,
		align:   n.align,
		logger:  n.logger,
	}

	for i, e := range n.entries {
		c.entries[i] = e.Clone()
		c.entries[i].owner = c
	}

	return c
}

// refresh re-derives every entry's lengths and the namelist maxima.
func (n *Namelist) refresh() columns {
	n.max = columns{}

	for _, e := range n.entries {
		e.owner = n
		e.Update()

		if e.IsAssignment() {
			n.max = n.max.widen(e.columns())
		}
	}

	return n.max
}

// broadcast applies layout and column widths to every entry.
func (n *Namelist) broadcast(a Alignment, col columns) {
	n.align = a

	for _, e := range n.entries {
		e.setAlignment(a, col)
	}
}

// update runs the recompute cascade. A namelist that belongs to a file is
// aligned file-wide.
func (n *Namelist) update() {
	if n.file != nil {
		n.file.update()

		return
	}

	n.broadcast(n.align, n.refresh())
}

func entryKey(e *Entry) string {
	if !e.IsAssignment() {
		return ""
	}

	return e.key
}
