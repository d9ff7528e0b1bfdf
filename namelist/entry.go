package namelist

import (
	"log/slog"
	"regexp"
	"strings"
)

// EntryKind identifies the variant held by an [Entry].
type EntryKind int

const (
	// EntryBlank is an empty line.
	EntryBlank EntryKind = iota

	// EntryComment is a line holding only a comment.
	EntryComment

	// EntryAssignment is a key = value line with an optional comment.
	EntryAssignment
)

// String returns a string representation of the entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntryBlank:
		return "blank"
	case EntryComment:
		return "comment"
	case EntryAssignment:
		return "assignment"
	default:
		return "unknown"
	}
}

// reKey matches a namelist variable designator: a name made of letters,
// digits, underscores, spaces and component selectors, with an optional
// subscript.
var reKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_ %]*(\([^()]*\))?$`)

// Entry is one logical line of a namelist.
type Entry struct {
	kind    EntryKind
	key     string
	value   *Value
	comment string

	keyLen int
	valLen int

	align Alignment
	col   columns

	owner *Namelist // namelist whose cascade aligns the entry
}

// NewAssignment creates a key = value entry. The comment is optional; when
// not empty it is normalized to start with '!'.
func NewAssignment(key string, value *Value, comment string) (*Entry, error) {
	key = strings.TrimSpace(key)

	switch {
	case key == "" && value != nil:
		return nil, ErrInvalidEntry.With(
			slog.String("reason", "value without key"),
			slog.String("value", value.String()),
		)

	case key != "" && value == nil:
		return nil, ErrInvalidEntry.With(
			slog.String("reason", "key without value"),
			slog.String("key", key),
		)

	case key == "":
		return nil, ErrInvalidEntry.With(
			slog.String("reason", "missing key and value"),
		)

	case !reKey.MatchString(key):
		return nil, ErrInvalidEntry.With(
			slog.String("reason", "malformed key"),
			slog.String("key", key),
		)
	}

	e := &Entry{
		kind:    EntryAssignment,
		key:     key,
		value:   value,
		comment: normalizeComment(comment),
		align:   DefaultAlignment(),
	}
	e.Update()

	return e, nil
}

// NewComment creates a comment-only entry.
func NewComment(text string) *Entry {
	c := normalizeComment(text)
	if c == "" {
		c = "!"
	}

	return &Entry{kind: EntryComment, comment: c, align: DefaultAlignment()}
}

// NewBlank creates a blank entry.
func NewBlank() *Entry {
	return &Entry{kind: EntryBlank, align: DefaultAlignment()}
}

// ParseEntry parses a single namelist line.
//
// A line with neither key nor value becomes a comment-only or blank entry.
// A line with exactly one of them, a malformed key, a value that does not
// classify, code without '=', or more than one assignment fails with
// [ErrInvalidEntry] or [ErrUnrecognizedLiteral].
func ParseEntry(line string) (*Entry, error) {
	t, err := parseLine(line)
	if err != nil {
		return nil, err
	}

	switch {
	case t.lead != "":
		return nil, ErrInvalidEntry.With(
			slog.String("reason", "missing '='"),
			slog.String("line", strings.TrimSpace(line)),
		)

	case len(t.entries) > 1:
		return nil, ErrInvalidEntry.With(
			slog.String("reason", "several assignments"),
			slog.String("line", strings.TrimSpace(line)),
		)
	}

	return t.entries[0], nil
}

// tokens is one tokenized namelist line.
type tokens struct {
	lead    string   // code before the first assignment, continuing a value
	entries []*Entry // assignments in order, or one blank or comment entry
	literal string   // value text of the last assignment
	comment string
}

// parseLine tokenizes a line. A line may hold several comma-separated
// assignments; the comment goes to the last of them. Code before the first
// '=' is returned as lead for the caller to join with the previous
// assignment.
func parseLine(line string) (tokens, error) {
	code, comment := splitComment(strings.TrimSpace(line))
	code = strings.TrimSpace(code)

	t := tokens{comment: comment}

	if code == "" {
		if comment == "" {
			t.entries = []*Entry{NewBlank()}
		} else {
			t.entries = []*Entry{NewComment(comment)}
		}

		return t, nil
	}

	lead, parts := splitAssignments(code)
	t.lead = lead

	for i, part := range parts {
		eq := indexUnquoted(part, '=')
		key := strings.TrimSpace(part[:eq])
		literal := strings.TrimSpace(part[eq+1:])

		switch {
		case key == "":
			return tokens{}, ErrInvalidEntry.With(
				slog.String("reason", "value without key"),
				slog.String("line", strings.TrimSpace(line)),
			)

		case literal == "":
			return tokens{}, ErrInvalidEntry.With(
				slog.String("reason", "key without value"),
				slog.String("line", strings.TrimSpace(line)),
			)
		}

		value, err := Classify(literal)
		if err != nil {
			return tokens{}, WrapError(err).With(slog.String("key", key))
		}

		var c string
		if i == len(parts)-1 {
			c, t.literal = comment, literal
		}

		e, err := NewAssignment(key, value, c)
		if err != nil {
			return tokens{}, err
		}

		t.entries = append(t.entries, e)
	}

	return t, nil
}

// splitAssignments splits code at the top-level commas that precede a
// "key =" designator. Pieces before the first designator are joined into
// lead; each part holds one "key = value" text.
func splitAssignments(code string) (lead string, parts []string) {
	pieces, ok := splitTopLevel(code)
	if !ok {
		pieces = []string{code}
	}

	var before []string

	for _, p := range pieces {
		switch {
		case indexUnquoted(p, '=') >= 0:
			parts = append(parts, p)
		case len(parts) == 0:
			before = append(before, p)
		default:
			parts[len(parts)-1] += "," + p
		}
	}

	return strings.TrimSpace(strings.Join(before, ",")), parts
}

// splitComment splits a line at the first '!' outside quotes.
func splitComment(line string) (code, comment string) {
	i := indexUnquoted(line, '!')
	if i < 0 {
		return line, ""
	}

	return line[:i], strings.TrimSpace(line[i:])
}

// indexUnquoted returns the index of the first c in s that is not inside a
// quoted character constant, or -1.
func indexUnquoted(s string, c byte) int {
	var quote byte

	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == c:
			return i
		}
	}

	return -1
}

func normalizeComment(c string) string {
	c = strings.TrimSpace(c)
	if c == "" || strings.HasPrefix(c, "!") {
		return c
	}

	return "!" + c
}

// Kind returns the entry variant.
func (e *Entry) Kind() EntryKind { return e.kind }

// IsAssignment reports whether e is a key = value entry.
func (e *Entry) IsAssignment() bool { return e.kind == EntryAssignment }

// Key returns the entry key, or "" for comment and blank entries.
func (e *Entry) Key() string { return e.key }

// Value returns the entry value, or nil for comment and blank entries.
func (e *Entry) Value() *Value { return e.value }

// Comment returns the comment including its leading '!', or "".
func (e *Entry) Comment() string { return e.comment }

// KeyLength returns the length of the key rendering as of the last Update.
func (e *Entry) KeyLength() int { return e.keyLen }

// ValueLength returns the length of the value rendering as of the last
// Update.
func (e *Entry) ValueLength() int { return e.valLen }

// Alignment returns the layout the entry renders with.
func (e *Entry) Alignment() Alignment { return e.align }

// EqIndent returns the padding between the key and '=' under the current
// alignment.
func (e *Entry) EqIndent() int {
	return max(e.col.key, e.keyLen) - e.keyLen + e.align.EqPad
}

// ValIndent returns the padding that lines up the value or comment column
// under the current alignment.
func (e *Entry) ValIndent() int {
	return max(e.col.value, e.valLen) - e.valLen + e.align.EqPad
}

// SetKey renames an assignment.
func (e *Entry) SetKey(key string) error {
	key = strings.TrimSpace(key)
	if e.kind != EntryAssignment || !reKey.MatchString(key) {
		return ErrInvalidEntry.With(
			slog.String("reason", "malformed key"),
			slog.String("key", key),
		)
	}

	e.key = key
	e.Update()

	return nil
}

// SetValue replaces the value of an assignment.
func (e *Entry) SetValue(v *Value) error {
	if e.kind != EntryAssignment || v == nil {
		return ErrInvalidEntry.With(
			slog.String("reason", "key without value"),
			slog.String("key", e.key),
		)
	}

	e.value = v
	e.Update()

	return nil
}

// SetComment replaces the comment. An empty comment removes it from an
// assignment; a comment-only entry keeps a bare '!'.
func (e *Entry) SetComment(c string) {
	e.comment = normalizeComment(c)
	if e.kind == EntryComment && e.comment == "" {
		e.comment = "!"
	}

	if e.kind == EntryBlank && e.comment != "" {
		e.kind = EntryComment
	}
}

// Update re-derives the key and value lengths from their current
// renderings.
func (e *Entry) Update() {
	if e.kind != EntryAssignment {
		e.keyLen, e.valLen = 0, 0

		return
	}

	e.keyLen = len(e.key)
	e.valLen = e.value.Len()
}

// setAlignment applies layout parameters and column widths.
func (e *Entry) setAlignment(a Alignment, col columns) {
	e.align = a.normalize()
	e.col = col
}

// columns returns the entry's own key and value widths.
func (e *Entry) columns() columns {
	return columns{key: e.keyLen, value: e.valLen}
}

// Render returns the entry's text. An entry in a namelist is aligned with
// its namelist, or its file, first.
func (e *Entry) Render() string {
	if e.owner != nil {
		e.owner.update()
	}

	return e.render()
}

// render returns the entry's text under its current alignment.
func (e *Entry) render() string {
	e.Update()

	switch e.kind {
	case EntryComment:
		return e.comment
	case EntryAssignment:
		return layout(e.key, e.value.String(), e.comment, e.align, e.col)
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (e *Entry) String() string { return e.Render() }

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	c := *e
	c.value = e.value.Clone()
	c.owner = nil

	return &c
}
