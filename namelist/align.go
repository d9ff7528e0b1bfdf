package namelist

import "strings"

// Alignment holds the layout parameters applied to every entry of a file.
//
// With LeftKey, KeyIndent spaces precede the key and the padding that lines
// up the '=' column follows it; otherwise the padding precedes the key and
// KeyIndent spaces follow it (a right-justified key column).
//
// With LeftValue, CommentIndent spaces follow '=' and the padding that lines
// up the comment column follows the value; otherwise the padding follows '='
// and CommentIndent spaces precede the comment (a right-justified value
// column).
type Alignment struct {
	KeyIndent     int
	EqPad         int
	CommentIndent int
	LeftKey       bool
	LeftValue     bool
}

// DefaultAlignment returns the default layout: keys indented by two,
// one space of padding around '=', right-justified values.
func DefaultAlignment() Alignment {
	return Alignment{
		KeyIndent:     2,
		EqPad:         1,
		CommentIndent: 1,
		LeftKey:       true,
		LeftValue:     false,
	}
}

// normalize clamps negative widths to zero.
func (a Alignment) normalize() Alignment {
	a.KeyIndent = max(a.KeyIndent, 0)
	a.EqPad = max(a.EqPad, 0)
	a.CommentIndent = max(a.CommentIndent, 0)

	return a
}

// columns are the maximum key and value lengths an entry is aligned to.
type columns struct {
	key, value int
}

// widen returns the element-wise maximum of c and o.
func (c columns) widen(o columns) columns {
	return columns{key: max(c.key, o.key), value: max(c.value, o.value)}
}

// layout renders an assignment with the given alignment and column widths.
func layout(
	key, value, comment string,
	a Alignment,
	col columns,
) string {
	eqIndent := max(col.key, len(key)) - len(key) + a.EqPad
	valIndent := max(col.value, len(value)) - len(value) + a.EqPad

	var b strings.Builder

	if a.LeftKey {
		pad(&b, a.KeyIndent)
		b.WriteString(key)
		pad(&b, eqIndent)
	} else {
		pad(&b, eqIndent)
		b.WriteString(key)
		pad(&b, a.KeyIndent)
	}

	b.WriteByte('=')

	if a.LeftValue {
		pad(&b, a.CommentIndent)
		b.WriteString(value)

		if comment != "" {
			pad(&b, valIndent)
		}
	} else {
		pad(&b, valIndent)
		b.WriteString(value)

		if comment != "" {
			pad(&b, a.CommentIndent)
		}
	}

	b.WriteString(comment)

	return b.String()
}

func pad(b *strings.Builder, n int) {
	for range n {
		b.WriteByte(' ')
	}
}
