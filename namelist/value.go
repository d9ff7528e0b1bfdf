package namelist

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a [Value].
type Kind int

const (
	// KindLiteral is untyped text. It is the fallback for pieces of a mixed
	// array and for numbers the numeric backend cannot represent.
	KindLiteral Kind = iota

	// KindLogical is a Fortran logical (.TRUE. or .FALSE.).
	KindLogical

	// KindString is a quoted character constant. The quotes are retained.
	KindString

	// KindInteger is an integer constant.
	KindInteger

	// KindReal is a real constant.
	KindReal

	// KindComplex is a complex constant (re,im).
	KindComplex

	// KindArray is a comma-separated list whose elements share one kind.
	KindArray

	// KindMixed is a comma-separated list whose elements did not share one
	// kind. Every element is a KindLiteral holding that piece's rendering.
	KindMixed
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindLogical:
		return "logical"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindComplex:
		return "complex"
	case KindArray:
		return "array"
	case KindMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Value is a typed namelist value. Exactly one payload field is meaningful,
// selected by Kind.
type Value struct {
	Kind     Kind
	Bool     bool
	Text     string // KindString (quoted) and KindLiteral
	Int      int64
	Float    float64
	Cmplx    complex128
	Elements []*Value // KindArray and KindMixed
}

// Logical creates a logical [Value].
func Logical(b bool) *Value { return &Value{Kind: KindLogical, Bool: b} }

// String creates a character [Value]. If s is not already wrapped in
// matching quotes, it is wrapped in single quotes with embedded single quotes
// doubled.
func String(s string) *Value {
	if isQuoted(s) {
		return &Value{Kind: KindString, Text: s}
	}

	return &Value{
		Kind: KindString,
		Text: "'" + strings.ReplaceAll(s, "'", "''") + "'",
	}
}

// Integer creates an integer [Value].
func Integer(i int64) *Value { return &Value{Kind: KindInteger, Int: i} }

// Real creates a real [Value].
func Real(f float64) *Value { return &Value{Kind: KindReal, Float: f} }

// Complex creates a complex [Value].
func Complex(re, im float64) *Value {
	return &Value{Kind: KindComplex, Cmplx: complex(re, im)}
}

// Literal creates an untyped [Value] holding text verbatim.
func Literal(text string) *Value { return &Value{Kind: KindLiteral, Text: text} }

// Array creates an array [Value] from elements. If the elements do not all
// share one kind, or any element is itself a list or literal, the result is
// the KindMixed fallback.
func Array(elems ...*Value) *Value {
	if homogeneous(elems) {
		return &Value{Kind: KindArray, Elements: elems}
	}

	return mixed(elems)
}

func homogeneous(elems []*Value) bool {
	if len(elems) == 0 {
		return true
	}

	kind := elems[0].Kind
	for _, e := range elems {
		if e == nil || e.Kind != kind {
			return false
		}

		switch e.Kind {
		case KindLiteral, KindArray, KindMixed:
			return false
		}
	}

	return true
}

func mixed(elems []*Value) *Value {
	lits := make([]*Value, len(elems))
	for i, e := range elems {
		if e == nil {
			lits[i] = Literal("")

			continue
		}

		lits[i] = Literal(e.String())
	}

	return &Value{Kind: KindMixed, Elements: lits}
}

// IsList reports whether v is a KindArray or KindMixed value.
func (v *Value) IsList() bool {
	return v != nil && (v.Kind == KindArray || v.Kind == KindMixed)
}

// ElemKind returns the kind shared by all elements of an array, KindLiteral
// for mixed arrays, and v.Kind for scalars.
func (v *Value) ElemKind() Kind {
	switch {
	case v.Kind == KindMixed:
		return KindLiteral
	case v.Kind == KindArray && len(v.Elements) > 0:
		return v.Elements[0].Kind
	default:
		return v.Kind
	}
}

// String returns the canonical rendering of v.
func (v *Value) String() string {
	if v == nil {
		return ""
	}

	switch v.Kind {
	case KindLogical:
		if v.Bool {
			return ".TRUE."
		}

		return ".FALSE."

	case KindString, KindLiteral:
		return v.Text

	case KindInteger:
		return strconv.FormatInt(v.Int, 10)

	case KindReal:
		return formatReal(v.Float)

	case KindComplex:
		return "(" + formatReal(real(v.Cmplx)) + "," +
			formatReal(imag(v.Cmplx)) + ")"

	case KindArray, KindMixed:
		part := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			part[i] = e.String()
		}

		return strings.Join(part, ", ")

	default:
		return v.Text
	}
}

// Len returns the length of the canonical rendering of v.
func (v *Value) Len() int { return len(v.String()) }

// formatReal renders f so that it re-classifies as a real: the shortest
// round-trip form, with ".0" appended when it would otherwise read as an
// integer.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}

	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

// Equal reports whether v and w hold the same kind and payload.
func (v *Value) Equal(w *Value) bool {
	if v == nil || w == nil {
		return v == w
	}

	if v.Kind != w.Kind {
		return false
	}

	switch v.Kind {
	case KindLogical:
		return v.Bool == w.Bool
	case KindString, KindLiteral:
		return v.Text == w.Text
	case KindInteger:
		return v.Int == w.Int
	case KindReal:
		return v.Float == w.Float
	case KindComplex:
		return v.Cmplx == w.Cmplx
	case KindArray, KindMixed:
		if len(v.Elements) != len(w.Elements) {
			return false
		}

		for i := range v.Elements {
			if !v.Elements[i].Equal(w.Elements[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}

	c := *v
	if v.Elements != nil {
		c.Elements = make([]*Value, len(v.Elements))
		for i, e := range v.Elements {
			c.Elements[i] = e.Clone()
		}
	}

	return &c
}

// Native converts v to a native Go value: bool, string (unquoted), int64,
// float64, complex128, or []any for lists.
func (v *Value) Native() any {
	if v == nil {
		return nil
	}

	switch v.Kind {
	case KindLogical:
		return v.Bool
	case KindString:
		return unquote(v.Text)
	case KindInteger:
		return v.Int
	case KindReal:
		return v.Float
	case KindComplex:
		return v.Cmplx
	case KindArray, KindMixed:
		out := make([]any, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = e.Native()
		}

		return out
	default:
		return v.Text
	}
}

// isQuoted reports whether s is wrapped in a matching pair of single or
// double quotes.
func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}

	q := s[0]

	return (q == '\'' || q == '"') && s[len(s)-1] == q
}

// unquote strips the surrounding quotes from a Fortran character constant
// and collapses doubled quote characters.
func unquote(s string) string {
	if !isQuoted(s) {
		return s
	}

	q := s[:1]

	return strings.ReplaceAll(s[1:len(s)-1], q+q, q)
}
