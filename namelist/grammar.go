package namelist

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

const numPattern = `[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[dDeE][+-]?[0-9]+)?`

var (
	reTrue    = regexp.MustCompile(`(?i)^(\.t\.|\.true\.|t|true)$`)
	reFalse   = regexp.MustCompile(`(?i)^(\.f\.|\.false\.|f|false)$`)
	reNumber  = regexp.MustCompile(`^` + numPattern + `$`)
	reInteger = regexp.MustCompile(`^[+-]?[0-9]+$`)
	reComplex = regexp.MustCompile(
		`^\(\s*(` + numPattern + `)\s*,\s*(` + numPattern + `)\s*\)$`,
	)
)

// Classify infers the typed [Value] of a literal value substring.
//
// Rules are tried in order: array (top-level comma), logical, string,
// complex, numeric. A trailing comma is dropped, so "1, 2," is an array of
// two integers and "1," the integer 1. A literal matching none of them fails with
// [ErrUnrecognizedLiteral]. Array pieces never fail; pieces that do not
// classify turn the array into the [KindMixed] fallback.
func Classify(literal string) (*Value, error) {
	literal = strings.TrimSpace(literal)

	if pieces, ok := splitTopLevel(literal); ok {
		// A trailing comma closes the list with a null value.
		if last := len(pieces) - 1; strings.TrimSpace(pieces[last]) == "" {
			pieces = pieces[:last]
		}

		if len(pieces) == 1 {
			return classifyScalar(strings.TrimSpace(pieces[0]))
		}

		return classifyArray(pieces), nil
	}

	return classifyScalar(literal)
}

func classifyArray(pieces []string) *Value {
	elems := make([]*Value, len(pieces))
	typed := true

	for i, piece := range pieces {
		piece = strings.TrimSpace(piece)

		v, err := classifyScalar(piece)
		if err != nil {
			v = Literal(piece)
			typed = false
		}

		elems[i] = v
	}

	if typed && homogeneous(elems) {
		return &Value{Kind: KindArray, Elements: elems}
	}

	return mixed(elems)
}

func classifyScalar(literal string) (*Value, error) {
	switch {
	case reTrue.MatchString(literal):
		return Logical(true), nil

	case reFalse.MatchString(literal):
		return Logical(false), nil

	case isQuoted(literal):
		return &Value{Kind: KindString, Text: literal}, nil
	}

	if m := reComplex.FindStringSubmatch(literal); m != nil {
		re, errRe := parseReal(m[1])
		im, errIm := parseReal(m[2])

		if errRe != nil || errIm != nil {
			return Literal(literal), nil
		}

		return Complex(re, im), nil
	}

	if reNumber.MatchString(literal) {
		if reInteger.MatchString(literal) {
			i, err := strconv.ParseInt(strings.TrimPrefix(literal, "+"), 10, 64)
			if err != nil {
				return Literal(literal), nil
			}

			return Integer(i), nil
		}

		f, err := parseReal(literal)
		if err != nil {
			return Literal(literal), nil
		}

		return Real(f), nil
	}

	return nil, ErrUnrecognizedLiteral.With(slog.String("literal", literal))
}

// parseReal parses a Fortran real constant, accepting d/D exponent markers.
func parseReal(s string) (float64, error) {
	s = strings.NewReplacer("d", "e", "D", "e").Replace(s)

	return strconv.ParseFloat(s, 64)
}

// splitTopLevel splits s on commas that are outside quotes and parentheses.
// The second result is false when s holds no such comma.
func splitTopLevel(s string) ([]string, bool) {
	var (
		pieces []string
		depth  int
		quote  byte
		start  int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}

		case c == '\'' || c == '"':
			quote = c

		case c == '(':
			depth++

		case c == ')':
			if depth > 0 {
				depth--
			}

		case c == ',' && depth == 0:
			pieces = append(pieces, s[start:i])
			start = i + 1
		}
	}

	if pieces == nil {
		return nil, false
	}

	return append(pieces, s[start:]), true
}
