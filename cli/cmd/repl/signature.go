package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// exprLangBuiltins maps the expr-lang builtin functions useful in queries
// to their parameter names.
// Source: https://expr-lang.org/docs/language-definition
var exprLangBuiltins = map[string][]string{
	"len":       {"v"},
	"all":       {"array", "predicate"},
	"any":       {"array", "predicate"},
	"one":       {"array", "predicate"},
	"none":      {"array", "predicate"},
	"map":       {"array", "mapper"},
	"filter":    {"array", "predicate"},
	"find":      {"array", "predicate"},
	"count":     {"array", "predicate"},
	"sum":       {"array"},
	"mean":      {"array"},
	"min":       {"array"},
	"max":       {"array"},
	"join":      {"array", "separator"},
	"split":     {"string", "separator"},
	"replace":   {"string", "old", "new"},
	"trim":      {"string"},
	"upper":     {"string"},
	"lower":     {"string"},
	"hasPrefix": {"string", "prefix"},
	"hasSuffix": {"string", "suffix"},
	"indexOf":   {"string", "substring"},
	"abs":       {"v"},
	"ceil":      {"v"},
	"floor":     {"v"},
	"round":     {"v"},
	"int":       {"v"},
	"float":     {"v"},
	"string":    {"v"},
	"type":      {"v"},
}

// ExprLangBuiltinNames returns the sorted names of the expr-lang builtin
// functions with known signatures.
func ExprLangBuiltinNames() []string {
	return slices.Sorted(maps.Keys(exprLangBuiltins))
}

// Styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // function name, e.g. "upper"
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall reports the innermost function call whose parameter
// list contains the cursor, along with the index of the argument under the
// cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	// Open parens still unclosed at the cursor, with the argument count of
	// each.
	type frame struct {
		open int
		args int
	}

	var (
		stack []frame
		quote rune
	)

	for i, r := range input[:cursor] {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}

			continue

		case r == '"' || r == '\'':
			quote = r

			continue
		}

		switch r {
		case '(':
			stack = append(stack, frame{open: i})
		case ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].args++
			}
		}
	}

	if len(stack) == 0 {
		return functionCall{}
	}

	top := stack[len(stack)-1]

	name := strings.TrimRightFunc(input[:top.open], unicode.IsSpace)

	start := len(name)
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(name[:start])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		start -= size
	}

	if name = name[start:]; name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: top.args, inCall: true}
}

// getSignature returns the signature and parameter names of an expr-lang
// builtin function, or "" if funcName is not one.
func getSignature(funcName string) (signature string, params []string) {
	params, ok := exprLangBuiltins[funcName]
	if !ok {
		return "", nil
	}

	return funcName + "(" + strings.Join(params, ", ") + ")", params
}

// renderSignatureHint renders a function signature with the parameter at
// index arg highlighted.
func renderSignatureHint(signature string, params []string, arg int) string {
	name, _, ok := strings.Cut(signature, "(")
	if !ok {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		b.WriteString(renderParam(param, i, arg))
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}

// renderUsageHint renders the usage of a control-mode command with the
// parameter at index arg highlighted, followed by its summary.
func renderUsageHint(cmd command, arg int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(cmd.name))

	for i, param := range cmd.params {
		b.WriteString(" ")
		b.WriteString(renderParam(param, i, arg))
	}

	b.WriteString(signatureStyle.Render("  " + cmd.summary))

	return b.String()
}

// renderParam renders the i-th parameter, highlighted when it receives the
// argument at index arg. A parameter ending in "..." receives every
// argument from its position on.
func renderParam(param string, i, arg int) string {
	if arg == i || (strings.HasSuffix(param, "...") && arg > i) {
		return currentParamStyle.Render(param)
	}

	return signatureStyle.Render(param)
}
