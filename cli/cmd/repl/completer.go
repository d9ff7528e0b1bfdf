package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr/builtin"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/nml/namelist"
)

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. This includes whitespace, quotes, and expr-lang operator and
// punctuation characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', '"', '\'',
		'(', ')', '[', ']',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary (after a space, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether prefix ends inside an unterminated string
// literal.
func inString(prefix string) bool {
	var quote rune

	for _, r := range prefix {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		}
	}

	return quote != 0
}

// commandAt returns the command named by the first word of a control-mode
// input and the index of the parameter under the cursor. ok is false while
// the cursor is still on the command word.
func commandAt(input string, cursor int) (cmd command, arg int, ok bool) {
	_, start, _ := wordBounds(input, cursor)

	before := splitArgs(input[:start])
	if len(before) == 0 {
		return command{}, 0, false
	}

	if cmd, ok = lookupCommand(before[0]); !ok {
		return command{}, 0, false
	}

	return cmd, len(before) - 1, true
}

// commandCandidates returns the completions for the word starting at
// wordStart in a control-mode input: command names for the first word, then
// namelist names or keys according to the command's parameters.
func commandCandidates(s *session, input string, wordStart int) []string {
	cmd, arg, ok := commandAt(input, wordStart)
	if !ok {
		if len(splitArgs(input[:wordStart])) == 0 {
			return commandNames()
		}

		return nil
	}

	if arg >= len(cmd.params) {
		return nil
	}

	switch strings.Trim(cmd.params[arg], "[]") {
	case "nml":
		return unique(s.file.Names())

	case "key":
		args := splitArgs(input[:wordStart])
		if n, found := s.file.Namelist(args[1], 0); found {
			return n.Keys()
		}
	}

	return nil
}

// queryCandidates returns the completions for the word starting at
// wordStart in a query: namelist names and keys inside string literals,
// otherwise query variables and builtin functions.
func queryCandidates(s *session, input string, wordStart int) []string {
	if inString(input[:wordStart]) {
		names := unique(s.file.Names())

		for _, n := range s.file.Namelists() {
			names = append(names, n.Keys()...)
		}

		return unique(names)
	}

	return append(namelist.QueryVariables(), ExprLangBuiltinNames()...)
}

// unique returns s without case-insensitive duplicates, keeping the first
// spelling of each.
func unique(s []string) []string {
	var out []string

	for _, v := range s {
		if !slices.ContainsFunc(out, func(x string) bool { return strings.EqualFold(x, v) }) {
			out = append(out, v)
		}
	}

	return out
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, along with the word boundaries. An empty word
// matches nothing, except for a command argument, which lists every
// candidate.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	if m.mode == modeCtrl {
		candidates = commandCandidates(m.session, input, wordStart)
	} else {
		candidates = queryCandidates(m.session, input, wordStart)
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		if m.mode != modeCtrl || strings.TrimSpace(input[:wordStart]) == "" {
			return nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is an expr-lang builtin function.
func isFunction(name string) bool {
	_, ok := builtin.Index[name]

	return ok
}
