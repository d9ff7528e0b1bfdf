package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
	"github.com/ardnew/nml/pkg"
)

// editedMsg is sent when editing completes with a file that parsed.
type editedMsg struct{ file *namelist.File }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	queryPrompt = "➜ "
	ctrlPrompt  = " :"
)

const usageHelp = `
Usage:
  Type a query to list matching assignments, e.g. kind == "real" && native > 1
  Query variables: namelist, index, key, value, kind, comment, native
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between query and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to switch to command mode and navigate command history
    (restores original mode when reaching end of history)
  Press Ctrl+C on empty line or Ctrl+D to exit
`

func helpMessage() string {
	var b strings.Builder

	b.WriteString("\n: Commands (press Esc to toggle mode):\n\n")

	width := 0
	for _, c := range commands {
		width = max(width, len(c.usage()))
	}

	for _, c := range commands {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, c.usage(), c.summary)
	}

	b.WriteString(usageHelp)

	return b.String()
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeQuery inputMode = iota
	modeCtrl
)

func (i inputMode) String() string {
	if i == modeCtrl {
		return "command"
	}

	return "query"
}

func (i inputMode) prompt() string {
	if i == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(queryPrompt)
}

// echo formats the echo line of a submitted input.
func (i inputMode) echo(input string) string {
	return i.prompt() + inputStyle.Render(input)
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// savedInput is the input line of a mode that is not active.
type savedInput struct {
	text   string
	cursor int
}

// altNav is the state restored when Alt+Up/Down runs off the command
// history.
type altNav struct {
	active bool
	mode   inputMode
	input  savedInput
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	session    *session
	logger     log.Logger
	history    *History
	saved      [2]savedInput // input of each mode, indexed by inputMode
	matches    fuzzy.Matches // current fuzzy match results
	alt        altNav
	preTab     savedInput // input before tab-cycling began
	historyIdx int
	wordStart  int // byte offset of current word start
	wordEnd    int // byte offset of current word end
	suggIdx    int // selected candidate index
	width      int // terminal width for ellipsization
	mode       inputMode
	tabActive  bool // whether user is tab-cycling
	quitting   bool
}

// Run starts an interactive session editing file, which was read from path
// ("-" for stdin). Input history is kept in cacheDir, or only in memory when
// cacheDir is empty.
func Run(
	ctx context.Context,
	file *namelist.File,
	path, cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start",
		slog.String("path", path),
		slog.String("cache_dir", cacheDir),
		slog.Bool("has_source", file != nil),
	)

	if file == nil {
		return ErrNoSource
	}

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, pkg.HistoryFile)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()),
		slog.Int("namelist_count", file.Len()),
	)

	m := newModel(ctx, newSession(file, path, logger), history, logger)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}

	// Stdin held the source, so keys come from the terminal.
	if path == "-" {
		opts = append(opts, tea.WithInputTTY())
	}

	_, err = tea.NewProgram(m, opts...).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	s *session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = modeQuery.prompt()
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    s,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeQuery,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(queryPrompt) - 2

		return m, nil

	case editedMsg:
		m.session.file = msg.file
		m.session.dirty = true
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("namelist_count", msg.file.Len()),
		)

		return m, tea.Println(resultStyle.Render(
			fmt.Sprintf("✔ updated %d namelists (unsaved)", msg.file.Len()),
		))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit discarded"))

	case editErrorMsg:
		return m, printError(msg.err)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func printError(err error) tea.Cmd {
	return tea.Println(errorStyle.Render("error: " + describe(err)))
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hint())
	b.WriteString("\n")

	return b.String()
}

// hint returns the line shown below the input.
func (m model) hint() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))

	case strings.TrimSpace(input) == "":
		if m.mode == modeQuery {
			return hintStyle.Render("Type a query or press Esc for commands")
		}

		return hintStyle.Render(
			"Type: " + strings.Join(commandNames(), ", ") + " (press Esc to return)",
		)

	case m.mode == modeQuery:
		if call := detectFunctionCall(input, m.input.Position()); call.inCall {
			if sig, params := getSignature(call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}

	case len(m.matches) == 0:
		if cmd, arg, ok := commandAt(input, m.input.Position()); ok {
			return renderUsageHint(cmd, arg)
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.tabActive = false
		m.alt.active = false
		m.historyIdx = m.history.Len()
		setInput(&m, "", 0)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.alt.active = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyAny(-1), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1), nil
		}

		return m.historyAny(1), nil

	case tea.KeyShiftUp:
		return m.historyInMode(-1), nil

	case tea.KeyShiftDown:
		return m.historyInMode(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			setInput(&m, m.preTab.text, m.preTab.cursor)

			return m, nil
		}

		m.alt.active = false

		return m.toggleMode(), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks tab-cycling and keeps the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows) edits without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.alt.active = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle steps the selected completion candidate forward (step 1) or
// backward (step -1).
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	case step < 0:
		m.tabActive = true
		m.preTab = savedInput{m.input.Value(), m.input.Position()}
		m.suggIdx = len(m.matches) - 1
	default:
		m.tabActive = true
		m.preTab = savedInput{m.input.Value(), m.input.Position()}
		m.suggIdx = 0
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// setInput replaces the input line and recomputes matches.
func setInput(m *model, text string, cursor int) {
	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	refreshMatches(m, false)
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	ctx := m.ctxFunc()
	mode := m.mode

	m.saved = [2]savedInput{}
	m.tabActive = false

	if err := m.history.Write(input, mode); err != nil {
		m.logger.DebugContext(ctx, "history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
	setInput(&m, "", 0)

	m.logger.TraceContext(ctx, "repl input",
		slog.String("mode", mode.String()),
		slog.String("input", input),
	)

	echo := tea.Println(mode.echo(input))

	if mode == modeQuery {
		out, err := m.session.query(ctx, input)
		if err != nil {
			return m, tea.Sequence(echo, printError(err))
		}

		return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
	}

	out, act, err := m.session.exec(ctx, input)
	if err != nil {
		return m, tea.Sequence(echo, printError(err))
	}

	cmds := []tea.Cmd{echo}
	if out != "" {
		cmds = append(cmds, tea.Println(out))
	}

	switch act {
	case actQuit:
		m.quitting = true
		cmds = append(cmds, tea.Quit)

	case actClear:
		return m, tea.ClearScreen

	case actEdit:
		cmds = append(cmds, m.edit())

	case actNone:
	}

	return m, tea.Sequence(cmds...)
}

// edit suspends the program and opens the file in the external editor.
func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		file:    m.session.file,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.edited == nil:
			return editCancelledMsg{}
		default:
			return editedMsg{file: cmd.edited}
		}
	})
}

// recall loads history entry i into the input, switching to its mode.
func (m model) recall(i int) model {
	entry, err := m.history.GetEntry(i)
	if err != nil {
		return m
	}

	m.historyIdx = i

	if m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	setInput(&m, entry.Line, len(entry.Line))

	return m
}

// historyFind returns the index of the nearest history entry in direction
// dir whose mode satisfies keep, or -1.
func (m model) historyFind(dir int, keep func(inputMode) bool) int {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		if entry, err := m.history.GetEntry(i); err == nil && keep(entry.Mode) {
			return i
		}
	}

	return -1
}

// historyAny steps through the history of both modes.
func (m model) historyAny(dir int) model {
	if i := m.historyFind(dir, func(inputMode) bool { return true }); i >= 0 {
		return m.recall(i)
	}

	if dir > 0 {
		m.historyIdx = m.history.Len()
		setInput(&m, "", 0)
	}

	return m
}

// historyInMode steps through the history of the current mode only.
func (m model) historyInMode(dir int) model {
	mode := m.mode

	if i := m.historyFind(dir, func(e inputMode) bool { return e == mode }); i >= 0 {
		return m.recall(i)
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		setInput(&m, "", 0)
	}

	return m
}

// historyCtrl steps through command history, switching to command mode.
// Running off either end restores the mode and input from before.
func (m model) historyCtrl(dir int) model {
	if !m.alt.active {
		m.alt = altNav{
			active: true,
			mode:   m.mode,
			input:  savedInput{m.input.Value(), m.input.Position()},
		}

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	if i := m.historyFind(dir, func(e inputMode) bool { return e == modeCtrl }); i >= 0 {
		return m.recall(i)
	}

	m.alt.active = false

	if m.alt.mode != m.mode {
		m = m.switchToMode(m.alt.mode)
	}

	m.historyIdx = m.history.Len()
	setInput(&m, m.alt.input.text, m.alt.input.cursor)

	return m
}

// toggleMode switches between query and control modes, preserving input
// state.
func (m model) toggleMode() model {
	if m.mode == modeQuery {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeQuery)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = savedInput{m.input.Value(), m.input.Position()}
	m.mode = mode
	m.input.Prompt = mode.prompt()

	setInput(&m, m.saved[mode].text, m.saved[mode].cursor)

	return m
}
