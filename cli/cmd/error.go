package cmd

import (
	"log/slog"
	"strings"
)

// Command errors. Each error a command returns matches one of these with
// errors.Is, whatever context is attached to it.
var (
	ErrNoSource          = NewError("no input source")
	ErrReadSource        = NewError("read input source")
	ErrExport            = NewError("export namelists")
	ErrNotCanonical      = NewError("input is not canonically formatted")
	ErrNamelistNotFound  = NewError("namelist not found")
	ErrKeyNotFound       = NewError("key not found")
	ErrInvalidValue      = NewError("invalid value")
	ErrWriteOutput       = NewError("write output")
	ErrWriteConfig       = NewError("write configuration file")
	ErrFileExists        = NewError("file exists (use --force to overwrite)")
	ErrConflictingOutput = NewError("--in-place and --output are mutually exclusive")
)

// Error is a command failure. Besides a cause and slog attributes it may
// carry hints, alternatives the user probably meant, which are shown with
// the message.
type Error struct {
	msg   string
	cause error
	attrs []slog.Attr
	hints []string
	base  *Error
}

// NewError creates a new sentinel Error.
func NewError(msg string) *Error { return &Error{msg: msg} }

// Error returns "<msg>: <cause> (did you mean <hints>?)", omitting the
// parts that are not set.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.msg)

	if e.cause != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}

		b.WriteString(e.cause.Error())
	}

	if h := e.hint(); h != "" {
		b.WriteString(" (" + h + ")")
	}

	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

func (e *Error) hint() string {
	if len(e.hints) == 0 {
		return ""
	}

	return "did you mean " + strings.Join(e.hints, ", ") + "?"
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.cause != nil {
		attrs = append(attrs, slog.Any("cause", e.cause))
	}

	if h := e.hint(); h != "" {
		attrs = append(attrs, slog.String("suggest", h))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// derive returns a copy of e descending from the same sentinel.
func (e *Error) derive() *Error {
	return &Error{
		msg:   e.msg,
		cause: e.cause,
		attrs: e.attrs,
		hints: e.hints,
		base:  e.root(),
	}
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.cause = err

	return d
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := e.derive()
	d.attrs = append(append([]slog.Attr(nil), e.attrs...), attrs...)

	return d
}

// Hint returns a copy of e suggesting alternatives. Without alternatives it
// returns e unchanged.
func (e *Error) Hint(alternatives ...string) *Error {
	if len(alternatives) == 0 {
		return e
	}

	d := e.derive()
	d.hints = append(append([]string(nil), e.hints...), alternatives...)

	return d
}
