package namelist

import (
	"errors"
	"testing"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    EntryKind
		key     string
		value   string
		comment string
	}{
		{"assignment", "x = 1", EntryAssignment, "x", "1", ""},
		{"with comment", "  x = 1 ! one", EntryAssignment, "x", "1", "! one"},
		{"no spaces", "dt=0.5", EntryAssignment, "dt", "0.5", ""},
		{"subscript key", "a(2) = 3", EntryAssignment, "a(2)", "3", ""},
		{"component key", "t%x = 1", EntryAssignment, "t%x", "1", ""},
		{"bang in string", "s = 'hi!' ! c", EntryAssignment, "s", "'hi!'", "! c"},
		{"equals in string", "s = 'a=b'", EntryAssignment, "s", "'a=b'", ""},
		{"comment only", "! just a note", EntryComment, "", "", "! just a note"},
		{"blank", "   ", EntryBlank, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseEntry(tt.line)
			if err != nil {
				t.Fatalf("ParseEntry(%q) error: %v", tt.line, err)
			}

			if e.Kind() != tt.kind {
				t.Errorf("kind = %s, want %s", e.Kind(), tt.kind)
			}

			if e.Key() != tt.key {
				t.Errorf("key = %q, want %q", e.Key(), tt.key)
			}

			if got := e.Value().String(); got != tt.value {
				t.Errorf("value = %q, want %q", got, tt.value)
			}

			if e.Comment() != tt.comment {
				t.Errorf("comment = %q, want %q", e.Comment(), tt.comment)
			}
		})
	}
}

func TestParseEntry_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"value without key", "= 1", ErrInvalidEntry},
		{"key without value", "x =", ErrInvalidEntry},
		{"key without value and comment", "x = ! c", ErrInvalidEntry},
		{"missing equals", "abc", ErrInvalidEntry},
		{"malformed key", "1x = 2", ErrInvalidEntry},
		{"unrecognized literal", "x = abc", ErrUnrecognizedLiteral},
		{"several assignments", "x = 1, y = 2", ErrInvalidEntry},
		{"missing key after comma", "x = 1, = 2", ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntry(tt.line)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseEntry(%q) error = %v, want %v", tt.line, err, tt.want)
			}
		})
	}
}

func TestNewAssignment_Errors(t *testing.T) {
	if _, err := NewAssignment("", Integer(1), ""); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("empty key: error = %v, want ErrInvalidEntry", err)
	}

	if _, err := NewAssignment("x", nil, ""); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("nil value: error = %v, want ErrInvalidEntry", err)
	}

	if _, err := NewAssignment("", nil, ""); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("empty entry: error = %v, want ErrInvalidEntry", err)
	}
}

func TestEntry_Render(t *testing.T) {
	e, err := NewAssignment("x", Integer(1), "one")
	if err != nil {
		t.Fatalf("NewAssignment error: %v", err)
	}

	if got, want := e.Render(), "  x = 1 !one"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	if err := e.SetValue(Real(2.5)); err != nil {
		t.Fatalf("SetValue error: %v", err)
	}

	e.SetComment("")

	if got, want := e.Render(), "  x = 2.5"; got != want {
		t.Errorf("Render() after edit = %q, want %q", got, want)
	}

	if e.ValueLength() != 3 || e.KeyLength() != 1 {
		t.Errorf("lengths = (%d, %d), want (1, 3)", e.KeyLength(), e.ValueLength())
	}
}

func TestEntry_SetKey(t *testing.T) {
	e, err := ParseEntry("x = 1")
	if err != nil {
		t.Fatalf("ParseEntry error: %v", err)
	}

	if err := e.SetKey("longer"); err != nil {
		t.Fatalf("SetKey error: %v", err)
	}

	if e.KeyLength() != len("longer") {
		t.Errorf("KeyLength() = %d, want %d", e.KeyLength(), len("longer"))
	}

	if err := e.SetKey("bad key!"); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("SetKey malformed: error = %v, want ErrInvalidEntry", err)
	}

	if err := NewComment("c").SetKey("x"); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("SetKey on comment: error = %v, want ErrInvalidEntry", err)
	}
}

func TestEntry_Clone(t *testing.T) {
	e, err := ParseEntry("x = 1, 2")
	if err != nil {
		t.Fatalf("ParseEntry error: %v", err)
	}

	c := e.Clone()
	c.Value().Elements[0].Int = 7

	if e.Value().Elements[0].Int != 1 {
		t.Error("clone shares value with original")
	}
}

func TestEntry_RenderFollowsEdits(t *testing.T) {
	f, err := Parse("&n\n  a = 1\n  long = 100\n/\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	n, _ := f.Namelist("n", 0)
	a, _ := n.Get("a", 0)
	long, _ := n.Get("long", 0)

	if err := a.SetValue(Integer(12345)); err != nil {
		t.Fatalf("SetValue error: %v", err)
	}

	if got, want := long.Render(), "  long =   100"; got != want {
		t.Errorf("sibling render = %q, want %q", got, want)
	}

	// A popped entry is aligned on its own.
	popped, _ := n.PopEntry("long", 0)
	if got, want := popped[0].Render(), "  long = 100"; got != want {
		t.Errorf("popped render = %q, want %q", got, want)
	}
}
