package repl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

const sessionSource = `&run
  steps = 10 ! iterations
  name = 'demo'
/

&grid
  nx = 4
  ny = 8
/

&grid
  nx = 16
/
`

func newTestSession(t *testing.T) *session {
	t.Helper()

	f, err := namelist.Parse(sessionSource)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	return newSession(f, "", log.Logger{})
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"  list  ", []string{"list"}},
		{"get run steps", []string{"get", "run", "steps"}},
		{"set run name 'two words'", []string{"set", "run", "name", "'two words'"}},
		{`set run name "it's"`, []string{"set", "run", "name", `"it's"`}},
		{"set\trun x 1, 2", []string{"set", "run", "x", "1,", "2"}},
		{"set run s ''", []string{"set", "run", "s", "''"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, splitArgs(tt.line)); diff != "" {
				t.Errorf("splitArgs(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestLookupCommand(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"list", "list", true},
		{"l", "list", true},
		{"q", "quit", true},
		{"quit!", "quit", true},
		{"w!", "write", true},
		{"s", "", false}, // show, set
		{"bogus", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := lookupCommand(tt.name)
			if ok != tt.ok || cmd.name != tt.want {
				t.Errorf("lookupCommand(%q) = (%q, %v), want (%q, %v)",
					tt.name, cmd.name, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSession_Exec_Read(t *testing.T) {
	tests := []struct {
		line     string
		contains []string
		wantErr  error
	}{
		{"list", []string{"run", "grid[0]", "grid[1]", "steps, name"}, nil},
		{"show grid 1", []string{"&grid", "16"}, nil},
		{"show grid x", nil, ErrUsage},
		{"show", []string{"&run", "&grid"}, nil},
		{"get run", []string{"&run", "steps"}, nil},
		{"get run steps", []string{"10"}, nil},
		{"get RUN Name", []string{"'demo'"}, nil},
		{"get run stepz", nil, ErrNoSuchKey},
		{"get rnu", nil, ErrNoSuchNamelist},
		{"get", nil, ErrUsage},
		{"frobnicate", nil, ErrUnknownCommand},
		{"help", []string{"set nml key value...", "Esc"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := newTestSession(t)

			out, act, err := s.exec(context.Background(), tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if act != actNone {
				t.Errorf("action = %v, want none", act)
			}

			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}

			if s.dirty {
				t.Error("read-only command marked session dirty")
			}
		})
	}
}

func TestSession_Exec_Set(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	out, _, err := s.exec(ctx, "set run steps 20")
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	if !strings.Contains(out, "20") {
		t.Errorf("output = %q", out)
	}

	n, _ := s.file.Namelist("run", 0)
	if e, _ := n.Get("steps", 0); e.Value().String() != "20" || e.Comment() != "! iterations" {
		t.Errorf("steps = %q ! %q", e.Value().String(), e.Comment())
	}

	if _, _, err := s.exec(ctx, "set out path 'a b.txt'"); err != nil {
		t.Fatalf("set new namelist: %v", err)
	}

	out2, ok := s.file.Namelist("out", 0)
	if !ok {
		t.Fatal("set did not create namelist")
	}

	if e, _ := out2.Get("path", 0); e.Value().String() != "'a b.txt'" {
		t.Errorf("path = %q", e.Value().String())
	}

	if !s.dirty {
		t.Error("set did not mark session dirty")
	}

	if _, _, err := s.exec(ctx, "set run steps"); !errors.Is(err, ErrUsage) {
		t.Errorf("missing value error = %v", err)
	}

	if _, _, err := s.exec(ctx, "set run steps word"); !errors.Is(err, namelist.ErrUnrecognizedLiteral) {
		t.Errorf("bare word error = %v", err)
	}
}

func TestSession_Exec_Del(t *testing.T) {
	tests := []struct {
		line      string
		want      string
		namelists int
		wantErr   error
	}{
		{line: "del grid", want: "removed 1 of 2", namelists: 2},
		{line: "del grid 1", want: "removed 1 of 2", namelists: 2},
		{line: "del grid *", want: "removed 2 of 2", namelists: 1},
		{line: "del run steps", want: "removed 1 of 1", namelists: 3},
		{line: "del grid nx 5", want: "removed 1 of 1 (index clamped to last match)", namelists: 3},
		{line: "del grid nz", wantErr: ErrNoSuchKey, namelists: 3},
		{line: "del mesh", wantErr: ErrNoSuchNamelist, namelists: 3},
		{line: "del grid nx x", wantErr: ErrUsage, namelists: 3},
		{line: "del", wantErr: ErrUsage, namelists: 3},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := newTestSession(t)

			out, _, err := s.exec(context.Background(), tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("del: %v", err)
			}

			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}

			if s.file.Len() != tt.namelists {
				t.Errorf("namelists = %d, want %d", s.file.Len(), tt.namelists)
			}

			if s.dirty != (tt.wantErr == nil) {
				t.Errorf("dirty = %v", s.dirty)
			}
		})
	}
}

func TestSession_Exec_Quit(t *testing.T) {
	ctx := context.Background()

	s := newTestSession(t)
	if _, act, _ := s.exec(ctx, "quit"); act != actQuit {
		t.Errorf("clean quit action = %v", act)
	}

	s = newTestSession(t)
	s.dirty = true

	out, act, _ := s.exec(ctx, "quit")
	if act != actNone || !strings.Contains(out, "unsaved") {
		t.Errorf("dirty quit = (%q, %v)", out, act)
	}

	if _, act, _ := s.exec(ctx, "quit"); act != actQuit {
		t.Errorf("second quit action = %v", act)
	}

	s = newTestSession(t)
	s.dirty = true

	if _, act, _ := s.exec(ctx, "q!"); act != actQuit {
		t.Errorf("forced quit action = %v", act)
	}

	for line, want := range map[string]action{"edit": actEdit, "clear": actClear} {
		if _, act, _ := s.exec(ctx, line); act != want {
			t.Errorf("%s action = %v, want %v", line, act, want)
		}
	}
}

func TestSession_Write(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "input.nml")

	if err := os.WriteFile(src, []byte(sessionSource), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := namelist.Open(src)
	if err != nil {
		t.Fatal(err)
	}

	s := newSession(f, src, log.Logger{})

	if _, _, err := s.exec(ctx, "set run steps 99"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.exec(ctx, "write"); err != nil {
		t.Fatalf("write to source: %v", err)
	}

	if s.dirty {
		t.Error("write to source left session dirty")
	}

	data, _ := os.ReadFile(src)
	if !strings.Contains(string(data), "99") {
		t.Errorf("source not rewritten:\n%s", data)
	}

	other := filepath.Join(dir, "other.nml")
	if err := os.WriteFile(other, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.exec(ctx, "write "+other); !errors.Is(err, namelist.ErrWriteConflict) {
		t.Errorf("write to existing file error = %v", err)
	}

	if _, _, err := s.exec(ctx, "write! "+other); err != nil {
		t.Errorf("forced write: %v", err)
	}

	stdin := newSession(f, "-", log.Logger{})
	if _, _, err := stdin.exec(ctx, "write"); !errors.Is(err, ErrUsage) {
		t.Errorf("write without path error = %v", err)
	}
}

func TestSession_Query(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	out, err := s.query(ctx, `namelist == "grid" && key == "nx"`)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff("grid.nx = 4\ngrid[1].nx = 16", out); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}

	if out, _ := s.query(ctx, `key == "missing"`); out != "no matches" {
		t.Errorf("empty query output = %q", out)
	}

	if _, err := s.query(ctx, "key =="); !errors.Is(err, namelist.ErrInvalidQuery) {
		t.Errorf("invalid query error = %v", err)
	}
}

func TestDescribe(t *testing.T) {
	err := notFound(ErrNoSuchKey, "stps", []string{"steps", "name", "STEPS"})

	got := describe(err)
	if !strings.HasPrefix(got, "key not found") ||
		!strings.Contains(got, "name=stps") ||
		!strings.Contains(got, "suggest=steps") {
		t.Errorf("describe = %q", got)
	}

	if strings.Contains(got, "STEPS") {
		t.Errorf("suggestions not deduplicated: %q", got)
	}

	if got := describe(errors.New("plain")); got != "plain" {
		t.Errorf("describe(plain) = %q", got)
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       []string
	}{
		{"stps", []string{"steps", "name", "STEPS"}, []string{"steps"}},
		{"GRD", []string{"run", "grid", "Grid"}, []string{"grid"}},
		{"nx", []string{" ", "nx"}, []string{"nx"}},
		{"zzz", []string{"run"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Suggest(tt.name, tt.candidates)); diff != "" {
				t.Errorf("Suggest(%q) mismatch (-want +got):\n%s", tt.name, diff)
			}
		})
	}
}
