package namelist

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const queryInput = `&physics
  dt = 0.5 ! step size
  nsteps = 100
  label = 'fast'
/

&physics
  dt = 2.0
/
`

func TestCompileQuery_Errors(t *testing.T) {
	for _, src := range []string{"key ==", "1 + 1", "unknown == 1"} {
		t.Run(src, func(t *testing.T) {
			if _, err := CompileQuery(src); !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("CompileQuery(%q) error = %v, want ErrInvalidQuery", src, err)
			}
		})
	}
}

func TestFile_Select(t *testing.T) {
	f, err := Parse(queryInput)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	type hit struct {
		Index int
		Key   string
	}

	tests := []struct {
		query string
		want  []hit
	}{
		{"", []hit{{0, "dt"}, {0, "nsteps"}, {0, "label"}, {1, "dt"}}},
		{`key == "dt"`, []hit{{0, "dt"}, {1, "dt"}}},
		{`kind == "real" && native > 1.0`, []hit{{1, "dt"}}},
		{`native > 50`, []hit{{0, "nsteps"}}},
		{`comment == "step size"`, []hit{{0, "dt"}}},
		{`index == 1`, []hit{{1, "dt"}}},
		{`value == "'fast'" && native == "fast"`, []hit{{0, "label"}}},
		{`namelist == "nothing"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := CompileQuery(tt.query)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}

			found, err := f.Select(context.Background(), q)
			if err != nil {
				t.Fatalf("select error: %v", err)
			}

			var got []hit
			for _, m := range found {
				got = append(got, hit{m.Index, m.Entry.Key()})
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Select(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestFile_SelectCanceled(t *testing.T) {
	f, err := Parse(queryInput)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q, _ := CompileQuery("")
	if _, err := f.Select(ctx, q); !errors.Is(err, ErrIO) {
		t.Errorf("Select(canceled) error = %v, want ErrIO", err)
	}
}

func TestMatch_String(t *testing.T) {
	f, err := Parse(queryInput)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	q, _ := CompileQuery(`key == "nsteps" || index == 1`)

	found, err := f.Select(context.Background(), q)
	if err != nil {
		t.Fatalf("select error: %v", err)
	}

	var got []string
	for _, m := range found {
		got = append(got, m.String())
	}

	if diff := cmp.Diff([]string{"physics.nsteps = 100", "physics[1].dt = 2.0"}, got); diff != "" {
		t.Errorf("match strings mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryVariables(t *testing.T) {
	for _, name := range QueryVariables() {
		if _, err := CompileQuery(`type(` + name + `) != ""`); err != nil {
			t.Errorf("variable %q does not compile: %v", name, err)
		}
	}
}
