package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ardnew/nml/namelist"
)

// writeTemp creates name under dir holding content and returns its path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func readSources(t *testing.T, ctx context.Context, sources ...string) string {
	t.Helper()

	r, done, err := openSources(ctx, sources)
	if err != nil {
		t.Fatalf("openSources(%v): %v", sources, err)
	}
	defer done()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading sources: %v", err)
	}

	return string(data)
}

func TestSearchPath(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	sep := string(os.PathListSeparator)

	got := SearchPath("/etc/nml", "/opt/a"+sep+" "+sep+"/opt/b", "/etc/nml")
	if len(got) == 0 || got[0] != cwd {
		t.Fatalf("SearchPath = %v, want working directory first", got)
	}

	want := []string{cwd, "/etc/nml", "/opt/a", "/opt/b"}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("SearchPath mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{cwd}, SearchPath()); diff != "" {
		t.Errorf("empty SearchPath mismatch (-want +got):\n%s", diff)
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")

	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	found := writeTemp(t, sub, "input.nml", "&n\n/\n")
	ctx := WithSearchPath(context.Background(), dir, sub)

	tests := []struct {
		name    string
		source  string
		want    string
		wantErr error
	}{
		{name: "stdin", source: "-", want: "-"},
		{name: "absolute", source: found, want: found},
		{name: "search_path", source: "input.nml", want: found},
		{name: "directory_skipped", source: "sub", wantErr: namelist.ErrFileNotFound},
		{name: "missing", source: "absent.nml", wantErr: namelist.ErrFileNotFound},
		{name: "missing_absolute", source: filepath.Join(dir, "absent.nml"), wantErr: namelist.ErrFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(ctx, tt.source)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Locate(%q) error = %v, want %v", tt.source, err, tt.wantErr)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("Locate(%q) = (%q, %v), want %q", tt.source, got, err, tt.want)
			}
		})
	}
}

func TestOpenSources(t *testing.T) {
	dir := t.TempDir()
	first := writeTemp(t, dir, "first.nml", "first")
	second := writeTemp(t, dir, "second.nml", "second")

	link := filepath.Join(dir, "link.nml")
	if err := os.Symlink(first, link); err != nil {
		t.Fatal(err)
	}

	ctx := WithSearchPath(context.Background(), dir)

	tests := []struct {
		name    string
		sources []string
		stdin   string
		want    string
	}{
		{"single", []string{first}, "", "first\n"},
		{"concatenated", []string{first, second}, "", "first\nsecond\n"},
		{"duplicate_path", []string{first, first, first}, "", "first\n"},
		{"relative_and_absolute", []string{"first.nml", first}, "", "first\n"},
		{"symlink", []string{first, link}, "", "first\n"},
		{"stdin_last", []string{"-", second}, "piped", "second\npiped\n"},
		{"stdin_once", []string{"-", "-", "-"}, "piped", "piped\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithStdio(ctx, strings.NewReader(tt.stdin), io.Discard)

			if got := readSources(t, ctx, tt.sources...); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenSources_Errors(t *testing.T) {
	ctx := WithSearchPath(context.Background(), t.TempDir())

	if _, _, err := openSources(ctx, nil); !errors.Is(err, ErrNoSource) {
		t.Errorf("no sources error = %v, want ErrNoSource", err)
	}

	if _, _, err := openSources(ctx, []string{"absent.nml"}); !errors.Is(err, namelist.ErrFileNotFound) {
		t.Errorf("missing source error = %v, want ErrFileNotFound", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.nml", "&a\n  x = 1\n/")
	b := writeTemp(t, dir, "b.nml", "&b\n  y = 2\n/")

	file, err := load(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "b"}, file.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	bad := writeTemp(t, dir, "bad.nml", "&a\n  x = 1\n")
	if _, err := load(context.Background(), []string{bad}); !errors.Is(err, namelist.ErrStructuralMismatch) {
		t.Errorf("malformed source error = %v, want ErrStructuralMismatch", err)
	}
}

func TestWriteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.txt")

	render := func(s string) func(io.Writer) error {
		return func(w io.Writer) error {
			_, err := io.WriteString(w, s)

			return err
		}
	}

	if err := writeFile(ctx, path, false, render("one")); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := writeFile(ctx, path, false, render("two"))
	if !errors.Is(err, ErrWriteOutput) || !errors.Is(err, ErrFileExists) {
		t.Errorf("existing file error = %v", err)
	}

	if err := writeFile(ctx, path, true, render("three")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	if data, _ := os.ReadFile(path); string(data) != "three" {
		t.Errorf("content = %q, want %q", data, "three")
	}

	failed := writeFile(ctx, filepath.Join(t.TempDir(), "x"), false, func(io.Writer) error {
		return errors.New("render failed")
	})
	if !errors.Is(failed, ErrWriteOutput) {
		t.Errorf("render error = %v", failed)
	}
}

func TestDestination_Emit(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "src.nml", "&n\n  a = 1\n/\n")
	ctx := WithSearchPath(context.Background(), dir)

	file, err := namelist.Parse("&n\n  a = 2\n/\n")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		dest    Destination
		source  string
		wantErr error
	}{
		{
			name:    "conflict",
			dest:    Destination{Target: Target{Output: "x.nml"}, InPlace: true},
			source:  src,
			wantErr: ErrConflictingOutput,
		},
		{
			name:    "stdin_in_place",
			dest:    Destination{InPlace: true},
			source:  "-",
			wantErr: ErrWriteOutput,
		},
		{
			name:   "in_place",
			dest:   Destination{InPlace: true},
			source: "src.nml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dest.emit(ctx, file, tt.source)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("emit error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("emit: %v", err)
			}

			if data, _ := os.ReadFile(src); string(data) != file.Render() {
				t.Errorf("source not rewritten:\n%s", data)
			}
		})
	}
}

func TestTarget_EmitStdout(t *testing.T) {
	var out bytes.Buffer

	ctx := WithStdio(context.Background(), nil, &out)

	err := Target{Output: "-"}.emit(ctx, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")

		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	if out.String() != "hello" {
		t.Errorf("stdout = %q", out.String())
	}
}
