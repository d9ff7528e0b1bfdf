package namelist

import "errors"

// Builder provides a programmatic API for constructing namelist files
// without parsing text. Errors from invalid keys are collected and reported
// by [Builder.File].
//
// Example:
//
//	b := namelist.NewBuilder()
//	f, err := b.File(
//	    b.Namelist("config",
//	        b.Set("log_level", b.String("info"), "minimum level"),
//	        b.Set("verbose", b.Logical(false), ""),
//	    ),
//	)
type Builder struct {
	opts []Option
	errs []error
}

// NewBuilder creates a new file builder. The options apply to the built
// file.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{opts: opts}
}

// File creates a file holding the given namelists, or the joined errors of
// every invalid entry requested since the builder was created.
func (b *Builder) File(nmls ...*Namelist) (*File, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}

	f := NewFile(b.opts...)
	for _, n := range nmls {
		f.AddNamelist(n)
	}

	return f, nil
}

// Namelist creates a namelist holding the given entries. Nil entries, such
// as those returned for invalid assignments, are skipped.
func (b *Builder) Namelist(name string, entries ...*Entry) *Namelist {
	return NewNamelist(name, entries...)
}

// Set creates an assignment entry. An invalid key is recorded and nil is
// returned.
func (b *Builder) Set(key string, value *Value, comment string) *Entry {
	e, err := NewAssignment(key, value, comment)
	if err != nil {
		b.errs = append(b.errs, err)

		return nil
	}

	return e
}

// Comment creates a comment-only entry.
func (b *Builder) Comment(text string) *Entry { return NewComment(text) }

// Blank creates a blank entry.
func (b *Builder) Blank() *Entry { return NewBlank() }

// Logical creates a logical [Value].
func (b *Builder) Logical(v bool) *Value { return Logical(v) }

// String creates a character [Value].
func (b *Builder) String(s string) *Value { return String(s) }

// Integer creates an integer [Value].
func (b *Builder) Integer(i int64) *Value { return Integer(i) }

// Real creates a real [Value].
func (b *Builder) Real(f float64) *Value { return Real(f) }

// Complex creates a complex [Value].
func (b *Builder) Complex(re, im float64) *Value { return Complex(re, im) }

// Array creates an array [Value].
func (b *Builder) Array(elems ...*Value) *Value { return Array(elems...) }
