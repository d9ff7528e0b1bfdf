package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
	"github.com/ardnew/nml/profile"
)

// Init generates a configuration file holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	file, err := i.build(ktx)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if werr := file.Write(confPath, i.Force); werr != nil {
		base := ErrWriteConfig.With(slog.String("file", confPath))
		if errors.Is(werr, namelist.ErrWriteConflict) {
			return base.With(slog.Bool("exists", true)).Wrap(ErrFileExists)
		}

		return base.Wrap(werr)
	}

	log.InfoContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// build constructs the configuration namelist from current flag values.
// Each flag becomes an assignment whose key is the flag name with '_' for
// '-', commented with the flag's help text.
func (i *Init) build(ktx *kong.Context) (*namelist.File, error) {
	b := namelist.NewBuilder()

	var entries []*namelist.Entry

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := flagValue(b, ktx.FlagValue(flag))
		if val == nil {
			continue
		}

		key := strings.ReplaceAll(flag.Name, "-", "_")
		if e := b.Set(key, val, flag.Help); e != nil {
			entries = append(entries, e)
		}
	}

	return b.File(b.Namelist(ConfigIdentifier, entries...))
}

// flagValue returns the namelist value of a flag, or nil if it is unset or
// has no namelist representation.
func flagValue(b *namelist.Builder, val any) *namelist.Value {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case bool:
		return b.Logical(v)

	case string:
		if v == "" {
			return nil
		}

		return b.String(v)

	case fmt.Stringer:
		if s := v.String(); s != "" {
			return b.String(s)
		}

		return nil
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return b.Integer(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return b.Integer(int64(rv.Uint()))

	case reflect.Float32, reflect.Float64:
		return b.Real(rv.Float())

	case reflect.String:
		if rv.String() == "" {
			return nil
		}

		return b.String(rv.String())

	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}

		elems := make([]*namelist.Value, 0, rv.Len())

		for j := range rv.Len() {
			if e := flagValue(b, rv.Index(j).Interface()); e != nil {
				elems = append(elems, e)
			}
		}

		if len(elems) == 0 {
			return nil
		}

		return b.Array(elems...)

	default:
		return nil
	}
}
