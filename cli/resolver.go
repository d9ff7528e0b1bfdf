package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nml/log"
	"github.com/ardnew/nml/namelist"
)

// resolve returns a [kong.ConfigurationLoader] reading flag values from the
// namelist called name in a namelist file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config.nml")
//
// Each assignment of the namelist sets the flag of the same name, with '_'
// standing for '-'. Keys match case-insensitively and a repeated key takes
// its last value, as a Fortran namelist read would. Numbers and strings are
// handed to kong as text, logicals as bool, and arrays as comma-separated
// lists:
//
//	&config
//	  log_level = 'debug'
//	  log_pretty = .false.
//	  key_indent = 4
//	  path = '/opt/nml', '/srv/nml'
//	/
//
// Command-line flags override config file values. A file that does not
// parse configures nothing.
func resolve(ctx context.Context, name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		file, err := namelist.ParseReader(ctx, r, namelist.WithLogger(log.Default()))
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		n, ok := file.Namelist(name, 0)
		if !ok {
			log.DebugContext(ctx, "configuration namelist not found",
				slog.String("namelist", name),
			)

			return config{}, nil
		}

		return configFrom(n), nil
	}
}

// config implements [kong.Resolver] over the assignments of a namelist.
type config map[string]any

// configKey returns the config map key of a flag or assignment name.
func configKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
}

// configFrom converts the assignments of n to flag values.
func configFrom(n *namelist.Namelist) config {
	c := make(config)

	for _, e := range n.Assignments() {
		c[configKey(e.Key())] = flagText(e.Value())
	}

	return c
}

// flagText returns the kong representation of v: kong parses numbers from
// text, so only logicals keep their native type.
func flagText(v *namelist.Value) any {
	switch v.Kind {
	case namelist.KindLogical:
		return v.Bool

	case namelist.KindString:
		s, _ := v.Native().(string)

		return s

	case namelist.KindInteger:
		return strconv.FormatInt(v.Int, 10)

	case namelist.KindReal:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)

	case namelist.KindArray, namelist.KindMixed:
		part := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			part[i] = strings.TrimSpace(toString(flagText(e)))
		}

		return strings.Join(part, ",")

	default:
		return v.String()
	}
}

func toString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Validate implements [kong.Resolver]. Keys naming no flag are reported but
// tolerated.
func (r config) Validate(app *kong.Application) error {
	known := make(map[string]struct{})
	collectFlags(app.Node, known)

	for key := range r {
		if _, ok := known[key]; !ok {
			log.Warn("unknown configuration key", slog.String("key", key))
		}
	}

	return nil
}

func collectFlags(node *kong.Node, into map[string]struct{}) {
	if node == nil {
		return
	}

	for _, f := range node.Flags {
		into[configKey(f.Name)] = struct{}{}
	}

	for _, child := range node.Children {
		collectFlags(child, into)
	}
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[configKey(flag.Name)]; ok {
		return value, nil
	}

	// Not found: kong falls back to the default.
	return nil, nil
}
