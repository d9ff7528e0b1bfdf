package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nml/cli/cmd"
	"github.com/ardnew/nml/pkg"
)

const (
	// DefaultDirMode is the permission mode of created runtime directories.
	DefaultDirMode = 0o700

	// configNamelist names the namelist of the configuration file holding
	// flag values.
	configNamelist = "config"
)

// CLI is the top-level command-line interface for nml.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path    []string         `help:"Directories searched for relative source paths." placeholder:"DIR" short:"I"`
	Version kong.VersionFlag `help:"Print version information and exit."              short:"V"`

	Fmt   cmd.Fmt   `cmd:"" help:"Format namelist files."`
	Get   cmd.Get   `cmd:"" help:"Print a namelist or the value of a key."`
	Set   cmd.Set   `cmd:"" help:"Assign a value to a key."`
	Del   cmd.Del   `cmd:"" help:"Remove keys or whole namelists."`
	Query cmd.Query `cmd:"" help:"Print the assignments matching an expression."`
	Edit  cmd.Edit  `cmd:"" help:"Edit namelists interactively."`
	Init  cmd.Init  `cmd:"" help:"Write the current flag values to the configuration file."`
}

// Run executes the nml CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	conf, err := initRuntime()
	if err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: conf,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	// Apply logger flags before kong reports anything, wherever they appear.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(pkg.EnvPrefix()),
		// Commands receive ctx as it stands after parsing.
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, conf+".json"),
		kong.Configuration(resolve(ctx, configNamelist), conf),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, append([]string{pkg.ConfigDir()}, cli.Path...)...)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}

// initRuntime creates the configuration and cache directories and returns
// the path of the configuration file.
func initRuntime() (conf string, err error) {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
			return "", err
		}
	}

	return filepath.Join(pkg.ConfigDir(), pkg.ConfigFile), nil
}

// version returns the text printed by --version.
func version() string {
	var b strings.Builder

	b.WriteString(pkg.Name + " " + pkg.Version())

	for _, a := range pkg.Author {
		b.WriteString("\n  " + strings.TrimSpace(a.Name+" <"+a.Email+">"))
	}

	return b.String()
}
