// Package cli contains the command line interface for nml.
//
// # Usage
//
//	nml [flags] <command> [args]
//
// The commands are implemented in package [github.com/ardnew/nml/cli/cmd]:
//
//	nml fmt input.nml                    # print canonical form
//	nml fmt --check *.nml                # exit non-zero unless canonical
//	nml get input.nml run steps          # print a value
//	nml set -i input.nml run steps 20    # assign in place
//	nml del input.nml grid               # remove a namelist
//	nml query input.nml 'native > 10'    # filter assignments
//	nml edit input.nml                   # interactive editor
//	nml init                             # write the configuration file
//
// # Configuration
//
// Flag values are resolved, lowest precedence first, from defaults, the
// configuration file, environment variables, and the command line. The
// configuration file is itself a namelist file, the &config namelist of
// config.nml in the user configuration directory:
//
//	&config
//	  log_level = 'debug'
//	  path = '/opt/nml'
//	/
//
// Environment variables are named by the upper-case flag name with the
// prefix NML_, for example NML_LOG_LEVEL.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o nml .
//
// With it, --pprof-mode selects a profile (allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread, trace) and --pprof-dir the directory
// receiving it.
package cli
