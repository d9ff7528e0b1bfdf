// Package profile provides optional runtime profiling for the nml command.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag. Without it, [Profiler.Start] returns a no-op and
// [Modes] is empty, so callers need no build constraints of their own.
//
//	p := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	)
//	defer p.Start().Stop()
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace. Each writes <mode>.pprof (or trace.out) in the
// configured directory, for analysis with go tool pprof:
//
//	go build -tags pprof ./...
//	nml -p cpu fmt big.nml
//	go tool pprof -http=: ~/.cache/nml/pprof/cpu.pprof
//
// The pprof build also imports [net/http/pprof], registering its handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
