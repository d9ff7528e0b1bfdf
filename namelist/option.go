package namelist

import "github.com/ardnew/nml/log"

// Option configures parsing and editing behavior.
type Option func(*options)

type options struct {
	logger log.Logger
	align  Alignment
}

func makeOptions(opts ...Option) options {
	o := options{align: DefaultAlignment()}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the structured logger receiving parse traces and edit
// warnings (missing names, clamped indices, overwritten files).
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAlignment sets the initial layout.
func WithAlignment(a Alignment) Option {
	return func(o *options) {
		o.align = a.normalize()
	}
}
