package rtos

import "github.com/bbrown1867/rucos-go/kernel"

// options holds configuration gathered from [Option] values passed to New.
type options struct {
	logger kernel.Logger
}

// Option configures a [Runtime] at construction time.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithLogger attaches a [kernel.Logger] the kernel uses for scheduler
// tracing. Omitting this option leaves the kernel's
// default no-op logger in place.
func WithLogger(l kernel.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

func resolveOptions(opts []Option) *options {
	cfg := &options{logger: kernel.NoopLogger{}}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}
