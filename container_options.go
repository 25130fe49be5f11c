package autowire

import (
	"github.com/rs/zerolog"
)

// Option configures a Container.
type Option interface {
	apply(*options)
}

// options holds container configuration.
type options struct {
	registry *Registry
	logger   *zerolog.Logger
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

// WithRegistry makes the container read markers from reg. Share one registry
// between the code that applies markers and the container.
func WithRegistry(reg *Registry) Option {
	return optionFunc(func(opts *options) {
		opts.registry = reg
	})
}

// WithLogger sets the logger for binding, registration and creation events.
// The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = &logger
	})
}
