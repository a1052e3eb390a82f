package fsmkit

import "context"

// Option applies configuration to an Interpreter via functional options.
type Option func(*Interpreter)

// WithLogger wires a Logger into the interpreter. Nil disables logging.
func WithLogger(l Logger) Option {
	return func(in *Interpreter) {
		in.logger = l
	}
}

// WithTracing enables OpenTelemetry spans around Send and each action,
// using the globally registered tracer provider.
func WithTracing() Option {
	return func(in *Interpreter) {
		in.traced = true
	}
}

// WithBaseContext sets the context.Context used as the parent for spans and
// passed to Logger hooks. Defaults to context.Background().
func WithBaseContext(ctx context.Context) Option {
	return func(in *Interpreter) {
		in.base = ctx
	}
}

// WithInstanceID overrides the generated instance identifier. Useful when
// the host correlates interpreter instances with its own session IDs.
func WithInstanceID(id string) Option {
	return func(in *Interpreter) {
		in.id = id
	}
}
