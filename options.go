package ringbuffer

import (
	"context"
	"log/slog"
)

// Option configures a RingBuffer or LockingRingBuffer.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	release func() error
}

// WithLogger makes the buffer report evictions and cleanup at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRelease registers the function CleanUp calls to hand the backing region
// back to its owner, e.g. (*region.Region).Release.
func WithRelease(release func() error) Option {
	return func(o *options) {
		o.release = release
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(discardHandler{})
	}
	return o
}

// discardHandler drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
