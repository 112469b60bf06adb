package search

import "context"

// Option configures a single search invocation.
type Option func(*options)

type options struct {
	maxExpansions int
	observer      func(Stats)
	ctx           context.Context
}

// WithMaxExpansions bounds the number of expanded nodes. Zero or negative means unlimited.
func WithMaxExpansions(n int) Option {
	return func(o *options) {
		o.maxExpansions = n
	}
}

// WithObserver registers a callback invoked after every expansion.
func WithObserver(fn func(Stats)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// WithContext stops the search with ctx.Err() once ctx is done. The context is
// polled every cancelCheckInterval expansions.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

const cancelCheckInterval = 256

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) exhausted(expanded int) bool {
	return o.maxExpansions > 0 && expanded >= o.maxExpansions
}

func (o options) cancelled(expanded int) error {
	if o.ctx == nil || expanded%cancelCheckInterval != 0 {
		return nil
	}
	return o.ctx.Err()
}

func (o options) notify(s Stats) {
	if o.observer != nil {
		o.observer(s)
	}
}
