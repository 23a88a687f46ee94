package exchange

// Option is a functional option for fetch operations.
type Option func(*Options)

// Options holds per-call options. The zero value means no option was
// supplied: an unset Limit is omitted from the request entirely.
type Options struct {
	Limit int
}

// WithLimit bounds the number of entries returned by the venue.
// A non-positive limit is indistinguishable from the zero value and is
// treated as unset: no limit parameter is sent.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// ApplyOptions folds the given options into an Options value.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
