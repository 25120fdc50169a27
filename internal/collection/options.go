package collection

import "github.com/Iron-Ham/conclist/internal/logging"

type options struct {
	capacity int
	logger   *logging.Logger
}

// Option configures a list at construction time.
type Option func(*options)

// WithCapacity preallocates room for n elements.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLogger sets the logger for registration churn and recovered handler
// panics. Lists log nowhere by default.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
