package governor

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults keep steady-state throughput under roughly 100 requests per minute.
const (
	DefaultMinInterval    = 600 * time.Millisecond
	DefaultCooldown       = 60 * time.Second
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 30 * time.Second
)

// Option configures a Governor.
type Option func(*options)

// options holds configuration options for the Governor.
type options struct {
	minInterval    time.Duration
	cooldown       time.Duration
	maxAttempts    int
	attemptTimeout time.Duration
	logger         zerolog.Logger
	observer       Observer
}

func defaultOptions() options {
	return options{
		minInterval:    DefaultMinInterval,
		cooldown:       DefaultCooldown,
		maxAttempts:    DefaultMaxAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		logger:         zerolog.Nop(),
		observer:       nopObserver{},
	}
}

// WithMinInterval sets the minimum delay between two dispatch starts.
func WithMinInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.minInterval = d
		}
	}
}

// WithCooldown sets how long all dispatch pauses after a throttled attempt.
func WithCooldown(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.cooldown = d
		}
	}
}

// WithMaxAttempts sets the number of throttled attempts an operation may use
// before it settles with a RetryExhaustedError.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithAttemptTimeout bounds a single attempt. Zero disables the bound and
// leaves cancellation to the caller's context.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.attemptTimeout = d
		}
	}
}

// WithLogger sets the logger used for throttling and exhaustion events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver registers an Observer for queue events.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}
