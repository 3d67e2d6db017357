package notify

import (
	"log/slog"
	"time"
)

// Config configures delivery defaults.
type Config struct {
	Timeout         time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	MaxRetries      int           `env:"NOTIFY_MAX_RETRIES" envDefault:"2"`
	BreakerFailures int           `env:"NOTIFY_BREAKER_FAILURES" envDefault:"5"`
	BreakerRecovery time.Duration `env:"NOTIFY_BREAKER_RECOVERY" envDefault:"30s"`
}

// Options turns cfg into Notifier options, including a fresh breaker.
func (cfg Config) Options() []Option {
	return []Option{
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
		WithBreaker(NewBreaker(cfg.BreakerFailures, cfg.BreakerRecovery)),
	}
}

// DeliveryResult describes one delivery attempt.
type DeliveryResult struct {
	Success    bool
	StatusCode int
	Attempt    int
	Duration   time.Duration
	Error      error
}

// DeliveryHook is called after each delivery attempt
type DeliveryHook func(result DeliveryResult)

type options struct {
	timeout         time.Duration
	maxRetries      int
	backoffStrategy BackoffStrategy
	breaker         *Breaker
	onDelivery      DeliveryHook
	logger          *slog.Logger
}

func defaultOptions() options {
	return options{
		timeout:         5 * time.Second,
		maxRetries:      2,
		backoffStrategy: DefaultBackoffStrategy(),
	}
}

// Option configures a Notifier or a single Send call.
type Option func(*options)

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithMaxRetries sets the number of retries after the first attempt. 0 disables retries.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithNoRetry disables all retry attempts
func WithNoRetry() Option {
	return WithMaxRetries(0)
}

// WithBackoff sets the retry delay strategy.
func WithBackoff(strategy BackoffStrategy) Option {
	return func(o *options) {
		if strategy != nil {
			o.backoffStrategy = strategy
		}
	}
}

// WithBreaker guards the endpoint with b.
func WithBreaker(b *Breaker) Option {
	return func(o *options) {
		o.breaker = b
	}
}

// WithOnDelivery sets a callback invoked after every attempt.
func WithOnDelivery(hook DeliveryHook) Option {
	return func(o *options) {
		o.onDelivery = hook
	}
}

// WithLogger sets the logger for delivery diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
