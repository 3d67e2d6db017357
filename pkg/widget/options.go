package widget

import "log/slog"

// ButtonOption configures a Button.
type ButtonOption func(*Button)

// WithStyle overrides the default button style.
func WithStyle(s ButtonStyle) ButtonOption {
	return func(b *Button) {
		b.style = s
	}
}

// WithLogger sets the button logger.
func WithLogger(l *slog.Logger) ButtonOption {
	return func(b *Button) {
		if l != nil {
			b.logger = l
		}
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCapacity sets how many renderings the registry keeps (default 1024).
// The least recently used rendering is closed when the limit is exceeded.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}
