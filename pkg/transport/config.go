package transport

import "time"

// Config configures a Client for the application backend.
type Config struct {
	BaseURL   string        `env:"BACKEND_URL" envDefault:"http://localhost:8080"`
	Timeout   time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
	UserAgent string        `env:"BACKEND_USER_AGENT" envDefault:"checkoutkit/1.0"`
}
