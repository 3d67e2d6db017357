package paypal

import "time"

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"
)

// Config holds REST API credentials.
type Config struct {
	ClientID     string        `env:"PAYPAL_CLIENT_ID"`
	ClientSecret string        `env:"PAYPAL_CLIENT_SECRET"`
	Environment  string        `env:"PAYPAL_ENVIRONMENT" envDefault:"sandbox"`
	BaseURL      string        `env:"PAYPAL_API_BASE_URL"`
	Timeout      time.Duration `env:"PAYPAL_TIMEOUT" envDefault:"15s"`
}

// APIBaseURL returns BaseURL if set, otherwise the live or sandbox host.
func (c Config) APIBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Environment == "live" || c.Environment == "production" {
		return LiveBaseURL
	}
	return SandboxBaseURL
}
