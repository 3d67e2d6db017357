package trialserver

import "time"

// Config configures the trial backend.
type Config struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	TrialDuration   time.Duration `env:"TRIAL_DURATION" envDefault:"168h"`
	AnalyzerURL     string        `env:"ANALYZER_URL"`
	AnalyzerPath    string        `env:"ANALYZER_PATH" envDefault:"/analyze"`
	AnalyzerTimeout time.Duration `env:"ANALYZER_TIMEOUT" envDefault:"60s"`
	WelcomeTimeout  time.Duration `env:"WELCOME_EMAIL_TIMEOUT" envDefault:"10s"`
}
