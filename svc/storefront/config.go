package storefront

import "time"

// Config configures the storefront flows and HTTP surface.
type Config struct {
	AnalyzePath     string        `env:"STOREFRONT_ANALYZE_PATH" envDefault:"/api/analyze"`
	AnalysisTimeout time.Duration `env:"STOREFRONT_ANALYSIS_TIMEOUT" envDefault:"60s"`
	MaxVisitors     int           `env:"STOREFRONT_MAX_VISITORS" envDefault:"10000"`
	VisitorCookie   string        `env:"STOREFRONT_VISITOR_COOKIE" envDefault:"visitor_id"`
	SecureCookie    bool          `env:"STOREFRONT_SECURE_COOKIE" envDefault:"false"`
	DefaultPlanID   string        `env:"STOREFRONT_DEFAULT_PLAN_ID"`
}
