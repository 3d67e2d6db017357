// Command storefront serves the website analysis trial and the PayPal
// checkout flows. With JWT_SECRET set it also serves the trial backend
// (/api/subscribe, /api/analyze) from the same process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/checkoutkit/pkg/catalog"
	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/clientip"
	"github.com/dmitrymomot/checkoutkit/pkg/config"
	"github.com/dmitrymomot/checkoutkit/pkg/email"
	"github.com/dmitrymomot/checkoutkit/pkg/httpserver"
	"github.com/dmitrymomot/checkoutkit/pkg/jwt"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/notify"
	"github.com/dmitrymomot/checkoutkit/pkg/paypal"
	"github.com/dmitrymomot/checkoutkit/pkg/ratelimiter"
	"github.com/dmitrymomot/checkoutkit/pkg/redis"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
	"github.com/dmitrymomot/checkoutkit/pkg/trial"
	"github.com/dmitrymomot/checkoutkit/pkg/widget"
	"github.com/dmitrymomot/checkoutkit/svc/storefront"
	"github.com/dmitrymomot/checkoutkit/svc/trialserver"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Service  string `env:"APP_NAME" envDefault:"storefront"`
	UseRedis bool   `env:"USE_REDIS" envDefault:"false"`
}

func main() {
	var app appConfig
	config.MustLoad(&app)

	log := logger.New(
		logger.WithEnvironment(app.Env, app.Service),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			if v := storefront.VisitorFrom(ctx); v != "" {
				return logger.VisitorID(v), true
			}
			return slog.Attr{}, false
		}),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), app, log); err != nil {
		log.Error("storefront stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, app appConfig, log *slog.Logger) error {
	var (
		backendCfg transport.Config
		paypalCfg  paypal.Config
		widgetCfg  widget.Config
		notifyCfg  notify.Config
		shopCfg    storefront.Config
		httpCfg    httpserver.Config
		catalogCfg catalog.Config
		trialCfg   trialserver.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&backendCfg) },
		func() error { return config.Load(&paypalCfg) },
		func() error { return config.Load(&widgetCfg) },
		func() error { return config.Load(&notifyCfg) },
		func() error { return config.Load(&shopCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&catalogCfg) },
		func() error { return config.Load(&trialCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	cat, err := catalog.Load(catalogCfg)
	if err != nil {
		return err
	}

	backend, err := transport.NewFromConfig(backendCfg, transport.WithLogger(log))
	if err != nil {
		return err
	}

	var readiness []httpserver.HealthCheck
	var rdb *goredis.Client
	if app.UseRedis {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		rdb, err = redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		readiness = append(readiness, redis.Healthcheck(rdb))
	}

	gateOpts := []trial.Option{trial.WithLogger(log)}
	if rdb != nil {
		var sessionCfg trial.RedisConfig
		if err := config.Load(&sessionCfg); err != nil {
			return err
		}
		store, err := trial.NewRedisStore(rdb, sessionCfg)
		if err != nil {
			return err
		}
		gateOpts = append(gateOpts, trial.WithStore(store))
	}
	gate := trial.NewGate(backend, gateOpts...)

	models := []checkout.Model{checkout.NewOrderModel(backend)}
	pp, err := paypal.New(paypalCfg, paypal.WithLogger(log))
	switch {
	case err == nil:
		notifier := notify.New(backend, append(notifyCfg.Options(), notify.WithLogger(log))...)
		models = append(models, checkout.NewSubscriptionModel(pp, checkout.WithNotifier(notifier)))
	case errors.Is(err, paypal.ErrMissingCredentials):
		log.Warn("paypal credentials not set, subscriptions disabled")
	default:
		return err
	}

	registry := widget.NewRegistry(widget.WithRegistryLogger(log), widget.WithCapacity(shopCfg.MaxVisitors))
	defer func() { _ = registry.Close() }()

	checkoutFlow := storefront.NewCheckoutFlow(registry, widgetCfg,
		storefront.WithModels(models...),
		storefront.WithCatalog(cat),
		storefront.WithDefaultPlan(shopCfg.DefaultPlanID),
		storefront.WithMaxAttempts(shopCfg.MaxVisitors),
		storefront.WithCheckoutLogger(log),
	)
	defer func() { _ = checkoutFlow.Close() }()

	analysis := storefront.NewAnalysisFlow(gate, backend, shopCfg, log)

	shop := storefront.NewServer(analysis, checkoutFlow, shopCfg,
		storefront.WithServerLogger(log),
		storefront.WithReadiness(readiness...),
		storefront.WithCatalogListing(map[string]any{
			"currency": cat.Currency(),
			"products": cat.Products(),
			"plans":    cat.Plans(),
		}),
	)

	var handler http.Handler = shop.Router()
	if trialCfg.JWTSecret != "" {
		trials, err := newTrialServer(trialCfg, rdb, log)
		if err != nil {
			return err
		}
		defer trials.Wait()

		root := chi.NewRouter()
		trials.Routes(root)
		root.Mount("/", handler)
		handler = root
	}

	return httpserver.New(httpCfg, httpserver.WithLogger(log)).Run(ctx, handler)
}

func newTrialServer(cfg trialserver.Config, rdb *goredis.Client, log *slog.Logger) (*trialserver.Server, error) {
	tokens, err := jwt.New(cfg.JWTSecret, jwt.WithTrialTTL(cfg.TrialDuration))
	if err != nil {
		return nil, err
	}

	var emailCfg email.Config
	if err := config.Load(&emailCfg); err != nil {
		return nil, err
	}
	sender, err := email.NewFromConfig(emailCfg, log)
	if err != nil {
		return nil, err
	}

	var limitCfg ratelimiter.Config
	if err := config.Load(&limitCfg); err != nil {
		return nil, err
	}
	var store ratelimiter.Store
	if rdb != nil {
		if store, err = ratelimiter.NewRedisStore(rdb, limitCfg); err != nil {
			return nil, err
		}
	} else {
		store = ratelimiter.NewMemoryStore()
	}
	bucket, err := ratelimiter.NewBucket(store, limitCfg)
	if err != nil {
		return nil, err
	}

	opts := []trialserver.Option{
		trialserver.WithLogger(log),
		trialserver.WithSender(sender),
		trialserver.WithRateLimit(bucket, clientip.New()),
		trialserver.WithWelcomeTimeout(cfg.WelcomeTimeout),
	}
	if cfg.AnalyzerURL != "" {
		upstream, err := transport.New(cfg.AnalyzerURL, transport.WithTimeout(cfg.AnalyzerTimeout), transport.WithLogger(log))
		if err != nil {
			return nil, err
		}
		opts = append(opts, trialserver.WithAnalyzer(trialserver.NewRemoteAnalyzer(upstream, cfg.AnalyzerPath)))
	}

	return trialserver.New(tokens, opts...), nil
}
