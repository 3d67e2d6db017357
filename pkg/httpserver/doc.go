// Package httpserver runs an HTTP handler with graceful shutdown and
// provides liveness and readiness handlers.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	r.Get("/health", httpserver.LivenessHandler())
//	r.Get("/ready", httpserver.ReadinessHandler(log, redis.Healthcheck(client)))
//	err := srv.Run(ctx, r)
//
// Run returns when ctx is cancelled or on SIGINT/SIGTERM. Shutdown waits for
// in-flight requests up to Config.ShutdownTimeout.
package httpserver
