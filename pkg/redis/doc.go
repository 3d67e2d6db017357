// Package redis connects to redis with retries and exposes a readiness probe.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	r.Get("/ready", httpserver.ReadinessHandler(log, redis.Healthcheck(client)))
//
// The storefront keeps trial sessions in redis through trial.RedisStore.
package redis
