// Package redis opens the go-redis client used by the shared object cache.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"}, logger)
//	if err != nil {
//		return err
//	}
//	objects := cache.NewRedis[source.Object](client, nil, cache.WithPrefix("hxcompose"))
//
// [Healthcheck] and [Shutdown] adapt the client to readiness probes and
// server shutdown hooks.
package redis
