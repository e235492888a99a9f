// Package health serves liveness and readiness probes.
//
// Readiness runs named [CheckFunc]s concurrently, typically the Redis ping
// from pkg/redis and an [HTTPCheck] against the upstream content origin:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"redis":    redis.Healthcheck(client),
//		"upstream": health.HTTPCheck(nil, upstreamURL+"/"),
//	}, health.WithLogger(logger)))
//
// Both handlers answer plain text by default and JSON for ?format=json or
// an Accept header of application/json.
package health
