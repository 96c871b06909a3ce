// Package health serves Kubernetes-style liveness and readiness probes.
//
// Liveness always answers OK. Readiness runs named dependency probes in
// parallel under a shared deadline and answers 503 when any fail:
//
//	checks := health.Checks{
//		"postgres": db.Healthcheck(pool),
//		"redis":    redis.Healthcheck(client),
//	}
//	mux.Handle("/health/ready", health.ReadinessHandler(checks))
//	mux.Handle("/health/live", health.LivenessHandler())
//
// Responses are plain text by default; clients sending Accept:
// application/json or ?format=json get the per-check breakdown.
package health
