// Package redis opens go-redis clients with startup retry and exposes
// health and shutdown closures for the app lifecycle.
//
// The distributed rate-limit counters ride on the client returned here:
//
//	client, err := redis.Open(ctx, cfg.RedisURL)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
