// Package db wraps pgxpool with startup retry, goose migrations, and a
// health probe for the refresh-token store.
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations, cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Healthcheck and Shutdown return closures that plug into the app's
// readiness checks and shutdown hooks.
package db
