// Package logger builds structured slog loggers with per-record context
// extraction and optional Sentry mirroring.
//
// Context extractors let request-scoped values ride along on every log
// record without threading them through call sites:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	}
//
//	log := logger.New([]logger.ContextExtractor{requestID})
//	log.InfoContext(ctx, "request served", slog.Int("status", 200))
//
// NewWithSentry layers a Sentry destination on top of stdout. When the
// DSN is empty it degrades to stdout only, so development and production
// share one construction path.
package logger
