// Package logger builds the structured slog logger used by the server.
//
// [New] creates a JSON or text handler at a configured level, wraps it with
// context extractors and optionally fans records out to Sentry:
//
//	log := logger.New(logger.Config{
//		Level:  "debug",
//		Format: logger.FormatJSON,
//		Sentry: logger.SentryConfig{DSN: os.Getenv("SENTRY_DSN")},
//	}, middlewares.RequestIDExtractor(), compose.DepthExtractor())
//
//	log.InfoContext(ctx, "fragment resolved", slog.String("key", "/cart"))
//	// {"level":"INFO","msg":"fragment resolved","key":"/cart","request_id":"01J...","compose_depth":1}
//
// # Context Extractors
//
// A [ContextExtractor] returns an attribute taken from the context of each
// log call, so request-scoped values such as the request ID or the
// composition depth of a fragment sub-request appear without being passed
// around. Return false to skip the attribute for that record.
//
// # Sentry
//
// With a DSN, errors create Sentry issues and warnings are stored as logs.
// If initialization fails the logger keeps writing to its output. Register
// [FlushSentry] as a shutdown hook so buffered events are sent on exit.
//
// [NewNope] returns a logger discarding everything; components use it when
// no logger is configured.
package logger
