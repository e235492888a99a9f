package compose

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/hxcompose/pkg/logger"
)

type depthKey struct{}

// WithDepth attaches a recursion token to ctx. Sub-requests carry the depth
// of the composition that synthesized them plus one.
func WithDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}

// DepthFromContext returns the recursion token of ctx. Requests without
// a token are top-level and have depth 0.
func DepthFromContext(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

// DepthExtractor adds compose_depth to log records of sub-requests.
func DepthExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		d, ok := ctx.Value(depthKey{}).(int)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.Int("compose_depth", d), true
	}
}
