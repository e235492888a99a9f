// Command hxcompose serves HTML pages composed from fragments.
//
// Usage:
//
//	hxcompose [-config hxcompose.yaml] [-addr :8080] [-dir ./site] [-pages ./pages] [-upstream http://app:3000]
//
// Without -dir it serves the embedded demo site.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/hxcompose"
	"github.com/dmitrymomot/hxcompose/example"
	"github.com/dmitrymomot/hxcompose/middlewares"
	"github.com/dmitrymomot/hxcompose/pkg/cache"
	"github.com/dmitrymomot/hxcompose/pkg/compose"
	"github.com/dmitrymomot/hxcompose/pkg/dispatch"
	"github.com/dmitrymomot/hxcompose/pkg/health"
	"github.com/dmitrymomot/hxcompose/pkg/logger"
	"github.com/dmitrymomot/hxcompose/pkg/metrics"
	"github.com/dmitrymomot/hxcompose/pkg/redis"
	"github.com/dmitrymomot/hxcompose/pkg/sanitizer"
	"github.com/dmitrymomot/hxcompose/pkg/source"
	"github.com/dmitrymomot/hxcompose/pkg/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "hxcompose:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args, os.Getenv)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log, middlewares.RequestIDExtractor(), compose.DepthExtractor())

	srv, err := build(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	runOpts := []hxcompose.RunOption{
		hxcompose.Logger(log),
		hxcompose.ShutdownTimeout(cfg.ShutdownTimeout),
		hxcompose.StartupHook(srv.composer.Ready),
	}
	for _, hook := range srv.shutdown {
		runOpts = append(runOpts, hxcompose.ShutdownHook(hook))
	}
	runOpts = append(runOpts, hxcompose.ShutdownHook(logger.FlushSentry(2*time.Second)))

	return srv.app.Run(cfg.Addr, runOpts...)
}

// server is the wired application plus what it needs at shutdown.
type server struct {
	app      *hxcompose.App
	composer *compose.Composer
	shutdown []func(context.Context) error
}

// build wires sources, cache, composer and the HTTP app from cfg.
func build(ctx context.Context, cfg Config, log *slog.Logger) (*server, error) {
	srv := &server{}
	checks := []hxcompose.HealthOption{}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(metrics.WithRuntimeMetrics())
	}

	objects, err := openCache(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if objects.client != nil {
		checks = append(checks, hxcompose.WithReadinessCheck("redis", redis.Healthcheck(objects.client)))
		srv.shutdown = append(srv.shutdown, redis.Shutdown(objects.client))
	}
	if objects.cache != nil {
		srv.shutdown = append(srv.shutdown, func(context.Context) error { return objects.cache.Close() })
	}

	srcOpts := []source.Option{
		source.WithLogger(log),
		source.WithMetrics(m),
		source.WithTTL(cfg.Cache.TTL),
	}
	if objects.cache != nil {
		srcOpts = append(srcOpts, source.WithCache(objects.cache))
	}
	var sanitize func(string) string
	if cfg.Sources.Sanitize {
		c := cfg.Compose
		policy := sanitizer.NewFragmentPolicy(c.TargetAttr, c.TriggerAttr, c.SelectAttr, c.SwapAttr)
		sanitize = func(s string) string { return sanitizer.Custom(s, policy) }
		srcOpts = append(srcOpts, source.WithSanitizer(sanitize))
	}

	routes, upstreamCheck, err := buildSources(cfg, sanitize, srcOpts)
	if err != nil {
		return nil, err
	}
	if upstreamCheck != nil {
		checks = append(checks, hxcompose.WithReadinessCheck("upstream", upstreamCheck))
	}

	inner := dispatch.Limit(dispatch.Buffered(dispatch.Handler(routes.Handler())), cfg.MaxInFlight)
	composeOpts := []compose.Option{
		compose.WithConfig(cfg.Compose),
		compose.WithLogger(log),
		compose.WithMetrics(m),
	}
	if cfg.SkipHTMX {
		composeOpts = append(composeOpts, compose.WithSkip(compose.SkipHTMXRequests))
	}
	srv.composer, err = compose.New(compose.Select(inner, cfg.Compose), composeOpts...)
	if err != nil {
		return nil, err
	}

	mws := []hxcompose.Middleware{
		middlewares.RequestID(),
		middlewares.AccessLog(log),
		middlewares.Recover(log),
		middlewares.Timeout(cfg.RequestTimeout),
	}
	if len(cfg.CORS.Origins) > 0 {
		mws = append(mws, middlewares.CORS(middlewares.WithAllowOrigins(cfg.CORS.Origins...)))
	}

	appOpts := []hxcompose.Option{
		hxcompose.WithLogger(log),
		hxcompose.WithMiddleware(mws...),
		hxcompose.WithHealthChecks(checks...),
		hxcompose.WithComposer(srv.composer, compose.WithHandlerLogger(log)),
	}
	if m != nil {
		appOpts = append(appOpts, hxcompose.WithMetrics(cfg.Metrics.Path, m.Handler()))
	}
	if cfg.Sources.Static != "" {
		appOpts = append(appOpts, hxcompose.WithStaticFiles("/static/", os.DirFS(cfg.Sources.Static), "."))
	}
	srv.app = hxcompose.New(appOpts...)
	return srv, nil
}

type objectCache struct {
	cache  cache.Cache[source.Object]
	client goredis.UniversalClient
}

func openCache(ctx context.Context, cfg Config, log *slog.Logger) (objectCache, error) {
	switch cfg.Cache.Backend {
	case CacheMemory:
		return objectCache{cache: cache.NewMemory[source.Object](
			cache.WithDefaultTTL(cfg.Cache.TTL),
			cache.WithMaxEntries(cfg.Cache.MaxEntries),
			cache.WithMaxBytes(cfg.Cache.MaxBytes),
		)}, nil
	case CacheRedis:
		client, err := redis.Open(ctx, cfg.Redis, log)
		if err != nil {
			return objectCache{}, err
		}
		c := cache.NewRedis[source.Object](client, cache.MsgpackMarshaler[source.Object]{},
			cache.WithPrefix(cfg.Cache.Prefix),
			cache.WithRedisDefaultTTL(cfg.Cache.TTL),
		)
		return objectCache{cache: c, client: client}, nil
	}
	return objectCache{}, nil
}

// buildSources returns the source mux and, when an upstream is configured,
// a readiness check for it.
func buildSources(cfg Config, sanitize func(string) string, opts []source.Option) (source.Routes, health.CheckFunc, error) {
	var rt source.Routes
	md := source.NewRenderer(sanitize)

	var root, pages fs.FS
	switch {
	case cfg.Sources.Dir != "":
		root = os.DirFS(cfg.Sources.Dir)
	default:
		root = example.Site()
		if cfg.Sources.Pages == "" {
			pages = example.Pages()
		}
	}
	if cfg.Sources.Pages != "" {
		pages = os.DirFS(cfg.Sources.Pages)
	}
	rt.Root = source.Dir(root, opts...)
	if pages != nil {
		rt.Pages = source.Markdown(pages, md, opts...)
	}

	if cfg.Storage.Bucket != "" {
		st, err := storage.New(cfg.Storage)
		if err != nil {
			return rt, nil, err
		}
		rt.Objects = source.S3(st, md, st.MaxObjectSize(), opts...)
	}

	var check health.CheckFunc
	if cfg.Sources.Upstream != "" {
		target, err := url.Parse(cfg.Sources.Upstream)
		if err != nil {
			return rt, nil, fmt.Errorf("upstream: %w", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		rt.Upstream = source.Upstream(target, transport, opts...)
		check = health.HTTPCheck(&http.Client{Transport: transport, Timeout: 5 * time.Second}, target.String())
	}
	return rt, check, nil
}
