package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/hxcompose/pkg/compose"
	"github.com/dmitrymomot/hxcompose/pkg/logger"
	"github.com/dmitrymomot/hxcompose/pkg/redis"
	"github.com/dmitrymomot/hxcompose/pkg/storage"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Composition modes.
const (
	ModeServer   = "server"   // [hx-get][hx-trigger~="server"]
	ModeTemplate = "template" // [hx-get]
)

// envPrefix namespaces every environment override.
const envPrefix = "HXCOMPOSE_"

// Config is the binary configuration. Values are read from defaults, then
// the YAML file, then HXCOMPOSE_* variables, then explicit flags.
type Config struct {
	Addr            string         `yaml:"addr"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration  `yaml:"request_timeout"`
	Mode            string         `yaml:"mode"`
	SkipHTMX        bool           `yaml:"skip_htmx"`
	MaxInFlight     int64          `yaml:"max_in_flight"`
	Compose         compose.Config `yaml:"compose"`
	Log             logger.Config  `yaml:"log"`
	Sources         SourcesConfig  `yaml:"sources"`
	Cache           CacheConfig    `yaml:"cache"`
	Redis           redis.Config   `yaml:"redis"`
	Storage         storage.Config `yaml:"storage"`
	Metrics         MetricsConfig  `yaml:"metrics"`
	CORS            CORSConfig     `yaml:"cors"`
}

// SourcesConfig selects the content sources behind the composer.
type SourcesConfig struct {
	// Dir is served at "/". Empty serves the embedded demo site.
	Dir string `yaml:"dir"`
	// Pages is a markdown directory served under /pages.
	Pages string `yaml:"pages"`
	// Upstream is proxied under /upstream.
	Upstream string `yaml:"upstream"`
	// Static is served under /static without composition.
	Static string `yaml:"static"`
	// Sanitize filters HTML fragments through bluemonday.
	Sanitize bool `yaml:"sanitize"`
}

type CacheConfig struct {
	Backend    string        `yaml:"backend"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	MaxBytes   int64         `yaml:"max_bytes"`
	Prefix     string        `yaml:"prefix"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

func defaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ShutdownTimeout: 30 * time.Second,
		RequestTimeout:  30 * time.Second,
		Mode:            ModeServer,
		MaxInFlight:     64,
		Compose:         compose.DefaultConfig(),
		Log:             logger.Config{Level: "info", Format: logger.FormatJSON},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			TTL:        time.Minute,
			MaxEntries: 1024,
			MaxBytes:   32 << 20,
			Prefix:     "hxcompose:",
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// loadConfig reads the configuration from args, the file named by -config
// (or HXCOMPOSE_CONFIG) and the environment.
func loadConfig(args []string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("hxcompose", flag.ContinueOnError)
	path := fs.String("config", getenv(envPrefix+"CONFIG"), "path to a YAML config file")
	addr := fs.String("addr", cfg.Addr, "listen address")
	dir := fs.String("dir", "", "directory served at /")
	pages := fs.String("pages", "", "markdown directory served under /pages")
	upstream := fs.String("upstream", "", "upstream URL proxied under /upstream")
	mode := fs.String("mode", cfg.Mode, "directive mode: server or template")
	logLevel := fs.String("log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	cacheBackend := fs.String("cache", cfg.Cache.Backend, "object cache: none, memory or redis")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		data, err := os.ReadFile(*path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", *path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	// Explicit flags win over the file and the environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "dir":
			cfg.Sources.Dir = *dir
		case "pages":
			cfg.Sources.Pages = *pages
		case "upstream":
			cfg.Sources.Upstream = *upstream
		case "mode":
			cfg.Mode = *mode
		case "log-level":
			cfg.Log.Level = *logLevel
		case "cache":
			cfg.Cache.Backend = *cacheBackend
		}
	})

	if cfg.Mode == ModeTemplate {
		cfg.Compose.RequireTrigger = false
	}
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := map[string]*string{
		"ADDR":           &cfg.Addr,
		"MODE":           &cfg.Mode,
		"LOG_LEVEL":      &cfg.Log.Level,
		"LOG_FORMAT":     &cfg.Log.Format,
		"SENTRY_DSN":     &cfg.Log.Sentry.DSN,
		"ENVIRONMENT":    &cfg.Log.Sentry.Environment,
		"DIR":            &cfg.Sources.Dir,
		"PAGES":          &cfg.Sources.Pages,
		"UPSTREAM":       &cfg.Sources.Upstream,
		"STATIC":         &cfg.Sources.Static,
		"CACHE":          &cfg.Cache.Backend,
		"REDIS_URL":      &cfg.Redis.URL,
		"S3_BUCKET":      &cfg.Storage.Bucket,
		"S3_ACCESS_KEY":  &cfg.Storage.AccessKey,
		"S3_SECRET_KEY":  &cfg.Storage.SecretKey,
		"S3_ENDPOINT":    &cfg.Storage.Endpoint,
		"S3_REGION":      &cfg.Storage.Region,
		"S3_PREFIX":      &cfg.Storage.Prefix,
		"COMPOSE_TARGET": &cfg.Compose.TargetAttr,
	}
	for name, dst := range str {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT":  &cfg.RequestTimeout,
		"SHUTDOWN_TIMEOUT": &cfg.ShutdownTimeout,
		"CACHE_TTL":        &cfg.Cache.TTL,
	}
	for name, dst := range durations {
		if v := getenv(envPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	if v := getenv(envPrefix + "SKIP_HTMX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSKIP_HTMX: %w", envPrefix, err)
		}
		cfg.SkipHTMX = b
	}
	if v := getenv(envPrefix + "CORS_ORIGINS"); v != "" {
		cfg.CORS.Origins = cfg.CORS.Origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.Origins = append(cfg.CORS.Origins, o)
			}
		}
	}
	return nil
}

func (c Config) validate() error {
	var errs []error
	switch c.Mode {
	case ModeServer, ModeTemplate:
	default:
		errs = append(errs, fmt.Errorf("mode: unknown value %q", c.Mode))
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("cache: redis backend needs redis.url"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache: unknown backend %q", c.Cache.Backend))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if err := c.Compose.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
