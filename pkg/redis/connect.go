package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes the connection. Zero fields take the defaults below.
type Config struct {
	URL           string        `yaml:"url"`
	PoolSize      int           `yaml:"pool_size"`
	MinIdleConns  int           `yaml:"min_idle_conns"`
	MaxIdleTime   time.Duration `yaml:"max_idle_time"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

func (c Config) withDefaults() Config {
	set := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	set(&c.MaxIdleTime, 10*time.Minute)
	set(&c.DialTimeout, 5*time.Second)
	set(&c.ReadTimeout, 3*time.Second)
	set(&c.WriteTimeout, 3*time.Second)
	set(&c.RetryInterval, time.Second)
	return c
}

// Options converts cfg into go-redis options without dialing.
func (c Config) Options() (*redis.Options, error) {
	if c.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return nil, fmt.Errorf("%w: unsupported scheme", ErrFailedToParseURL)
	}
	o, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToParseURL, err)
	}

	c = c.withDefaults()
	o.PoolSize = c.PoolSize
	o.MinIdleConns = c.MinIdleConns
	o.ConnMaxIdleTime = c.MaxIdleTime
	o.DialTimeout = c.DialTimeout
	o.ReadTimeout = c.ReadTimeout
	o.WriteTimeout = c.WriteTimeout
	return o, nil
}

// Open dials Redis and pings it, retrying with linear backoff. Each failed
// attempt is logged at warn level when logger is not nil.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (redis.UniversalClient, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.RetryAttempts; attempt++ {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if logger != nil {
			logger.WarnContext(ctx, "redis ping failed",
				slog.Int("attempt", attempt),
				slog.String("addr", opts.Addr),
				slog.String("error", lastErr.Error()),
			)
		}
		if attempt == cfg.RetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(attempt) * cfg.RetryInterval):
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, lastErr)
}
