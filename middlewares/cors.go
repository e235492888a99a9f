package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/hxcompose/internal"
)

// DefaultCORSMaxAge is how long browsers may cache a preflight answer.
const DefaultCORSMaxAge = 12 * time.Hour

// CORSConfig configures the CORS middleware. The zero value of a field
// keeps its default.
type CORSConfig struct {
	// AllowOrigins lists accepted origins; "*" accepts any.
	AllowOrigins []string
	// AllowOriginFunc, when set, replaces AllowOrigins.
	AllowOriginFunc func(origin string) bool
	AllowMethods    []string
	AllowHeaders    []string
	ExposeHeaders   []string
	// AllowCredentials echoes the request origin instead of "*".
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig lets other sites load fragments with htmx: read-only
// methods and the headers the htmx client sends.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	AllowHeaders: []string{"Origin", "Accept", "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL", "HX-Boosted"},
	MaxAge:       DefaultCORSMaxAge,
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

func WithAllowOrigins(origins ...string) CORSOption {
	return func(c *CORSConfig) { c.AllowOrigins = origins }
}

func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(c *CORSConfig) { c.AllowOriginFunc = fn }
}

func WithAllowMethods(methods ...string) CORSOption {
	return func(c *CORSConfig) { c.AllowMethods = methods }
}

func WithAllowHeaders(headers ...string) CORSOption {
	return func(c *CORSConfig) { c.AllowHeaders = headers }
}

// WithExposeHeaders lets scripts read the given response headers, for
// example HX-Trigger set by a fragment.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(c *CORSConfig) { c.ExposeHeaders = headers }
}

func WithAllowCredentials() CORSOption {
	return func(c *CORSConfig) { c.AllowCredentials = true }
}

func WithMaxAge(d time.Duration) CORSOption {
	return func(c *CORSConfig) { c.MaxAge = d }
}

// corsPolicy is a CORSConfig with its header values rendered once.
type corsPolicy struct {
	allow       func(origin string) bool
	echo        bool
	credentials bool
	methods     string
	headers     string
	expose      string
	maxAge      string
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	p := corsPolicy{
		echo:        cfg.AllowCredentials || !wildcard,
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(int(cfg.MaxAge.Seconds()))
	}
	switch {
	case cfg.AllowOriginFunc != nil:
		p.allow = cfg.AllowOriginFunc
	case wildcard:
		p.allow = func(string) bool { return true }
	default:
		origins := cfg.AllowOrigins
		p.allow = func(o string) bool { return slices.Contains(origins, o) }
	}
	return p
}

// CORS answers preflight requests with 204 and adds the CORS headers to
// responses for allowed origins. Requests from other origins are served
// without them and the browser blocks the result.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := DefaultCORSConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	p := newCORSPolicy(cfg)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			origin := r.Header.Get("Origin")
			if origin == "" || !p.allow(origin) {
				return next(w, r)
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if p.echo {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if p.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if p.expose != "" {
				h.Set("Access-Control-Expose-Headers", p.expose)
			}

			if r.Method != http.MethodOptions {
				return next(w, r)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", p.methods)
			h.Set("Access-Control-Allow-Headers", p.headers)
			if p.maxAge != "" {
				h.Set("Access-Control-Max-Age", p.maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return nil
		}
	}
}
