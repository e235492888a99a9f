package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/dmitrymomot/hxcompose/pkg/dispatch"
	"github.com/dmitrymomot/hxcompose/pkg/htmx"
	"github.com/dmitrymomot/hxcompose/pkg/logger"
	"github.com/dmitrymomot/hxcompose/pkg/metrics"
	"github.com/dmitrymomot/hxcompose/pkg/rewrite"
)

// Composer is a Dispatcher that expands directive elements of HTML
// responses with fragments fetched through sub-requests. Sub-requests go
// back through the composer itself, so fragments are composed too, up to
// MaxDepth levels.
//
// A composition runs sequentially on the calling goroutine: dispatch,
// buffer, scan, resolve each distinct key in document order, inject.
// Every composition owns its buffers and ResolutionContext; only the inner
// dispatcher is shared.
type Composer struct {
	next      dispatch.Dispatcher
	skip      func(*http.Request) bool
	logger    *slog.Logger
	metrics   *metrics.Metrics
	directive string
	cfg       Config
}

// New returns a Composer forwarding to next.
func New(next dispatch.Dispatcher, opts ...Option) (*Composer, error) {
	c := &Composer{
		next:   next,
		cfg:    DefaultConfig(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	c.directive = c.cfg.DirectiveSelector()
	return c, nil
}

// Config returns the composer configuration.
func (c *Composer) Config() Config {
	return c.cfg
}

// Ready delegates to the inner dispatcher.
func (c *Composer) Ready(ctx context.Context) error {
	return c.next.Ready(ctx)
}

// Dispatch forwards req and composes the response. Responses that are not
// HTML with a known length pass through untouched. On failure no partial
// document is returned.
func (c *Composer) Dispatch(req *http.Request) (*http.Response, error) {
	start := time.Now()

	if c.skip != nil && c.skip(req) {
		resp, err := c.next.Dispatch(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDispatch, err)
		}
		c.metrics.Composition(metrics.OutcomeSkipped, 0, start)
		return resp, nil
	}

	depth := DepthFromContext(req.Context())
	resp, kind, err := c.compose(req, depth)
	if err != nil {
		c.metrics.Failure(Kind(err))
		c.metrics.Composition(metrics.OutcomeFailed, depth, start)
		return nil, err
	}
	c.metrics.Composition(kind.String(), depth, start)
	return resp, nil
}

// directive is one matched element in document order. Literal entries
// need no fetch.
type directive struct {
	literal *Resolved
	key     ResolutionKey
}

func (c *Composer) compose(req *http.Request, depth int) (*http.Response, OutcomeKind, error) {
	ctx := req.Context()
	base := req.URL

	req, child, err := captureChild(req, c.cfg)
	if err != nil {
		return nil, Failed, err
	}

	resp, err := c.next.Dispatch(req)
	if err != nil {
		return nil, Failed, fmt.Errorf("%w: %s: %w", ErrDispatch, req.URL.RequestURI(), err)
	}
	if req.Method == http.MethodHead || !composable(resp) {
		return resp, Passthrough, nil
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, Failed, err
	}

	directives, rc, targets, err := c.scan(body, base, child)
	if err != nil {
		return nil, Failed, err
	}
	if len(directives) == 0 {
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, Passthrough, nil
	}

	if err := c.resolve(ctx, req.Host, depth, rc, targets); err != nil {
		return nil, Failed, err
	}

	out := Run(body, c.injectRules(directives, rc))
	resp, err = out.Apply(resp)
	if err != nil {
		return nil, Failed, err
	}
	return resp, out.Kind(), nil
}

// composable gates scanning on a known length and an HTML content type.
func composable(resp *http.Response) bool {
	return resp.Header.Get("Content-Length") != "" && isHTML(resp.Header.Get("Content-Type"))
}

// scan collects the directives of body in document order and registers
// every distinct key in a fresh ResolutionContext. Target URIs are built
// here so a malformed one fails the composition before anything is fetched.
func (c *Composer) scan(body []byte, base *url.URL, child *childRef) ([]directive, *ResolutionContext, map[ResolutionKey]*url.URL, error) {
	var directives []directive
	rc := NewResolutionContext()
	targets := make(map[ResolutionKey]*url.URL)

	_, err := rewrite.Rewrite(body, rewrite.OnElement(c.directive, func(el *rewrite.Element) error {
		target, _ := el.GetAttribute(c.cfg.TargetAttr)

		var key ResolutionKey
		if target == c.cfg.ChildSentinel {
			path, ok := child.take()
			if !ok {
				directives = append(directives, directive{literal: emptyFragment()})
				return nil
			}
			key = ResolutionKey(path)
		} else {
			sel, hasSel := el.GetAttribute(c.cfg.SelectAttr)
			key = NewResolutionKey(target, sel, hasSel)
		}

		if rc.Insert(key) {
			u, err := expandURI(base, string(key))
			if err != nil {
				return err
			}
			targets[key] = u
		}
		directives = append(directives, directive{key: key})
		return nil
	}))
	if err != nil {
		if errors.Is(err, ErrURIConstruction) {
			return nil, nil, nil, err
		}
		return nil, nil, nil, fmt.Errorf("%w: scan: %w", ErrRewriteEngine, err)
	}
	return directives, rc, targets, nil
}

// resolve fetches every pending key sequentially, awaiting readiness
// before each dispatch.
func (c *Composer) resolve(ctx context.Context, host string, depth int, rc *ResolutionContext, targets map[ResolutionKey]*url.URL) error {
	pending := rc.Pending()
	if len(pending) == 0 {
		return nil
	}
	if depth+1 > c.cfg.MaxDepth {
		return fmt.Errorf("%w: depth %d", ErrRecursionLimit, depth+1)
	}

	subctx := WithDepth(ctx, depth+1)
	for _, key := range pending {
		req, err := http.NewRequestWithContext(subctx, http.MethodGet, "", nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrURIConstruction, err)
		}
		req.URL = targets[key]
		req.Host = host

		if err := c.Ready(subctx); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDispatch, key, err)
		}
		resp, err := c.Dispatch(req)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDispatch, key, err)
		}
		c.metrics.Subrequest(resp.StatusCode)

		body, err := readBody(resp)
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.logger.WarnContext(subctx, "fragment returned non-success status",
				slog.String("key", string(key)),
				slog.Int("status", resp.StatusCode),
			)
		} else {
			c.logger.DebugContext(subctx, "fragment resolved",
				slog.String("key", string(key)),
				slog.Int("status", resp.StatusCode),
				slog.Int("size", len(body)),
			)
		}

		rc.Resolve(key, &Resolved{Status: resp.StatusCode, Header: resp.Header, Body: body})
	}
	return nil
}

// injectRules pairs matched elements with directives positionally. The
// scan and the injection pass match the same elements in the same order.
func (c *Composer) injectRules(directives []directive, rc *ResolutionContext) []rewrite.Rule {
	next := 0
	return []rewrite.Rule{
		rewrite.OnElement(c.directive, func(el *rewrite.Element) error {
			if next >= len(directives) {
				return fmt.Errorf("%w: directive %d", ErrMissingResolution, next)
			}
			d := directives[next]
			next++

			frag := d.literal
			if frag == nil {
				var err error
				if frag, err = rc.Lookup(d.key); err != nil {
					return err
				}
			}
			if !utf8.Valid(frag.Body) {
				return fmt.Errorf("%w: fragment %q is not valid UTF-8", ErrRewriteEngine, d.key)
			}

			ct := rewrite.Text
			if frag.IsHTML() {
				ct = rewrite.HTML
			}
			htmx.SwapFromAttr(el.GetAttribute(c.cfg.SwapAttr)).Apply(el, string(frag.Body), ct)
			return nil
		}),
	}
}

func emptyFragment() *Resolved {
	return &Resolved{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"text/html"}},
	}
}

// SkipHTMXRequests is a skip predicate leaving requests issued by the htmx
// client uncomposed; the client resolves their directives itself. Boosted
// navigations load whole pages and are still composed.
func SkipHTMXRequests(r *http.Request) bool {
	return htmx.IsHTMX(r) && !htmx.IsBoosted(r)
}
