package source

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// Upstream proxies requests to target. The outgoing Accept-Encoding is
// dropped so the transport negotiates compression itself and hands back
// plain bytes the rewriter can read.
func Upstream(target *url.URL, transport http.RoundTripper, opts ...Option) http.Handler {
	o := newOptions(opts)
	logger := o.logger
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = target.Host
			pr.Out.Header.Del("Accept-Encoding")
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.WarnContext(r.Context(), "upstream request failed",
				slog.String("url", r.URL.String()),
				slog.String("error", err.Error()),
			)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		},
	}
}
