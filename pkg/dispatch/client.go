package dispatch

import (
	"context"
	"net/http"
	"net/url"
)

// Client returns a Dispatcher that sends requests to a remote origin.
// Requests whose URL has no host are resolved against base; a nil base
// requires absolute request URLs. A nil client means http.DefaultClient.
func Client(c *http.Client, base *url.URL) Dispatcher {
	if c == nil {
		c = http.DefaultClient
	}
	return &clientDispatcher{client: c, base: base}
}

type clientDispatcher struct {
	client *http.Client
	base   *url.URL
}

func (d *clientDispatcher) Ready(ctx context.Context) error {
	return ctx.Err()
}

func (d *clientDispatcher) Dispatch(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.RequestURI = ""

	if out.URL.Host == "" {
		if d.base == nil {
			return nil, ErrNoBaseURL
		}
		u := *d.base
		u.Path = out.URL.Path
		u.RawPath = out.URL.RawPath
		u.RawQuery = out.URL.RawQuery
		out.URL = &u
		out.Host = u.Host
	}

	return d.client.Do(out)
}
