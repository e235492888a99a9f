package compose

import (
	"net/http"
	"strings"
)

// childRef is the page that asked for a parent template. It can be taken
// once per composition.
type childRef struct {
	path  string
	taken bool
}

// take returns the referent path on first use.
func (c *childRef) take() (string, bool) {
	if c == nil || c.taken {
		return "", false
	}
	c.taken = true
	return c.path, true
}

// captureChild applies child indirection. When the query carries the
// parent parameter, the request path becomes the [child] referent and the
// returned request targets the parent instead. The last occurrence of the
// parameter wins.
func captureChild(req *http.Request, cfg Config) (*http.Request, *childRef, error) {
	vals := req.URL.Query()[cfg.ParentParam]
	if len(vals) == 0 {
		return req, nil, nil
	}
	parent := vals[len(vals)-1]
	if strings.TrimSpace(parent) == "" {
		return req, nil, nil
	}

	u, err := expandURI(req.URL, parent)
	if err != nil {
		return nil, nil, err
	}

	out := req.Clone(req.Context())
	out.URL = u
	if out.RequestURI != "" {
		out.RequestURI = u.RequestURI()
	}
	return out, &childRef{path: req.URL.EscapedPath()}, nil
}
