package compose

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

// ResolutionKey identifies one fragment fetch: the directive target with
// the directive selector appended as an hx-select query parameter.
type ResolutionKey string

// NewResolutionKey builds the key for target and an optional selector.
// The selector is percent-encoded with every byte except ASCII letters and
// digits escaped.
func NewResolutionKey(target, selector string, hasSelector bool) ResolutionKey {
	if !hasSelector {
		return ResolutionKey(target)
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return ResolutionKey(target + sep + "hx-select=" + encodeNonAlphanumeric(selector))
}

// Resolved is a buffered fragment response.
type Resolved struct {
	Header http.Header
	Body   []byte
	Status int
}

// IsHTML reports whether the fragment is injected as markup rather than text.
func (r *Resolved) IsHTML() bool {
	return isHTML(r.Header.Get("Content-Type"))
}

// ResolutionContext maps the keys found while scanning one response to
// their resolved fragments. It belongs to a single composition and is
// never shared.
type ResolutionContext struct {
	entries map[ResolutionKey]*Resolved
	order   []ResolutionKey
}

// NewResolutionContext returns an empty context.
func NewResolutionContext() *ResolutionContext {
	return &ResolutionContext{entries: make(map[ResolutionKey]*Resolved)}
}

// Insert registers key as pending. It reports false when key is already known.
func (rc *ResolutionContext) Insert(key ResolutionKey) bool {
	if _, ok := rc.entries[key]; ok {
		return false
	}
	rc.entries[key] = nil
	rc.order = append(rc.order, key)
	return true
}

// Pending returns the unresolved keys in insertion order.
func (rc *ResolutionContext) Pending() []ResolutionKey {
	var out []ResolutionKey
	for _, k := range rc.order {
		if rc.entries[k] == nil {
			out = append(out, k)
		}
	}
	return out
}

// Resolve stores the fragment for key.
func (rc *ResolutionContext) Resolve(key ResolutionKey, r *Resolved) {
	if _, ok := rc.entries[key]; !ok {
		rc.order = append(rc.order, key)
	}
	rc.entries[key] = r
}

// Lookup returns the fragment for key or ErrMissingResolution.
func (rc *ResolutionContext) Lookup(key ResolutionKey) (*Resolved, error) {
	r := rc.entries[key]
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingResolution, key)
	}
	return r, nil
}

// Len returns the number of distinct keys.
func (rc *ResolutionContext) Len() int {
	return len(rc.order)
}

// expandURI combines a directive target with the request URI. A target
// starting with "/" replaces path and query; anything else is appended to
// the request path as "<path>/<target>" without further normalization.
// Scheme and host of base are kept and fragments are dropped.
func expandURI(base *url.URL, target string) (*url.URL, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: empty target", ErrURIConstruction)
	}
	if strings.IndexFunc(target, func(r rune) bool {
		return unicode.IsControl(r) || unicode.IsSpace(r)
	}) >= 0 {
		return nil, fmt.Errorf("%w: %q contains whitespace or control characters", ErrURIConstruction, target)
	}

	ref := target
	if !strings.HasPrefix(target, "/") {
		ref = base.Path + "/" + target
	}
	ref, _, _ = strings.Cut(ref, "#")
	rawPath, rawQuery, _ := strings.Cut(ref, "?")

	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrURIConstruction, err)
	}
	if _, err := url.ParseQuery(rawQuery); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrURIConstruction, err)
	}

	u := *base
	u.Path = path
	u.RawPath = ""
	if path != rawPath {
		u.RawPath = rawPath
	}
	u.RawQuery = rawQuery
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Opaque = ""
	return &u, nil
}

func encodeNonAlphanumeric(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}
