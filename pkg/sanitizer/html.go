package sanitizer

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// Site-relative targets only: no scheme and no protocol-relative host.
	targetValue = regexp.MustCompile(`^(?:/(?:[^/\s][^\s]*)?|[\[A-Za-z0-9._~-][^\s:]*)$`)
	// Selectors, swap modes and trigger lists.
	directiveValue = regexp.MustCompile(`^[\w\s.#:,>~="'\[\]*()|^$+-]*$`)
)

var (
	strictPolicy   = sync.OnceValue(bluemonday.StrictPolicy)
	fragmentPolicy = sync.OnceValue(func() *bluemonday.Policy {
		return NewFragmentPolicy("hx-get", "hx-trigger", "hx-select", "hx-swap")
	})
)

// NewFragmentPolicy allows layout and formatting markup plus the given
// directive attributes, so sanitized fragments keep composing. targetAttr
// only accepts site-relative URLs.
func NewFragmentPolicy(targetAttr string, attrs ...string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"div", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "hr", "span",
		"strong", "b", "em", "i", "small",
		"ul", "ol", "li",
		"code", "pre", "blockquote",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("id", "class").Globally()
	p.RequireNoFollowOnLinks(true)

	p.AllowAttrs(targetAttr).Matching(targetValue).Globally()
	if len(attrs) > 0 {
		p.AllowAttrs(attrs...).Matching(directiveValue).Globally()
	}
	return p
}

// Fragment sanitizes untrusted fragment markup, keeping hx-get, hx-trigger,
// hx-select and hx-swap.
func Fragment(s string) string {
	return fragmentPolicy().Sanitize(s)
}

// Text strips all markup.
func Text(s string) string {
	return strictPolicy().Sanitize(s)
}

// Custom applies policy, or returns s unchanged when policy is nil.
func Custom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
