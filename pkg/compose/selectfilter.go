package compose

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/hxcompose/pkg/dispatch"
	"github.com/dmitrymomot/hxcompose/pkg/rewrite"
)

// SelectFilter keeps the part of an HTML document addressed by a selector
// taken from the request query. Matched elements keep their subtree;
// unmatched elements are unwrapped so matched descendants survive in
// document order. Unmatched text, DOCTYPE and comments are dropped.
type SelectFilter struct {
	param    string
	selector string
}

// NewSelectFilter returns a filter reading the selector from query
// parameter param.
func NewSelectFilter(param string) *SelectFilter {
	return &SelectFilter{param: param}
}

// Select wraps next with a select filter per request.
func Select(next dispatch.Dispatcher, cfg Config) *Pass {
	return NewPass(next, func() SettingsProvider {
		return NewSelectFilter(cfg.SelectParam)
	})
}

// HandleRequest captures the selector. The last occurrence of the
// parameter wins; an empty value disables filtering.
func (f *SelectFilter) HandleRequest(req *http.Request) *http.Request {
	f.selector = ""
	if vals := req.URL.Query()[f.param]; len(vals) > 0 {
		f.selector = strings.TrimSpace(vals[len(vals)-1])
	}
	return req
}

// HandleResponse returns the filter rules when a selector was captured and
// the response is HTML.
func (f *SelectFilter) HandleResponse(resp *http.Response) []rewrite.Rule {
	if f.selector == "" || !htmlOrUntyped(resp.Header.Get("Content-Type")) {
		return nil
	}
	return SelectRules(f.selector)
}

// SelectRules returns the rule set keeping sel and its descendants.
// Element rules mark before the catch-all evaluates the same node.
func SelectRules(sel string) []rewrite.Rule {
	effective := sel + ", " + sel + " *"

	return []rewrite.Rule{
		rewrite.OnElement(effective, func(el *rewrite.Element) error {
			el.SetUserData(true)
			return nil
		}),
		rewrite.OnText(effective, func(t *rewrite.TextChunk) error {
			t.SetUserData(true)
			return nil
		}),
		rewrite.OnElement("*", func(el *rewrite.Element) error {
			if kept, _ := el.UserData().(bool); !kept {
				el.RemoveAndKeepContent()
			}
			return nil
		}),
		rewrite.OnDoctype(func(d *rewrite.Doctype) error {
			d.Remove()
			return nil
		}),
		rewrite.OnDocumentText(func(t *rewrite.TextChunk) error {
			if kept, _ := t.UserData().(bool); !kept {
				t.Remove()
			}
			return nil
		}),
		rewrite.OnComment(func(c *rewrite.Comment) error {
			c.Remove()
			return nil
		}),
	}
}

func htmlOrUntyped(contentType string) bool {
	if contentType == "" {
		return true
	}
	return isHTML(contentType)
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(contentType, "text/html")
}
