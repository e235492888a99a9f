package compose

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/hxcompose/pkg/dispatch"
	"github.com/dmitrymomot/hxcompose/pkg/rewrite"
)

// OutcomeKind tags an Outcome.
type OutcomeKind uint8

const (
	// Passthrough: the body was left untouched and never buffered.
	Passthrough OutcomeKind = iota
	// Rewritten: the body was buffered and rewritten.
	Rewritten
	// Failed: buffering or rewriting failed.
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case Rewritten:
		return "rewritten"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of a rewrite pass. Exactly one variant is set.
type Outcome struct {
	err  error
	body []byte
	kind OutcomeKind
}

// Kind returns the variant.
func (o Outcome) Kind() OutcomeKind { return o.kind }

// Bytes returns the rewritten body. It is nil unless Kind is Rewritten.
func (o Outcome) Bytes() []byte { return o.body }

// Len returns the rewritten body length.
func (o Outcome) Len() int { return len(o.body) }

// Err returns the failure. It is nil unless Kind is Failed.
func (o Outcome) Err() error { return o.err }

// Apply makes the outcome observable on resp. Rewritten replaces the body,
// sets Content-Length and drops the validators that described the source
// bytes. Passthrough returns resp unchanged and Failed returns the error.
func (o Outcome) Apply(resp *http.Response) (*http.Response, error) {
	switch o.kind {
	case Rewritten:
		resp.Body = io.NopCloser(bytes.NewReader(o.body))
		resp.ContentLength = int64(len(o.body))
		if resp.Header == nil {
			resp.Header = make(http.Header)
		}
		resp.Header.Set("Content-Length", strconv.Itoa(len(o.body)))
		resp.Header.Del("ETag")
		resp.Header.Del("Last-Modified")
		return resp, nil
	case Failed:
		return nil, o.err
	}
	return resp, nil
}

// Run drives a fresh rewrite engine over body with rules.
func Run(body []byte, rules []rewrite.Rule) Outcome {
	out, err := rewrite.Rewrite(body, rules...)
	if err != nil {
		return Outcome{kind: Failed, err: fmt.Errorf("%w: %w", ErrRewriteEngine, err)}
	}
	return Outcome{kind: Rewritten, body: out}
}

// SettingsProvider produces the rule set for one request. A provider is
// created per request and may keep request-scoped state between its hooks.
type SettingsProvider interface {
	// HandleRequest runs before dispatch and may return a modified request.
	HandleRequest(req *http.Request) *http.Request
	// HandleResponse runs once the inner response is available. It may
	// mutate the response metadata but must not read the body. A nil rule
	// set means passthrough.
	HandleResponse(resp *http.Response) []rewrite.Rule
}

// Pass is a Dispatcher that rewrites responses of next with the rules of a
// per-request SettingsProvider.
type Pass struct {
	next    dispatch.Dispatcher
	provide func() SettingsProvider
}

// NewPass returns a Pass creating a provider with provide for every request.
func NewPass(next dispatch.Dispatcher, provide func() SettingsProvider) *Pass {
	return &Pass{next: next, provide: provide}
}

// Ready delegates to the inner dispatcher.
func (p *Pass) Ready(ctx context.Context) error {
	return p.next.Ready(ctx)
}

// Dispatch forwards req and rewrites the response when the provider asks
// for it. Dispatch errors of next are returned as is.
func (p *Pass) Dispatch(req *http.Request) (*http.Response, error) {
	provider := p.provide()
	req = provider.HandleRequest(req)

	resp, err := p.next.Dispatch(req)
	if err != nil {
		return nil, err
	}

	rules := provider.HandleResponse(resp)
	if rules == nil {
		return resp, nil
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	return Run(body, rules).Apply(resp)
}

// readBody buffers and closes resp.Body.
func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBodyRead, err)
	}
	return body, nil
}
