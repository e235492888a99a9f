package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Buffered returns a Dispatcher that reads every response body of next
// into memory and sets Content-Length. In-process handlers rarely declare
// a length; composition only runs on responses that carry one.
func Buffered(next Dispatcher) Dispatcher {
	return &buffered{next: next}
}

type buffered struct {
	next Dispatcher
}

func (b *buffered) Ready(ctx context.Context) error {
	return b.next.Ready(ctx)
}

func (b *buffered) Dispatch(req *http.Request) (*http.Response, error) {
	resp, err := b.next.Dispatch(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBodyRead, req.URL.RequestURI(), err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return resp, nil
}
