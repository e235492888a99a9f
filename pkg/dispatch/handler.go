package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
)

// Handler returns a Dispatcher that serves requests with h in process.
// Dispatch returns as soon as h has written its header; the body streams
// through a pipe while h keeps running.
func Handler(h http.Handler) Dispatcher {
	return &handlerDispatcher{h: h}
}

type handlerDispatcher struct {
	h http.Handler
}

func (d *handlerDispatcher) Ready(ctx context.Context) error {
	return ctx.Err()
}

func (d *handlerDispatcher) Dispatch(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.RequestURI == "" {
		req.RequestURI = req.URL.RequestURI()
	}

	pr, pw := io.Pipe()
	w := &pipedResponse{
		header:     make(http.Header),
		writer:     pw,
		headerDone: make(chan struct{}),
	}

	go func() {
		defer func() {
			if p := recover(); p != nil {
				w.WriteHeader(http.StatusInternalServerError)
				_ = pw.CloseWithError(fmt.Errorf("%w: %v", ErrHandlerPanic, p))
			}
		}()

		d.h.ServeHTTP(w, req)
		w.WriteHeader(http.StatusOK)
		_ = pw.Close()
	}()

	select {
	case <-w.headerDone:
	case <-ctx.Done():
		_ = pr.CloseWithError(ctx.Err())
		return nil, ctx.Err()
	}

	resp := &http.Response{
		Status:        strconv.Itoa(w.status) + " " + http.StatusText(w.status),
		StatusCode:    w.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        w.sent,
		Body:          pr,
		ContentLength: -1,
		Request:       req,
	}
	if cl := w.sent.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			resp.ContentLength = n
		}
	}
	if req.Method == http.MethodHead {
		_ = pr.Close()
		resp.Body = http.NoBody
	}
	return resp, nil
}

// pipedResponse is the http.ResponseWriter handed to the in-process handler.
type pipedResponse struct {
	header     http.Header
	sent       http.Header
	writer     *io.PipeWriter
	headerDone chan struct{}
	once       sync.Once
	status     int
}

func (p *pipedResponse) Header() http.Header {
	return p.header
}

// WriteHeader snapshots the header map; later writes to it are not sent.
// Only the first call has an effect.
func (p *pipedResponse) WriteHeader(status int) {
	p.once.Do(func() {
		p.status = status
		p.sent = p.header.Clone()
		close(p.headerDone)
	})
}

func (p *pipedResponse) Write(data []byte) (int, error) {
	p.WriteHeader(http.StatusOK)
	return p.writer.Write(data)
}

// Flush is a no-op; data is handed to the reader on every Write.
func (p *pipedResponse) Flush() {}
