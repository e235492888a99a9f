package dispatch

import (
	"context"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Limit bounds the number of requests in flight through next to n.
// A slot is held from Dispatch until the response body is closed, or
// released right away when Dispatch fails. Ready blocks until a slot is
// free, which is how callers observe backpressure; it does not hold the
// slot, so a Ready that is never followed by Dispatch leaks nothing.
func Limit(next Dispatcher, n int64) Dispatcher {
	if n <= 0 {
		return next
	}
	return &limited{next: next, sem: semaphore.NewWeighted(n)}
}

type limited struct {
	next Dispatcher
	sem  *semaphore.Weighted
}

func (l *limited) Ready(ctx context.Context) error {
	if err := l.next.Ready(ctx); err != nil {
		return err
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	l.sem.Release(1)
	return nil
}

func (l *limited) Dispatch(req *http.Request) (*http.Response, error) {
	if err := l.sem.Acquire(req.Context(), 1); err != nil {
		return nil, err
	}

	resp, err := l.next.Dispatch(req)
	if err != nil {
		l.sem.Release(1)
		return nil, err
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	resp.Body = &releasingBody{
		ReadCloser: resp.Body,
		release:    sync.OnceFunc(func() { l.sem.Release(1) }),
	}
	return resp, nil
}

type releasingBody struct {
	io.ReadCloser
	release func()
}

func (b *releasingBody) Close() error {
	defer b.release()
	return b.ReadCloser.Close()
}
