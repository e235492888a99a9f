package compose_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/compose"
	"github.com/dmitrymomot/hxcompose/pkg/dispatch"
)

// page serves body as text/html.
func page(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}
}

// source is the in-process origin the composer dispatches into.
func source(mux http.Handler) dispatch.Dispatcher {
	return compose.Select(dispatch.Buffered(dispatch.Handler(mux)), compose.DefaultConfig())
}

func newComposer(t *testing.T, mux http.Handler, opts ...compose.Option) *compose.Composer {
	t.Helper()

	c, err := compose.New(source(mux), opts...)
	require.NoError(t, err)
	return c
}

// get dispatches a GET for target and returns the response and its body.
func get(t *testing.T, d dispatch.Dispatcher, target string) (*http.Response, string, error) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RequestURI = ""
	if err := d.Ready(req.Context()); err != nil {
		return nil, "", err
	}
	resp, err := d.Dispatch(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body), nil
}

// newMux serves each path with its HTML body.
func newMux(pages map[string]string) *http.ServeMux {
	mux := http.NewServeMux()
	for path, body := range pages {
		mux.Handle(path, page(body))
	}
	return mux
}
