package htmx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/htmx"
)

func TestRequestHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		htmx    bool
		boosted bool
	}{
		{"plain browser request", nil, false, false},
		{"htmx request", map[string]string{"HX-Request": "true"}, true, false},
		{"boosted navigation", map[string]string{"HX-Request": "true", "HX-Boosted": "true"}, true, true},
		{"values are case sensitive", map[string]string{"HX-Request": "True", "HX-Boosted": "TRUE"}, false, false},
		{"empty values", map[string]string{"HX-Request": "", "HX-Boosted": ""}, false, false},
		{"other values", map[string]string{"HX-Request": "1"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.htmx, htmx.IsHTMX(req))
			require.Equal(t, tt.boosted, htmx.IsBoosted(req))
		})
	}
}
