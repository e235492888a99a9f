package compose

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// ErrorPage renders a standalone HTML error page with the status line, a
// message and a short label such as an error kind. Error text never
// reaches the page.
func ErrorPage(status int, label, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := templ.EscapeString(fmt.Sprintf("%d %s", status, http.StatusText(status)))
		_, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title></head>`+
			`<body><main class="error"><h1>%s</h1><p>%s</p><code>%s</code></main></body></html>`,
			title, title, templ.EscapeString(message), templ.EscapeString(label))
		return err
	})
}

// RenderError writes a status 500 error page naming the kind of err.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	WriteErrorPage(w, r, http.StatusInternalServerError, Kind(err), "The page could not be composed.")
}

// WriteErrorPage sends status with an ErrorPage body.
func WriteErrorPage(w http.ResponseWriter, r *http.Request, status int, label, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Del("Content-Length")
	w.WriteHeader(status)
	_ = ErrorPage(status, label, message).Render(r.Context(), w)
}
