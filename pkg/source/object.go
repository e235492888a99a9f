package source

import (
	"net/http"
	"strconv"
	"time"
)

// Object is a source body ready to be served, and the unit held by the
// object cache.
type Object struct {
	ContentType string    `msgpack:"ct"`
	Body        []byte    `msgpack:"b"`
	ETag        string    `msgpack:"e,omitempty"`
	ModTime     time.Time `msgpack:"m,omitempty"`
}

// Size implements cache.Sizer.
func (o Object) Size() int64 { return int64(len(o.Body)) }

// serve writes the whole object with status 200. Conditional and range
// headers are ignored: the body is composed downstream, so a 304 or a
// partial body would be wrong for the composed page.
func (o Object) serve(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", o.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(o.Body)))
	if o.ETag != "" {
		h.Set("ETag", o.ETag)
	}
	if !o.ModTime.IsZero() {
		h.Set("Last-Modified", o.ModTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(o.Body)
	}
}

func allowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}
