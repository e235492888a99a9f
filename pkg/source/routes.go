package source

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mount prefixes used by Routes.
const (
	PagesPrefix    = "/pages"
	ObjectsPrefix  = "/objects"
	UpstreamPrefix = "/upstream"
)

// Routes is the set of content sources behind the composer. Nil fields are
// not mounted.
type Routes struct {
	Root     http.Handler // "/"
	Pages    http.Handler // PagesPrefix
	Objects  http.Handler // ObjectsPrefix
	Upstream http.Handler // UpstreamPrefix
}

// Handler mounts the sources on a chi router. Mounted sources see paths
// with their prefix stripped. Unmatched paths answer 404.
func (rt Routes) Handler() http.Handler {
	r := chi.NewRouter()
	mount := func(prefix string, h http.Handler) {
		if h != nil {
			r.Mount(prefix, http.StripPrefix(prefix, h))
		}
	}
	mount(PagesPrefix, rt.Pages)
	mount(ObjectsPrefix, rt.Objects)
	mount(UpstreamPrefix, rt.Upstream)
	if rt.Root != nil {
		r.Handle("/*", rt.Root)
	}
	return r
}
