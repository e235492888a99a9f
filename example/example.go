// Package example is a small demo site served by hxcompose when no content
// directory is configured.
package example

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/dmitrymomot/hxcompose/pkg/source"
)

//go:embed site pages
var files embed.FS

// Site holds the HTML pages and partials.
func Site() fs.FS {
	return sub("site")
}

// Pages holds the markdown pages.
func Pages() fs.FS {
	return sub("pages")
}

// Routes returns the demo sources: the site at "/" and markdown under
// source.PagesPrefix.
func Routes(opts ...source.Option) http.Handler {
	return source.Routes{
		Root:  source.Dir(Site(), opts...),
		Pages: source.Markdown(Pages(), source.NewRenderer(nil), opts...),
	}.Handler()
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return f
}
