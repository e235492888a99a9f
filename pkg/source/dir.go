package source

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrymomot/hxcompose/pkg/storage"
)

// Dir serves files from fsys. "/cards" finds "cards", then "cards.html",
// then "cards/index.html"; the index name is set with WithIndex.
func Dir(fsys fs.FS, opts ...Option) http.Handler {
	o := newOptions(opts)
	return &dirSource{fsys: fsys, index: o.index, sanitize: o.sanitize, fetch: o.fetcher("dir")}
}

type dirSource struct {
	fsys     fs.FS
	index    string
	sanitize func(string) string
	fetch    fetcher
}

func (s *dirSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	name, err := fileName(r.URL.Path, s.index)
	var obj Object
	if err == nil {
		obj, err = s.fetch.get(r.Context(), "dir:"+name, func(context.Context) (Object, error) {
			return s.load(name)
		})
	}
	if err != nil {
		s.fetch.fail(w, r, name, err)
		return
	}
	obj.serve(w, r)
}

func (s *dirSource) load(name string) (Object, error) {
	name, err := s.resolve(name)
	if err != nil {
		return Object{}, err
	}
	body, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return Object{}, err
	}
	obj := Object{ContentType: storage.ContentType(name, "", body), Body: body}
	if fi, err := fs.Stat(s.fsys, name); err == nil {
		obj.ModTime = fi.ModTime()
	}
	return filtered(obj, s.sanitize), nil
}

func (s *dirSource) resolve(name string) (string, error) {
	fi, err := fs.Stat(s.fsys, name)
	switch {
	case err == nil && !fi.IsDir():
		return name, nil
	case err == nil:
		name = path.Join(name, s.index)
	case errors.Is(err, fs.ErrNotExist) && path.Ext(name) == "":
		name += ".html"
	default:
		return "", err
	}

	fi, err = fs.Stat(s.fsys, name)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", fs.ErrNotExist
	}
	return name, nil
}

// fileName maps a URL path onto a slash-separated fs name. Paths ending in
// a slash get index appended.
func fileName(urlPath, index string) (string, error) {
	if strings.ContainsAny(urlPath, "\x00\\") {
		return "", ErrInvalidPath
	}
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return index, nil
	}
	if strings.HasSuffix(urlPath, "/") {
		name = path.Join(name, index)
	}
	if !fs.ValidPath(name) {
		return "", ErrInvalidPath
	}
	return name, nil
}

// filtered runs HTML bodies through sanitize.
func filtered(obj Object, sanitize func(string) string) Object {
	if sanitize != nil && strings.HasPrefix(obj.ContentType, "text/html") {
		obj.Body = []byte(sanitize(string(obj.Body)))
	}
	return obj
}
