package source

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrymomot/hxcompose/pkg/storage"
)

// S3 serves objects from getter, keyed by the request path without its
// leading slash. ".md" objects are rendered with md when it is not nil.
// Bodies larger than maxSize fail with 413; zero means no limit.
func S3(getter storage.ObjectGetter, md *Renderer, maxSize int64, opts ...Option) http.Handler {
	o := newOptions(opts)
	return &s3Source{getter: getter, md: md, maxSize: maxSize, sanitize: o.sanitize, fetch: o.fetcher("s3")}
}

type s3Source struct {
	getter   storage.ObjectGetter
	md       *Renderer
	maxSize  int64
	sanitize func(string) string
	fetch    fetcher
}

func (s *s3Source) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/")
	obj, err := s.fetch.get(r.Context(), "s3:"+key, func(ctx context.Context) (Object, error) {
		return s.load(ctx, key)
	})
	if err != nil {
		s.fetch.fail(w, r, key, err)
		return
	}
	obj.serve(w, r)
}

func (s *s3Source) load(ctx context.Context, key string) (Object, error) {
	o, err := s.getter.Get(ctx, key)
	if err != nil {
		return Object{}, err
	}
	body, err := storage.ReadAll(o, s.maxSize)
	if err != nil {
		return Object{}, err
	}

	obj := Object{ContentType: o.ContentType, Body: body, ETag: o.ETag, ModTime: o.LastModified}
	if s.md != nil && path.Ext(key) == ".md" {
		out, _, err := s.md.Render(body)
		if err != nil {
			return Object{}, err
		}
		obj.Body, obj.ContentType = out, "text/html; charset=utf-8"
		return obj, nil
	}
	if obj.ContentType == "" {
		obj.ContentType = storage.ContentType(key, "", body)
	}
	return filtered(obj, s.sanitize), nil
}
