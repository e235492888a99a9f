// Package source provides the content handlers the composer dispatches into.
//
// Every source is a plain http.Handler that answers GET and HEAD with a
// complete body and a Content-Length:
//
//   - [Dir] serves HTML files from an fs.FS.
//   - [Markdown] renders "<path>.md" pages with goldmark, YAML front matter
//     on top.
//   - [S3] serves bucket objects through a storage.ObjectGetter.
//   - [Upstream] reverse-proxies to another origin.
//
// Loaded objects can be kept in a cache.Cache[Object] with [WithCache];
// lookups are counted per source in pkg/metrics. [Routes] mounts the
// sources under fixed prefixes:
//
//	routes := source.Routes{
//		Root:    source.Dir(os.DirFS("site")),
//		Pages:   source.Markdown(os.DirFS("pages"), source.NewRenderer(sanitizer.Fragment)),
//		Objects: source.S3(store, nil, store.MaxObjectSize(), source.WithCache(objects)),
//	}
//	handler := routes.Handler()
package source
