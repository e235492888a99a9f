// Package hxcompose serves HTML pages assembled from fragments on the
// server.
//
// A page marks the places where fragments go with htmx attributes:
//
//	<div hx-get="/pages/nav" hx-select="#menu" hx-trigger="load server" hx-swap="outerHTML"></div>
//
// The composer fetches every such fragment through an inner dispatcher,
// recursively composes it, and splices the result into the page before
// the response leaves the server. Browsers without JavaScript get the
// whole page; htmx clients keep working because the attributes stay in
// place.
//
// # Quick Start
//
//	sources := source.Routes{Root: source.Dir(os.DirFS("site"))}.Handler()
//	composer, err := compose.New(
//	    compose.Select(dispatch.Buffered(dispatch.Handler(sources)), compose.DefaultConfig()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	app := hxcompose.New(
//	    hxcompose.WithLogger(log),
//	    hxcompose.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.AccessLog(log),
//	        middlewares.Recover(log),
//	    ),
//	    hxcompose.WithHealthChecks(),
//	    hxcompose.WithComposer(composer),
//	)
//	return app.Run(":8080")
//
// # Packages
//
//   - pkg/compose: the composer, the select filter, swap handling and error kinds
//   - pkg/rewrite: the streaming HTML rewriter with CSS selector matching
//   - pkg/dispatch: the Dispatcher interface and its in-process, HTTP and limiting forms
//   - pkg/source: fragment sources backed by directories, markdown, S3 and upstream servers
//   - pkg/cache: in-memory and Redis caches for fetched fragments
//   - middlewares: request IDs, access logs, panics, timeouts and CORS
//
// The hxcompose command in cmd/hxcompose wires all of it from a YAML file,
// flags and environment variables.
package hxcompose
