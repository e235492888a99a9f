// Package compose expands server-side htmx directives into full pages.
//
// A directive is an element carrying a target attribute, hx-get by default:
//
//	<div hx-get="/fragments/cart" hx-trigger="server" hx-swap="outerHTML"></div>
//
// [Composer] forwards a request to an inner [dispatch.Dispatcher], and when
// the response is HTML with a known length it buffers the body, scans it for
// directives, fetches every distinct fragment through a GET sub-request sent
// back through the composer itself, and injects the fragments according to
// hx-swap. Sub-requests carry a recursion depth in their context; a
// composition that would recurse past [MaxDepth] fails with
// [ErrRecursionLimit].
//
// Targets starting with "/" replace path and query of the request URI;
// other targets are appended to the request path. An hx-select attribute
// is appended to the target as an hx-select query parameter, which the
// [SelectFilter] in the inner stack applies to the fragment.
//
// A request carrying ?parent=/layout is dispatched to /layout instead, and
// the first [child] directive of the layout resolves to the page that was
// originally requested.
//
// Failures are all-or-nothing: either the full composed document is
// returned or an error wrapping one of the kind sentinels. [Handler] serves
// a composer over HTTP and renders failures with [RenderError].
//
// Typical stack:
//
//	origin := dispatch.Limit(dispatch.Buffered(dispatch.Handler(mux)), 64)
//	c, err := compose.New(compose.Select(origin, compose.DefaultConfig()),
//	    compose.WithLogger(log),
//	    compose.WithSkip(compose.SkipHTMXRequests),
//	)
//	http.Handle("/", compose.NewHandler(c))
package compose
