// Package htmx holds the htmx vocabulary shared by the composer: directive
// attribute names, request headers and swap strategies.
//
// # Swap Strategies
//
// A SwapStrategy decides how a resolved fragment is merged into the
// directive element that requested it:
//   - SwapInnerHTML: Replace inner HTML (default)
//   - SwapOuterHTML: Replace entire element
//   - SwapBeforeBegin: Insert before element
//   - SwapAfterBegin: Insert before first child
//   - SwapBeforeEnd: Insert after last child
//   - SwapAfterEnd: Insert after element
//   - SwapDelete: Remove the element
//   - SwapNone: Don't swap
//
// Strategies are parsed from the hx-swap attribute and applied to a
// rewrite.Element:
//
//	s := htmx.SwapFromAttr(el.GetAttribute(htmx.AttrSwap))
//	s.Apply(el, fragment, rewrite.HTML)
//
// # Request Detection
//
// Use IsHTMX to check if an incoming HTTP request originated from an HTMX
// element. The composer uses it to leave client-driven fragment requests
// alone when configured to do so.
package htmx
