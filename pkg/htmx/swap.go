package htmx

import (
	"strings"

	"github.com/dmitrymomot/hxcompose/pkg/rewrite"
)

// SwapStrategy defines how fragment content is merged into a directive element.
type SwapStrategy string

const (
	SwapInnerHTML   SwapStrategy = "innerHTML"   // Replace the inner html of the target element
	SwapOuterHTML   SwapStrategy = "outerHTML"   // Replace the entire target element with the response
	SwapBeforeBegin SwapStrategy = "beforebegin" // Insert before the target element
	SwapAfterBegin  SwapStrategy = "afterbegin"  // Insert before the first child of the target element
	SwapBeforeEnd   SwapStrategy = "beforeend"   // Insert after the last child of the target element
	SwapAfterEnd    SwapStrategy = "afterend"    // Insert after the target element
	SwapDelete      SwapStrategy = "delete"      // Delete the target element
	SwapNone        SwapStrategy = "none"        // Do not swap content
)

// ParseSwap reads an hx-swap attribute value. Only the first whitespace
// separated token is significant, so modifiers such as "innerHTML swap:1s"
// are ignored. A blank value names no strategy and parses as none. Unknown
// strategies are returned as is and Apply treats them as a no-op.
//
// A missing attribute is not a blank one; use SwapFromAttr for that case.
func ParseSwap(v string) SwapStrategy {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return SwapNone
	}
	return SwapStrategy(fields[0])
}

// SwapFromAttr resolves the strategy of an element from its hx-swap
// lookup. An absent attribute means innerHTML.
func SwapFromAttr(v string, ok bool) SwapStrategy {
	if !ok {
		return SwapInnerHTML
	}
	return ParseSwap(v)
}

// Valid reports whether s is one of the known strategies.
func (s SwapStrategy) Valid() bool {
	switch s {
	case SwapInnerHTML, SwapOuterHTML, SwapBeforeBegin, SwapAfterBegin,
		SwapBeforeEnd, SwapAfterEnd, SwapDelete, SwapNone:
		return true
	}
	return false
}

// Apply merges content into el according to s. It reports whether the
// element was changed; none and unknown strategies leave it untouched.
func (s SwapStrategy) Apply(el *rewrite.Element, content string, ct rewrite.ContentType) bool {
	switch s {
	case SwapInnerHTML:
		el.SetInnerContent(content, ct)
	case SwapOuterHTML:
		el.Replace(content, ct)
	case SwapAfterBegin:
		el.Prepend(content, ct)
	case SwapBeforeBegin:
		el.Before(content, ct)
	case SwapBeforeEnd:
		el.Append(content, ct)
	case SwapAfterEnd:
		el.After(content, ct)
	case SwapDelete:
		el.Remove()
	default:
		return false
	}
	return true
}
