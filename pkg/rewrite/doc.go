// Package rewrite is a rule-driven HTML rewriter built on the
// golang.org/x/net/html tokenizer.
//
// A rule set is an ordered list of tagged descriptors, each naming a node
// kind, a selector (for element-scoped kinds) and a handler:
//
//	out, err := rewrite.Rewrite(page,
//	    rewrite.OnElement("a[href^='http']", func(el *rewrite.Element) error {
//	        el.SetAttribute("rel", "noopener")
//	        return nil
//	    }),
//	    rewrite.OnComment(func(c *rewrite.Comment) error {
//	        c.Remove()
//	        return nil
//	    }),
//	)
//
// The rewriter does not build a DOM. It tracks the stack of open elements to
// evaluate selectors and to know where an element ends, and copies every
// token it does not touch verbatim. Element handlers fire at the start tag;
// insertions that belong at the end of an element (Append, After) are
// applied when its end tag is reached, or immediately for void and
// self-closing elements.
//
// When an element's content is removed or replaced, handlers still fire for
// the elements nested inside it; only their output is discarded. This keeps
// the sequence of matched elements identical between a read-only pass and a
// mutating pass over the same document.
//
// Optional end tags are not inferred: an element stays open until its own
// end tag or the end of the document.
package rewrite
