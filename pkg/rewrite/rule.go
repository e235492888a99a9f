package rewrite

import "golang.org/x/net/html"

// ContentType tells the rewriter how inserted content must be treated.
type ContentType uint8

const (
	// HTML content is inserted verbatim as markup.
	HTML ContentType = iota
	// Text content is escaped before insertion.
	Text
)

func (ct ContentType) render(content string) []byte {
	if ct == Text {
		return []byte(html.EscapeString(content))
	}
	return []byte(content)
}

// Handler signatures for each node kind.
type (
	ElementHandler func(el *Element) error
	TextHandler    func(t *TextChunk) error
	DoctypeHandler func(d *Doctype) error
	CommentHandler func(c *Comment) error
)

type ruleKind uint8

const (
	kindElement ruleKind = iota
	kindText
	kindDocText
	kindDoctype
	kindComment
)

// Rule is a tagged rule descriptor: a selector, the node kind it applies to
// and the handler to run. Element-scoped rules (OnElement, OnText) run
// before document rules for the same node; within a group rules run in the
// order they were declared.
type Rule struct {
	onElement ElementHandler
	onText    TextHandler
	onDoctype DoctypeHandler
	onComment CommentHandler
	selector  string
	kind      ruleKind
}

// OnElement runs h for every element matched by selector.
func OnElement(selector string, h ElementHandler) Rule {
	return Rule{selector: selector, kind: kindElement, onElement: h}
}

// OnText runs h for every text node whose parent element is matched by selector.
func OnText(selector string, h TextHandler) Rule {
	return Rule{selector: selector, kind: kindText, onText: h}
}

// OnDocumentText runs h for every text node of the document.
func OnDocumentText(h TextHandler) Rule {
	return Rule{kind: kindDocText, onText: h}
}

// OnDoctype runs h for every DOCTYPE node.
func OnDoctype(h DoctypeHandler) Rule {
	return Rule{kind: kindDoctype, onDoctype: h}
}

// OnComment runs h for every comment node of the document.
func OnComment(h CommentHandler) Rule {
	return Rule{kind: kindComment, onComment: h}
}

// compiledRule is a Rule with its selector parsed.
type compiledRule struct {
	Rule
	sel *Selector
}
