package rewrite

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/net/html"
)

// Rewriter applies a rule set to an HTML document and writes the result to
// an output sink. Input is pushed with Write and the pass is finalized by a
// single call to End. Untouched tokens are copied byte for byte, so a rule
// set that changes nothing reproduces the input exactly.
//
// Handlers run on the goroutine that calls End. Output chunks are written to
// the sink during End. A Rewriter must not be reused.
type Rewriter struct {
	out io.Writer
	w   *bufio.Writer
	buf bytes.Buffer

	elementRules []compiledRule
	textRules    []compiledRule
	docTextRules []compiledRule
	doctypeRules []compiledRule
	commentRules []compiledRule

	stack      []*Element
	suppressed int
	ended      bool
}

// New compiles rules and returns a Rewriter writing to out.
// A nil out discards the output, which is useful for read-only passes.
func New(rules []Rule, out io.Writer) (*Rewriter, error) {
	if out == nil {
		out = io.Discard
	}
	r := &Rewriter{out: out}

	for _, rule := range rules {
		cr := compiledRule{Rule: rule}
		if rule.kind == kindElement || rule.kind == kindText {
			sel, err := ParseSelector(rule.selector)
			if err != nil {
				return nil, err
			}
			cr.sel = sel
		}
		switch rule.kind {
		case kindElement:
			r.elementRules = append(r.elementRules, cr)
		case kindText:
			r.textRules = append(r.textRules, cr)
		case kindDocText:
			r.docTextRules = append(r.docTextRules, cr)
		case kindDoctype:
			r.doctypeRules = append(r.doctypeRules, cr)
		case kindComment:
			r.commentRules = append(r.commentRules, cr)
		}
	}

	return r, nil
}

// Rewrite runs rules over input and returns the rewritten document.
func Rewrite(input []byte, rules ...Rule) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(input))

	r, err := New(rules, &out)
	if err != nil {
		return nil, err
	}
	if _, err := r.Write(input); err != nil {
		return nil, err
	}
	if err := r.End(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Write feeds a chunk of input.
func (r *Rewriter) Write(p []byte) (int, error) {
	if r.ended {
		return 0, ErrEnded
	}
	return r.buf.Write(p)
}

// End finalizes the pass: every rule runs and the output is flushed.
// It must be called exactly once, after all input has been written.
func (r *Rewriter) End() error {
	if r.ended {
		return ErrEnded
	}
	r.ended = true
	r.w = bufio.NewWriter(r.out)

	if err := r.run(r.buf.Bytes()); err != nil {
		return err
	}
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return nil
}

func (r *Rewriter) run(input []byte) error {
	z := html.NewTokenizer(bytes.NewReader(input))
	consumed := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if !errors.Is(z.Err(), io.EOF) {
				return fmt.Errorf("%w: %w", ErrTokenize, z.Err())
			}
			break
		}

		raw := slices.Clone(z.Raw())
		consumed += len(raw)

		var err error
		switch tt {
		case html.TextToken:
			err = r.text(raw)
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			err = r.startTag(tok, raw, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			tok := z.Token()
			r.endTag(tok.Data, raw)
		case html.CommentToken:
			tok := z.Token()
			err = r.comment(tok.Data, raw)
		case html.DoctypeToken:
			tok := z.Token()
			err = r.doctype(tok.Data, raw)
		}
		if err != nil {
			return err
		}
	}

	// The tokenizer drops an unterminated trailing tag; keep its bytes.
	if consumed < len(input) {
		r.emit(input[consumed:])
	}
	for len(r.stack) > 0 {
		r.closeTop(nil)
	}
	return nil
}

func (r *Rewriter) startTag(tok html.Token, raw []byte, selfClosing bool) error {
	// "/>" only closes void elements and SVG or MathML content; on other
	// elements it is ignored and the element stays open, as in a browser.
	el := &Element{
		name:        tok.Data,
		attrs:       tok.Attr,
		raw:         raw,
		selfClosing: selfClosing,
		noEndTag:    isVoid(tok.Data) || (selfClosing && r.foreign(tok.Data)),
	}

	chain := append(r.stack[:len(r.stack):len(r.stack)], el)
	for _, rule := range r.elementRules {
		if !rule.sel.matches(chain) {
			continue
		}
		if err := rule.onElement(el); err != nil {
			return fmt.Errorf("%w: element %q: %w", ErrHandler, rule.selector, err)
		}
	}

	r.emit(el.before)
	switch {
	case el.replaced:
		r.emit(el.replacement)
	case !el.unwrapped:
		r.emit(el.startTag())
	}

	if el.noEndTag {
		r.emit(el.after)
		return nil
	}

	if !el.replaced {
		r.emit(el.prepended)
		if el.innerSet {
			r.emit(el.inner)
		}
	}
	r.stack = append(r.stack, el)
	if el.suppressesContent() {
		r.suppressed++
	}
	return nil
}

// foreign reports whether an element named name starts or sits inside
// SVG or MathML content.
func (r *Rewriter) foreign(name string) bool {
	if isForeignRoot(name) {
		return true
	}
	for _, el := range r.stack {
		if isForeignRoot(el.name) {
			return true
		}
	}
	return false
}

func isForeignRoot(name string) bool {
	return name == "svg" || name == "math"
}

func (r *Rewriter) endTag(name string, raw []byte) {
	idx := -1
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.emit(raw)
		return
	}
	for len(r.stack)-1 > idx {
		r.closeTop(nil)
	}
	r.closeTop(raw)
}

// closeTop pops the innermost open element. endRaw is nil when the element
// is closed implicitly and has no end tag in the source.
func (r *Rewriter) closeTop(endRaw []byte) {
	el := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	if el.suppressesContent() {
		r.suppressed--
	}

	if !el.replaced {
		r.emit(el.appended)
		if !el.unwrapped {
			r.emit(endRaw)
		}
	}
	r.emit(el.after)
}

func (r *Rewriter) text(raw []byte) error {
	chunk := &TextChunk{raw: raw}

	if len(r.stack) > 0 {
		for _, rule := range r.textRules {
			if !rule.sel.matches(r.stack) {
				continue
			}
			if err := rule.onText(chunk); err != nil {
				return fmt.Errorf("%w: text %q: %w", ErrHandler, rule.selector, err)
			}
		}
	}
	for _, rule := range r.docTextRules {
		if err := rule.onText(chunk); err != nil {
			return fmt.Errorf("%w: document text: %w", ErrHandler, err)
		}
	}

	r.emit(chunk.before)
	if chunk.replaced {
		r.emit(chunk.replacement)
	} else {
		r.emit(raw)
	}
	r.emit(chunk.after)
	return nil
}

func (r *Rewriter) comment(text string, raw []byte) error {
	c := &Comment{text: text}
	for _, rule := range r.commentRules {
		if err := rule.onComment(c); err != nil {
			return fmt.Errorf("%w: comment: %w", ErrHandler, err)
		}
	}
	if c.replaced {
		r.emit(c.replacement)
	} else {
		r.emit(raw)
	}
	return nil
}

func (r *Rewriter) doctype(name string, raw []byte) error {
	d := &Doctype{name: name}
	for _, rule := range r.doctypeRules {
		if err := rule.onDoctype(d); err != nil {
			return fmt.Errorf("%w: doctype: %w", ErrHandler, err)
		}
	}
	if !d.removed {
		r.emit(raw)
	}
	return nil
}

// emit writes p unless an open element had its content removed or replaced.
// Handlers still run inside suppressed regions; only their output is dropped.
func (r *Rewriter) emit(p []byte) {
	if r.suppressed > 0 || len(p) == 0 {
		return
	}
	// bufio.Writer keeps the first error and reports it on Flush.
	_, _ = r.w.Write(p)
}

func (e *Element) suppressesContent() bool {
	return e.replaced || e.innerSet
}
