package rewrite

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is the handle passed to element handlers. Mutations are recorded
// on the handle and applied by the rewriter when it emits the element.
// A handle is only valid during the rewriter pass that created it.
type Element struct {
	userData any

	name  string
	attrs []html.Attribute
	raw   []byte

	before      []byte
	prepended   []byte
	inner       []byte
	appended    []byte
	after       []byte
	replacement []byte

	noEndTag    bool
	selfClosing bool
	dirty       bool
	innerSet    bool
	replaced    bool
	unwrapped   bool
}

// TagName returns the lower-cased tag name.
func (e *Element) TagName() string {
	return e.name
}

// GetAttribute returns the unescaped value of the named attribute.
func (e *Element) GetAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttribute reports whether the element carries the named attribute.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// Attributes returns a copy of the element attributes in source order.
func (e *Element) Attributes() []html.Attribute {
	return slices.Clone(e.attrs)
}

// SetAttribute sets or adds an attribute.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	e.dirty = true
	for i := range e.attrs {
		if e.attrs[i].Key == name {
			e.attrs[i].Val = value
			return
		}
	}
	e.attrs = append(e.attrs, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute removes every occurrence of the named attribute.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	n := len(e.attrs)
	e.attrs = slices.DeleteFunc(e.attrs, func(a html.Attribute) bool { return a.Key == name })
	if len(e.attrs) != n {
		e.dirty = true
	}
}

// Before inserts content immediately before the element.
func (e *Element) Before(content string, ct ContentType) {
	e.before = append(e.before, ct.render(content)...)
}

// After inserts content immediately after the element.
func (e *Element) After(content string, ct ContentType) {
	e.after = append(e.after, ct.render(content)...)
}

// Prepend inserts content right after the start tag.
func (e *Element) Prepend(content string, ct ContentType) {
	e.prepended = append(e.prepended, ct.render(content)...)
}

// Append inserts content right before the end tag.
func (e *Element) Append(content string, ct ContentType) {
	e.appended = append(e.appended, ct.render(content)...)
}

// SetInnerContent replaces the element content, keeping its tags.
func (e *Element) SetInnerContent(content string, ct ContentType) {
	e.innerSet = true
	e.inner = ct.render(content)
}

// Replace replaces the whole element, tags included, with content.
func (e *Element) Replace(content string, ct ContentType) {
	e.replaced = true
	e.replacement = ct.render(content)
}

// Remove removes the element together with its content.
func (e *Element) Remove() {
	e.replaced = true
	e.replacement = nil
}

// RemoveAndKeepContent removes the start and end tags but keeps the content.
func (e *Element) RemoveAndKeepContent() {
	e.unwrapped = true
}

// Removed reports whether the element has been removed or replaced.
func (e *Element) Removed() bool {
	return e.replaced
}

// CanHaveContent reports whether the element has content, i.e. it is
// neither a void element nor written with a self-closing tag.
func (e *Element) CanHaveContent() bool {
	return !e.noEndTag
}

// SetUserData attaches an arbitrary value to the element for later rules of
// the same pass.
func (e *Element) SetUserData(v any) {
	e.userData = v
}

// UserData returns the value set by SetUserData.
func (e *Element) UserData() any {
	return e.userData
}

// startTag renders the start tag, reusing the source bytes when untouched.
func (e *Element) startTag() []byte {
	if !e.dirty {
		return e.raw
	}
	tt := html.StartTagToken
	if e.selfClosing {
		tt = html.SelfClosingTagToken
	}
	tok := html.Token{Type: tt, Data: e.name, Attr: e.attrs}
	return []byte(tok.String())
}

func isVoid(name string) bool {
	switch atom.Lookup([]byte(name)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source,
		atom.Track, atom.Wbr:
		return true
	}
	return false
}

// TextChunk is the handle passed to text handlers. Each chunk is a whole
// text node as seen between two tags.
type TextChunk struct {
	userData    any
	raw         []byte
	before      []byte
	after       []byte
	replacement []byte
	replaced    bool
}

// Text returns the source text of the chunk, entities not decoded.
func (t *TextChunk) Text() string {
	return string(t.raw)
}

// Before inserts content before the chunk.
func (t *TextChunk) Before(content string, ct ContentType) {
	t.before = append(t.before, ct.render(content)...)
}

// After inserts content after the chunk.
func (t *TextChunk) After(content string, ct ContentType) {
	t.after = append(t.after, ct.render(content)...)
}

// Replace replaces the chunk with content.
func (t *TextChunk) Replace(content string, ct ContentType) {
	t.replaced = true
	t.replacement = ct.render(content)
}

// Remove deletes the chunk.
func (t *TextChunk) Remove() {
	t.replaced = true
	t.replacement = nil
}

// Removed reports whether the chunk has been removed or replaced.
func (t *TextChunk) Removed() bool {
	return t.replaced
}

// SetUserData attaches an arbitrary value to the chunk.
func (t *TextChunk) SetUserData(v any) {
	t.userData = v
}

// UserData returns the value set by SetUserData.
func (t *TextChunk) UserData() any {
	return t.userData
}

// Doctype is the handle passed to DOCTYPE handlers.
type Doctype struct {
	name    string
	removed bool
}

// Name returns the doctype name, e.g. "html".
func (d *Doctype) Name() string { return d.name }

// Remove deletes the doctype.
func (d *Doctype) Remove() { d.removed = true }

// Removed reports whether the doctype has been removed.
func (d *Doctype) Removed() bool { return d.removed }

// Comment is the handle passed to comment handlers.
type Comment struct {
	text        string
	replacement []byte
	replaced    bool
}

// Text returns the comment body without the delimiters.
func (c *Comment) Text() string { return c.text }

// Replace replaces the comment with content.
func (c *Comment) Replace(content string, ct ContentType) {
	c.replaced = true
	c.replacement = ct.render(content)
}

// Remove deletes the comment.
func (c *Comment) Remove() {
	c.replaced = true
	c.replacement = nil
}

// Removed reports whether the comment has been removed or replaced.
func (c *Comment) Removed() bool { return c.replaced }
