package rewrite

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a parsed CSS selector list.
//
// Supported subset:
//   - type and universal selectors: "div", "*"
//   - class and id: ".card", "#main"
//   - attribute selectors: [a], [a=v], [a~=v], [a^=v], [a$=v], [a*=v], [a|=v]
//   - descendant (whitespace) and child (">") combinators
//   - selector groups separated by commas
//
// Pseudo-classes, pseudo-elements and sibling combinators are rejected.
type Selector struct {
	source string
	groups []complexSelector
}

// complexSelector is a chain of compound selectors joined by combinators.
// combinators[i] joins parts[i] to parts[i+1].
type complexSelector struct {
	parts       []compound
	combinators []byte
}

type compound struct {
	tag     string // empty or "*" matches any element
	ids     []string
	classes []string
	attrs   []attrMatcher
}

type attrMatcher struct {
	key string
	op  string // "", "=", "~=", "^=", "$=", "*=", "|="
	val string
}

// MustParseSelector is like ParseSelector but panics on error.
func MustParseSelector(s string) *Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// ParseSelector parses a selector list.
func ParseSelector(s string) (*Selector, error) {
	p := &selectorParser{src: s}
	groups, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, s, err)
	}
	return &Selector{source: s, groups: groups}, nil
}

// String returns the selector source text.
func (s *Selector) String() string {
	return s.source
}

// matches reports whether the element at the top of the chain matches.
// chain[len(chain)-1] is the candidate, earlier entries are its ancestors
// ordered from the document root.
func (s *Selector) matches(chain []*Element) bool {
	if len(chain) == 0 {
		return false
	}
	for i := range s.groups {
		if s.groups[i].matches(chain) {
			return true
		}
	}
	return false
}

func (c *complexSelector) matches(chain []*Element) bool {
	last := len(c.parts) - 1
	if !c.parts[last].matches(chain[len(chain)-1]) {
		return false
	}
	return c.matchAncestors(last-1, chain[:len(chain)-1])
}

// matchAncestors matches parts[..=idx] against the ancestor chain, backtracking
// over descendant combinators.
func (c *complexSelector) matchAncestors(idx int, ancestors []*Element) bool {
	if idx < 0 {
		return true
	}
	part := c.parts[idx]
	switch c.combinators[idx] {
	case '>':
		if len(ancestors) == 0 {
			return false
		}
		parent := len(ancestors) - 1
		return part.matches(ancestors[parent]) && c.matchAncestors(idx-1, ancestors[:parent])
	default:
		for i := len(ancestors) - 1; i >= 0; i-- {
			if part.matches(ancestors[i]) && c.matchAncestors(idx-1, ancestors[:i]) {
				return true
			}
		}
		return false
	}
}

func (c *compound) matches(el *Element) bool {
	if c.tag != "" && c.tag != "*" && c.tag != el.name {
		return false
	}
	for _, id := range c.ids {
		if v, ok := el.GetAttribute("id"); !ok || v != id {
			return false
		}
	}
	if len(c.classes) > 0 {
		v, _ := el.GetAttribute("class")
		fields := strings.Fields(v)
		for _, cls := range c.classes {
			if !slices.Contains(fields, cls) {
				return false
			}
		}
	}
	for _, a := range c.attrs {
		if !a.matches(el.attrs) {
			return false
		}
	}
	return true
}

func (a attrMatcher) matches(attrs []html.Attribute) bool {
	for _, attr := range attrs {
		if attr.Namespace != "" || attr.Key != a.key {
			continue
		}
		v := attr.Val
		switch a.op {
		case "":
			return true
		case "=":
			return v == a.val
		case "~=":
			return a.val != "" && slices.Contains(strings.Fields(v), a.val)
		case "^=":
			return a.val != "" && strings.HasPrefix(v, a.val)
		case "$=":
			return a.val != "" && strings.HasSuffix(v, a.val)
		case "*=":
			return a.val != "" && strings.Contains(v, a.val)
		case "|=":
			return v == a.val || strings.HasPrefix(v, a.val+"-")
		}
		return false
	}
	return false
}

type selectorParser struct {
	src string
	pos int
}

func (p *selectorParser) parse() ([]complexSelector, error) {
	var groups []complexSelector
	for {
		p.skipSpace()
		cs, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		groups = append(groups, cs)
		p.skipSpace()
		if p.eof() {
			return groups, nil
		}
		if p.src[p.pos] != ',' {
			return nil, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
		}
		p.pos++
	}
}

func (p *selectorParser) parseComplex() (complexSelector, error) {
	var cs complexSelector
	for {
		part, err := p.parseCompound()
		if err != nil {
			return cs, err
		}
		cs.parts = append(cs.parts, part)

		hadSpace := p.skipSpace()
		if p.eof() || p.src[p.pos] == ',' {
			cs.combinators = append(cs.combinators, 0)
			return cs, nil
		}
		switch p.src[p.pos] {
		case '>':
			p.pos++
			p.skipSpace()
			cs.combinators = append(cs.combinators, '>')
		case '+', '~':
			return cs, fmt.Errorf("sibling combinator %q is not supported", p.src[p.pos])
		default:
			if !hadSpace {
				return cs, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
			}
			cs.combinators = append(cs.combinators, ' ')
		}
	}
}

func (p *selectorParser) parseCompound() (compound, error) {
	var c compound
	start := p.pos

	if !p.eof() && p.src[p.pos] == '*' {
		c.tag = "*"
		p.pos++
	} else if name := p.ident(); name != "" {
		c.tag = strings.ToLower(name)
	}

	for !p.eof() {
		switch p.src[p.pos] {
		case '.':
			p.pos++
			name := p.ident()
			if name == "" {
				return c, fmt.Errorf("empty class name at offset %d", p.pos)
			}
			c.classes = append(c.classes, name)
		case '#':
			p.pos++
			name := p.ident()
			if name == "" {
				return c, fmt.Errorf("empty id at offset %d", p.pos)
			}
			c.ids = append(c.ids, name)
		case '[':
			p.pos++
			a, err := p.parseAttr()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
		case ':':
			return c, fmt.Errorf("pseudo selectors are not supported")
		default:
			if p.pos == start {
				return c, fmt.Errorf("expected selector at offset %d", p.pos)
			}
			return c, nil
		}
	}
	if p.pos == start {
		return c, fmt.Errorf("empty selector")
	}
	return c, nil
}

func (p *selectorParser) parseAttr() (attrMatcher, error) {
	var a attrMatcher
	p.skipSpace()
	a.key = strings.ToLower(p.ident())
	if a.key == "" {
		return a, fmt.Errorf("empty attribute name at offset %d", p.pos)
	}
	p.skipSpace()
	if p.eof() {
		return a, fmt.Errorf("unterminated attribute selector")
	}
	if p.src[p.pos] == ']' {
		p.pos++
		return a, nil
	}

	switch c := p.src[p.pos]; c {
	case '=':
		a.op = "="
		p.pos++
	case '~', '^', '$', '*', '|':
		if p.pos+1 >= len(p.src) || p.src[p.pos+1] != '=' {
			return a, fmt.Errorf("invalid attribute operator at offset %d", p.pos)
		}
		a.op = string(c) + "="
		p.pos += 2
	default:
		return a, fmt.Errorf("unexpected %q in attribute selector", c)
	}

	p.skipSpace()
	val, err := p.attrValue()
	if err != nil {
		return a, err
	}
	a.val = val
	p.skipSpace()
	if p.eof() || p.src[p.pos] != ']' {
		return a, fmt.Errorf("unterminated attribute selector")
	}
	p.pos++
	return a, nil
}

func (p *selectorParser) attrValue() (string, error) {
	if p.eof() {
		return "", fmt.Errorf("missing attribute value")
	}
	q := p.src[p.pos]
	if q != '"' && q != '\'' {
		v := p.ident()
		if v == "" {
			return "", fmt.Errorf("missing attribute value at offset %d", p.pos)
		}
		return v, nil
	}
	p.pos++
	end := strings.IndexByte(p.src[p.pos:], q)
	if end < 0 {
		return "", fmt.Errorf("unterminated string at offset %d", p.pos)
	}
	v := p.src[p.pos : p.pos+end]
	p.pos += end + 1
	return v, nil
}

func (p *selectorParser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if c == '-' || c == '_' || c >= 0x80 ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *selectorParser) skipSpace() bool {
	start := p.pos
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f':
			p.pos++
			continue
		}
		break
	}
	return p.pos > start
}

func (p *selectorParser) eof() bool {
	return p.pos >= len(p.src)
}
