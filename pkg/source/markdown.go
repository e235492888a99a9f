package source

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io/fs"
	"net/http"
	"path"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// Meta is the YAML front matter of a markdown page.
type Meta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	// Class is set on the wrapping article element.
	Class string `yaml:"class"`
}

// Renderer turns markdown with optional front matter into an HTML fragment.
// Raw HTML in the source is kept so pages can carry directives; pass a
// sanitizer to filter it.
type Renderer struct {
	md       goldmark.Markdown
	sanitize func(string) string
}

func NewRenderer(sanitize func(string) string) *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		sanitize: sanitize,
	}
}

// Render returns the page as <article>...</article>, headed by the front
// matter title and description when present.
func (r *Renderer) Render(src []byte) ([]byte, Meta, error) {
	meta, body, err := splitFrontMatter(src)
	if err != nil {
		return nil, Meta{}, err
	}

	var content bytes.Buffer
	if err := r.md.Convert(body, &content); err != nil {
		return nil, meta, fmt.Errorf("%w: %w", ErrRender, err)
	}
	inner := content.String()
	if r.sanitize != nil {
		inner = r.sanitize(inner)
	}

	var out bytes.Buffer
	out.WriteString("<article")
	if meta.Class != "" {
		fmt.Fprintf(&out, ` class="%s"`, html.EscapeString(meta.Class))
	}
	out.WriteString(">")
	if meta.Title != "" {
		fmt.Fprintf(&out, "<h1>%s</h1>", html.EscapeString(meta.Title))
	}
	if meta.Description != "" {
		fmt.Fprintf(&out, `<p class="lead">%s</p>`, html.EscapeString(meta.Description))
	}
	out.WriteString(inner)
	out.WriteString("</article>")
	return out.Bytes(), meta, nil
}

// splitFrontMatter separates a leading "---" YAML block from the body.
// Content without the opening delimiter is all body.
func splitFrontMatter(src []byte) (Meta, []byte, error) {
	var meta Meta
	const delim = "---"

	rest, ok := bytes.CutPrefix(src, []byte(delim))
	if !ok {
		return meta, src, nil
	}
	rest = bytes.TrimLeft(rest, " \t")
	rest, ok = cutNewline(rest)
	if !ok {
		return meta, src, nil
	}

	// The closing delimiter sits on its own line.
	for off := 0; ; {
		next := len(rest)
		nl := bytes.IndexByte(rest[off:], '\n')
		if nl >= 0 {
			next = off + nl + 1
		}
		if string(bytes.TrimRight(rest[off:next], " \t\r\n")) == delim {
			if err := yaml.Unmarshal(rest[:off], &meta); err != nil {
				return Meta{}, nil, fmt.Errorf("%w: %w", ErrFrontMatter, err)
			}
			return meta, rest[next:], nil
		}
		if nl < 0 {
			return Meta{}, nil, fmt.Errorf("%w: closing delimiter not found", ErrFrontMatter)
		}
		off = next
	}
}

func cutNewline(b []byte) ([]byte, bool) {
	if rest, ok := bytes.CutPrefix(b, []byte("\r\n")); ok {
		return rest, true
	}
	return bytes.CutPrefix(b, []byte("\n"))
}

// Markdown serves "<path>.md" files from fsys as rendered HTML fragments.
// A request for "/guide" reads "guide.md"; "/" and directory paths read
// "index.md" inside them.
func Markdown(fsys fs.FS, r *Renderer, opts ...Option) http.Handler {
	o := newOptions(opts)
	return &markdownSource{fsys: fsys, r: r, fetch: o.fetcher("markdown")}
}

type markdownSource struct {
	fsys  fs.FS
	r     *Renderer
	fetch fetcher
}

func (s *markdownSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	name, err := fileName(r.URL.Path, "index.md")
	if err == nil && path.Ext(name) != ".md" {
		name += ".md"
	}
	var obj Object
	if err == nil {
		obj, err = s.fetch.get(r.Context(), "md:"+name, func(context.Context) (Object, error) {
			return s.load(name)
		})
	}
	if err != nil {
		s.fetch.fail(w, r, name, err)
		return
	}
	obj.serve(w, r)
}

func (s *markdownSource) load(name string) (Object, error) {
	src, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return Object{}, err
	}
	out, _, err := s.r.Render(src)
	if err != nil {
		return Object{}, err
	}
	obj := Object{ContentType: "text/html; charset=utf-8", Body: out}
	if fi, err := fs.Stat(s.fsys, name); err == nil {
		obj.ModTime = fi.ModTime()
	}
	return obj, nil
}
