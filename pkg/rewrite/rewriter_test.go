package rewrite_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/rewrite"
)

func rewriteString(t *testing.T, input string, rules ...rewrite.Rule) string {
	t.Helper()
	out, err := rewrite.Rewrite([]byte(input), rules...)
	require.NoError(t, err)
	return string(out)
}

func TestRewrite_Passthrough(t *testing.T) {
	t.Parallel()

	docs := []string{
		"",
		"plain text",
		`<!DOCTYPE html><html><head><title>T &amp; T</title></head><body><p class=a>Hi<br>there</p></body></html>`,
		"<div\n  data-x = 'y'  >\r\n<!-- note --><script>if (a < b) { x = '</div>' }</script></div>",
		"<ul><li>one<li>two</ul><p>unclosed",
		"<svg><path d='M0 0'/></svg>",
		"<div>truncated <span",
		"</stray><b>bold</b>",
	}

	for _, doc := range docs {
		t.Run("is byte identical without mutations", func(t *testing.T) {
			t.Parallel()

			got := rewriteString(t, doc, rewrite.OnElement("*", func(el *rewrite.Element) error {
				_ = el.TagName()
				return nil
			}))
			require.Equal(t, doc, got)
		})
	}
}

func TestRewrite_ElementMutations(t *testing.T) {
	t.Parallel()

	doc := `<div id="t"><span>old</span></div>`

	tests := []struct {
		name   string
		mutate func(el *rewrite.Element)
		want   string
	}{
		{
			name:   "set inner content",
			mutate: func(el *rewrite.Element) { el.SetInnerContent("<b>new</b>", rewrite.HTML) },
			want:   `<div id="t"><b>new</b></div>`,
		},
		{
			name:   "replace",
			mutate: func(el *rewrite.Element) { el.Replace("<i>r</i>", rewrite.HTML) },
			want:   `<i>r</i>`,
		},
		{
			name:   "prepend",
			mutate: func(el *rewrite.Element) { el.Prepend("<hr>", rewrite.HTML) },
			want:   `<div id="t"><hr><span>old</span></div>`,
		},
		{
			name:   "append",
			mutate: func(el *rewrite.Element) { el.Append("<hr>", rewrite.HTML) },
			want:   `<div id="t"><span>old</span><hr></div>`,
		},
		{
			name:   "before",
			mutate: func(el *rewrite.Element) { el.Before("<hr>", rewrite.HTML) },
			want:   `<hr><div id="t"><span>old</span></div>`,
		},
		{
			name:   "after",
			mutate: func(el *rewrite.Element) { el.After("<hr>", rewrite.HTML) },
			want:   `<div id="t"><span>old</span></div><hr>`,
		},
		{
			name:   "remove",
			mutate: func(el *rewrite.Element) { el.Remove() },
			want:   ``,
		},
		{
			name:   "remove and keep content",
			mutate: func(el *rewrite.Element) { el.RemoveAndKeepContent() },
			want:   `<span>old</span>`,
		},
		{
			name:   "text content is escaped",
			mutate: func(el *rewrite.Element) { el.SetInnerContent("<b>&</b>", rewrite.Text) },
			want:   `<div id="t">&lt;b&gt;&amp;&lt;/b&gt;</div>`,
		},
		{
			name: "set and remove attributes",
			mutate: func(el *rewrite.Element) {
				el.SetAttribute("data-x", `a"b`)
				el.RemoveAttribute("id")
			},
			want: `<div data-x="a&#34;b"><span>old</span></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := rewriteString(t, doc, rewrite.OnElement("#t", func(el *rewrite.Element) error {
				tt.mutate(el)
				return nil
			}))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRewrite_VoidElements(t *testing.T) {
	t.Parallel()

	t.Run("after is applied immediately", func(t *testing.T) {
		t.Parallel()

		got := rewriteString(t, `<p><img src="a.png"><br/>x</p>`,
			rewrite.OnElement("img, br", func(el *rewrite.Element) error {
				require.False(t, el.CanHaveContent())
				el.After("|", rewrite.Text)
				return nil
			}),
		)
		require.Equal(t, `<p><img src="a.png">|<br/>|x</p>`, got)
	})

	t.Run("replace void element", func(t *testing.T) {
		t.Parallel()

		got := rewriteString(t, `<p>a<br>b</p>`,
			rewrite.OnElement("br", func(el *rewrite.Element) error {
				el.Replace(" ", rewrite.Text)
				return nil
			}),
		)
		require.Equal(t, `<p>a b</p>`, got)
	})
}

func TestRewrite_SelfClosingSyntax(t *testing.T) {
	t.Parallel()

	t.Run("html elements written with a slash stay open", func(t *testing.T) {
		t.Parallel()

		got := rewriteString(t, `<section><div x/><p>after</p></section>`,
			rewrite.OnElement("[x]", func(el *rewrite.Element) error {
				require.True(t, el.CanHaveContent())
				el.Append("<b>hi</b>", rewrite.HTML)
				return nil
			}),
		)
		require.Equal(t, `<section><div x/><p>after</p><b>hi</b></section>`, got)
	})

	t.Run("inner content replaces what the element encloses", func(t *testing.T) {
		t.Parallel()

		got := rewriteString(t, `<section><div x/><p>after</p></section><footer>f</footer>`,
			rewrite.OnElement("[x]", func(el *rewrite.Element) error {
				el.SetInnerContent("<b>hi</b>", rewrite.HTML)
				return nil
			}),
		)
		require.Equal(t, `<section><div x/><b>hi</b></section><footer>f</footer>`, got)
	})

	t.Run("svg and mathml elements close themselves", func(t *testing.T) {
		t.Parallel()

		var names []string
		got := rewriteString(t, `<svg><path d="M0 0"/><circle r="1"/></svg><math><mi/></math>`,
			rewrite.OnElement("svg *, math *", func(el *rewrite.Element) error {
				require.False(t, el.CanHaveContent())
				names = append(names, el.TagName())
				el.After("|", rewrite.Text)
				return nil
			}),
		)
		require.Equal(t, []string{"path", "circle", "mi"}, names)
		require.Equal(t, `<svg><path d="M0 0"/>|<circle r="1"/>|</svg><math><mi/>|</math>`, got)
	})

	t.Run("rewritten start tags keep the slash", func(t *testing.T) {
		t.Parallel()

		got := rewriteString(t, `<p><div x/></p>`,
			rewrite.OnElement("[x]", func(el *rewrite.Element) error {
				el.SetAttribute("y", "1")
				return nil
			}),
		)
		require.Equal(t, `<p><div x="" y="1"/></p>`, got)
	})
}

func TestRewrite_SuppressedContent(t *testing.T) {
	t.Parallel()

	t.Run("handlers still fire inside replaced content", func(t *testing.T) {
		t.Parallel()

		var seen []string
		got := rewriteString(t, `<div class="outer"><div class="inner">x</div></div><div class="after"></div>`,
			rewrite.OnElement("div", func(el *rewrite.Element) error {
				cls, _ := el.GetAttribute("class")
				seen = append(seen, cls)
				switch cls {
				case "outer":
					el.SetInnerContent("O", rewrite.Text)
				case "inner":
					el.SetInnerContent("I", rewrite.Text)
				}
				return nil
			}),
		)
		require.Equal(t, []string{"outer", "inner", "after"}, seen)
		require.Equal(t, `<div class="outer">O</div><div class="after"></div>`, got)
	})

	t.Run("implicitly closed elements do not leak suppression", func(t *testing.T) {
		t.Parallel()

		got := rewriteString(t, `<section><div class="x"><p>open</section><footer>f</footer>`,
			rewrite.OnElement(".x", func(el *rewrite.Element) error {
				el.Remove()
				return nil
			}),
		)
		require.Equal(t, `<section></section><footer>f</footer>`, got)
	})
}

func TestRewrite_TextAndUserData(t *testing.T) {
	t.Parallel()

	t.Run("element rules run before the catch-all", func(t *testing.T) {
		t.Parallel()

		got := rewriteString(t, `<div><p class="k">keep <b>me</b></p><p>drop</p></div>`,
			rewrite.OnElement(".k, .k *", func(el *rewrite.Element) error {
				el.SetUserData(true)
				return nil
			}),
			rewrite.OnText(".k, .k *", func(tc *rewrite.TextChunk) error {
				tc.SetUserData(true)
				return nil
			}),
			rewrite.OnElement("*", func(el *rewrite.Element) error {
				if kept, _ := el.UserData().(bool); !kept {
					el.RemoveAndKeepContent()
				}
				return nil
			}),
			rewrite.OnDocumentText(func(tc *rewrite.TextChunk) error {
				if kept, _ := tc.UserData().(bool); !kept {
					tc.Remove()
				}
				return nil
			}),
		)
		require.Equal(t, `<p class="k">keep <b>me</b></p>`, got)
	})

	t.Run("text chunk replace before and after", func(t *testing.T) {
		t.Parallel()

		got := rewriteString(t, `<p>a</p>`, rewrite.OnText("p", func(tc *rewrite.TextChunk) error {
			require.Equal(t, "a", tc.Text())
			tc.Before("[", rewrite.Text)
			tc.Replace("<b>", rewrite.Text)
			tc.After("]", rewrite.Text)
			return nil
		}))
		require.Equal(t, `<p>[&lt;b&gt;]</p>`, got)
	})
}

func TestRewrite_DocumentNodes(t *testing.T) {
	t.Parallel()

	got := rewriteString(t, "<!DOCTYPE html><!-- c1 --><p>x<!-- c2 --></p>",
		rewrite.OnDoctype(func(d *rewrite.Doctype) error {
			require.Equal(t, "html", d.Name())
			d.Remove()
			return nil
		}),
		rewrite.OnComment(func(c *rewrite.Comment) error {
			c.Remove()
			return nil
		}),
	)
	require.Equal(t, "<p>x</p>", got)
}

func TestRewriter_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("accepts chunked input", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		r, err := rewrite.New([]rewrite.Rule{
			rewrite.OnElement("b", func(el *rewrite.Element) error {
				el.SetInnerContent("B", rewrite.Text)
				return nil
			}),
		}, &out)
		require.NoError(t, err)

		for _, chunk := range []string{"<p>x<", "b>y</", "b></p>"} {
			_, err := r.Write([]byte(chunk))
			require.NoError(t, err)
		}
		require.NoError(t, r.End())
		require.Equal(t, "<p>x<b>B</b></p>", out.String())
	})

	t.Run("rejects use after end", func(t *testing.T) {
		t.Parallel()

		r, err := rewrite.New(nil, nil)
		require.NoError(t, err)
		require.NoError(t, r.End())

		_, err = r.Write([]byte("x"))
		require.ErrorIs(t, err, rewrite.ErrEnded)
		require.ErrorIs(t, r.End(), rewrite.ErrEnded)
	})

	t.Run("reports invalid selectors at construction", func(t *testing.T) {
		t.Parallel()

		_, err := rewrite.New([]rewrite.Rule{rewrite.OnElement("a:hover", nil)}, nil)
		require.ErrorIs(t, err, rewrite.ErrInvalidSelector)
	})

	t.Run("wraps handler errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		_, err := rewrite.Rewrite([]byte("<p>x</p>"), rewrite.OnElement("p", func(*rewrite.Element) error {
			return boom
		}))
		require.ErrorIs(t, err, rewrite.ErrHandler)
		require.ErrorIs(t, err, boom)
	})
}
