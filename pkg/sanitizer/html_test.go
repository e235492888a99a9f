package sanitizer_test

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hxcompose/pkg/sanitizer"
)

func TestFragment(t *testing.T) {
	t.Parallel()

	t.Run("keeps directives", func(t *testing.T) {
		t.Parallel()

		in := `<div class="slot" hx-get="/cards" hx-trigger="server" hx-select=".card">loading</div>`
		require.Equal(t, in, sanitizer.Fragment(in))
	})

	t.Run("keeps relative and child targets", func(t *testing.T) {
		t.Parallel()

		for _, target := range []string{"/", "cards/a.html", "[child]", "/x?page=2"} {
			out := sanitizer.Fragment(`<div hx-get="` + target + `"></div>`)
			require.Contains(t, out, `hx-get=`, target)
		}
	})

	t.Run("drops targets that leave the site", func(t *testing.T) {
		t.Parallel()

		for _, target := range []string{"https://evil.test/x", "//evil.test/x", "javascript:alert(1)", "data:text/html,x"} {
			out := sanitizer.Fragment(`<div hx-get="` + target + `" hx-trigger="server">x</div>`)
			require.NotContains(t, out, "hx-get", target)
			require.Contains(t, out, `hx-trigger="server"`, target)
		}
	})

	t.Run("removes scripts and handlers", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Fragment(`<p onclick="steal()">hi<script>alert(1)</script></p><iframe src="/x"></iframe>`)
		require.Equal(t, `<p>hi</p>`, out)
	})

	t.Run("custom directive names", func(t *testing.T) {
		t.Parallel()

		p := sanitizer.NewFragmentPolicy("data-include", "data-swap")
		out := sanitizer.Custom(`<div data-include="/nav" data-swap="outerHTML" hx-get="/x"></div>`, p)
		require.Equal(t, `<div data-include="/nav" data-swap="outerHTML"></div>`, out)
	})
}

func TestText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello world", sanitizer.Text(`<b>hello</b> <i>world</i><script>x()</script>`))
}

func TestCustom(t *testing.T) {
	t.Parallel()

	in := `<b>bold</b>`
	require.Equal(t, in, sanitizer.Custom(in, nil))
	require.Equal(t, "bold", sanitizer.Custom(in, bluemonday.StrictPolicy()))
}
