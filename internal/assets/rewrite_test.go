package assets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://localhost:8080"

func TestRewriteMarkup(t *testing.T) {
	t.Run("rewrites stylesheet, script and image references", func(t *testing.T) {
		markup := `<html><head>
<link rel="stylesheet" href="doc.css"/>
</head><body>
<script src="doc.js"></script>
<img src="bg1.png"/>
</body></html>`

		out := RewriteMarkup(markup, baseURL)
		assert.Contains(t, out, `href="http://localhost:8080/assets/doc.css"`)
		assert.Contains(t, out, `src="http://localhost:8080/assets/doc.js"`)
		assert.Contains(t, out, `src="http://localhost:8080/assets/bg1.png"`)
	})

	t.Run("rewrites css url references including fonts", func(t *testing.T) {
		markup := `<style>@font-face{src:url(f1.woff)} .bg{background:url("page1.png")}</style>`
		out := RewriteMarkup(markup, baseURL)
		assert.Contains(t, out, `url(http://localhost:8080/assets/f1.woff)`)
		assert.Contains(t, out, `url("http://localhost:8080/assets/page1.png")`)
	})

	t.Run("leaves absolute and data URLs alone", func(t *testing.T) {
		markup := `<head></head><link href="https://cdn.example.com/x.css"/><style>.a{background:url(data:image/png;base64,AAAA)}</style>`
		out := RewriteMarkup(markup, baseURL)
		assert.Contains(t, out, `href="https://cdn.example.com/x.css"`)
		assert.Contains(t, out, `url(data:image/png;base64,AAAA)`)
	})

	t.Run("injects a base tag into the head", func(t *testing.T) {
		out := RewriteMarkup(`<html><head><title>x</title></head></html>`, baseURL)
		assert.Contains(t, out, `<base href="http://localhost:8080/">`)
		require.Less(t, strings.Index(out, "<base"), strings.Index(out, "<title"))
	})

	t.Run("keeps an existing base tag", func(t *testing.T) {
		markup := `<html><head><base href="http://other/"></head></html>`
		out := RewriteMarkup(markup, baseURL)
		assert.Equal(t, 1, strings.Count(out, "<base"))
		assert.Contains(t, out, `href="http://other/"`)
	})

	t.Run("prepends the base tag when there is no head", func(t *testing.T) {
		out := RewriteMarkup(`<p>hello</p>`, baseURL)
		assert.True(t, strings.HasPrefix(out, `<base href="http://localhost:8080/">`))
	})

	t.Run("rewriting is idempotent", func(t *testing.T) {
		markup := `<html><head><link rel="stylesheet" href="doc.css"/></head>
<body><script src="doc.js"></script><img src="p1.png"/>
<style>@font-face{src:url(f1.woff)}</style></body></html>`

		once := RewriteMarkup(markup, baseURL)
		twice := RewriteMarkup(once, baseURL)
		assert.Equal(t, once, twice)
	})
}

func TestDiscoverMarkupReferences(t *testing.T) {
	t.Run("finds stylesheets then scripts in order", func(t *testing.T) {
		markup := `<link rel="stylesheet" href="a.css"/><script src="b.js"></script><link href="c.css" rel="stylesheet"/>`
		refs := DiscoverMarkupReferences(markup)
		assert.Equal(t, []string{"a.css", "c.css", "b.js"}, refs)
	})

	t.Run("ignores inline scripts and non-css links", func(t *testing.T) {
		markup := `<script>var x=1;</script><link rel="icon" href="fav.ico"/>`
		assert.Empty(t, DiscoverMarkupReferences(markup))
	})

	t.Run("script sources with unrecognized extensions are discovered", func(t *testing.T) {
		markup := `<script src="helper.wasm"></script>`
		assert.Equal(t, []string{"helper.wasm"}, DiscoverMarkupReferences(markup))
	})

	t.Run("absolute references are not discovered", func(t *testing.T) {
		markup := `<link rel="stylesheet" href="https://cdn.example.com/x.css"/><script src="https://cdn.example.com/y.js"></script>`
		assert.Empty(t, DiscoverMarkupReferences(markup))
	})
}
