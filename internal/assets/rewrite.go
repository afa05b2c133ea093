package assets

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Reference rewriting. Each pattern deliberately excludes ':' from the
// reference so absolute URLs (http://, https://, data:) and already
// rewritten references never match again, which makes the rewrite
// idempotent.
var (
	stylesheetHrefRe = regexp.MustCompile(`(?i)(href=["'])([^"':]+\.css)(["'])`)
	scriptSrcRe      = regexp.MustCompile(`(?i)(<script[^>]*\bsrc=["'])([^"':]+)(["'])`)
	imageSrcRe       = regexp.MustCompile(`(?i)(<img[^>]*\bsrc=["'])([^"':]+)(["'])`)
	cssURLRe         = regexp.MustCompile(`(?i)url\(\s*(["']?)([^"'():]+)(["']?)\s*\)`)

	// discovery patterns over the raw markup; script sources match any
	// local reference so unrecognized extensions still get cataloged
	stylesheetLinkRe = regexp.MustCompile(`(?i)<link[^>]+href=["']([^"':]+\.css)["']`)
	scriptSourceRe   = regexp.MustCompile(`(?i)<script[^>]+src=["']([^"':]+)["']`)

	headOpenRe = regexp.MustCompile(`(?i)<head[^>]*>`)
	baseTagRe  = regexp.MustCompile(`(?i)<base\s`)
)

// RewriteMarkup replaces relative stylesheet, script, image and CSS url()
// references with absolute URLs under {baseURL}/assets/ and injects a
// <base href> element so any remaining relative references also resolve.
// Running it twice yields the same document as running it once.
func RewriteMarkup(markup, baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	assetURL := func(ref string) string {
		return baseURL + "/assets/" + path.Base(ref)
	}

	out := stylesheetHrefRe.ReplaceAllStringFunc(markup, func(m string) string {
		g := stylesheetHrefRe.FindStringSubmatch(m)
		return g[1] + assetURL(g[2]) + g[3]
	})
	out = scriptSrcRe.ReplaceAllStringFunc(out, func(m string) string {
		g := scriptSrcRe.FindStringSubmatch(m)
		return g[1] + assetURL(g[2]) + g[3]
	})
	out = imageSrcRe.ReplaceAllStringFunc(out, func(m string) string {
		g := imageSrcRe.FindStringSubmatch(m)
		return g[1] + assetURL(g[2]) + g[3]
	})
	out = cssURLRe.ReplaceAllStringFunc(out, func(m string) string {
		g := cssURLRe.FindStringSubmatch(m)
		return "url(" + g[1] + assetURL(g[2]) + g[3] + ")"
	})

	return injectBaseTag(out, baseURL)
}

// injectBaseTag adds <base href="{baseURL}/"> to the document head unless
// one is already present
func injectBaseTag(markup, baseURL string) string {
	if baseTagRe.MatchString(markup) {
		return markup
	}
	tag := fmt.Sprintf(`<base href="%s/">`, baseURL)
	if loc := headOpenRe.FindStringIndex(markup); loc != nil {
		return markup[:loc[1]] + "\n" + tag + markup[loc[1]:]
	}
	return tag + "\n" + markup
}

// DiscoverMarkupReferences extracts stylesheet and script filenames
// referenced directly by the markup, in order of appearance
func DiscoverMarkupReferences(markup string) []string {
	var refs []string
	for _, m := range stylesheetLinkRe.FindAllStringSubmatch(markup, -1) {
		refs = append(refs, path.Base(m[1]))
	}
	for _, m := range scriptSourceRe.FindAllStringSubmatch(markup, -1) {
		refs = append(refs, path.Base(m[1]))
	}
	return refs
}
