package converter

import "strconv"

// Options configures a single conversion. All fields are optional; a nil
// pointer means "use the tool default", which favors maximal embedding.
type Options struct {
	EmbedFonts   *bool
	EmbedImages  *bool
	EmbedScripts *bool
	EmbedOutline *bool
	SplitPages   *bool
	Zoom         float64
	// DPI is accepted for contract compatibility but never forwarded:
	// pdf2htmlEX has no DPI control. Known limitation, not a bug.
	DPI int
}

// enabled interprets a tri-state option: unset means enabled
func enabled(opt *bool) bool {
	return opt == nil || *opt
}

// embedArgs builds the embed flag set. CSS is always embedded because the
// in-browser editor cannot reliably load a detached stylesheet. When every
// class is embedded the canonical combined form is emitted, matching tool
// convention and avoiding order-sensitivity in the underlying parser.
func embedArgs(opts Options) []string {
	fonts := enabled(opts.EmbedFonts)
	images := enabled(opts.EmbedImages)
	scripts := enabled(opts.EmbedScripts)
	outline := enabled(opts.EmbedOutline)

	if fonts && images && scripts && outline {
		return []string{"--embed", "cfijo"}
	}

	return []string{
		"--embed-css", "1",
		"--embed-font", boolArg(fonts),
		"--embed-image", boolArg(images),
		"--embed-javascript", boolArg(scripts),
		"--embed-outline", boolArg(outline),
	}
}

// extraArgs builds the non-embed options: page splitting and zoom
func extraArgs(opts Options) []string {
	var args []string
	if opts.SplitPages != nil && *opts.SplitPages {
		args = append(args, "--split-pages", "1")
	}
	if opts.Zoom > 0 {
		args = append(args, "--zoom", strconv.FormatFloat(opts.Zoom, 'f', -1, 64))
	}
	return args
}

func boolArg(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// Bool returns a pointer to a bool value for building Options literals
func Bool(v bool) *bool {
	return &v
}
