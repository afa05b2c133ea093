package converter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedArgs(t *testing.T) {
	t.Run("emits the canonical combined flag when everything is embedded", func(t *testing.T) {
		assert.Equal(t, []string{"--embed", "cfijo"}, embedArgs(Options{}))
	})

	t.Run("explicit true for every option still emits the combined flag", func(t *testing.T) {
		opts := Options{
			EmbedFonts:   Bool(true),
			EmbedImages:  Bool(true),
			EmbedScripts: Bool(true),
			EmbedOutline: Bool(true),
		}
		assert.Equal(t, []string{"--embed", "cfijo"}, embedArgs(opts))
	})

	t.Run("css is always embedded even when other classes are disabled", func(t *testing.T) {
		opts := Options{
			EmbedFonts:   Bool(false),
			EmbedImages:  Bool(false),
			EmbedScripts: Bool(false),
			EmbedOutline: Bool(false),
		}
		args := embedArgs(opts)
		assert.Equal(t, []string{
			"--embed-css", "1",
			"--embed-font", "0",
			"--embed-image", "0",
			"--embed-javascript", "0",
			"--embed-outline", "0",
		}, args)
	})

	t.Run("disabling a single class switches to individual flags", func(t *testing.T) {
		args := embedArgs(Options{EmbedFonts: Bool(false)})
		assert.Contains(t, args, "--embed-font")
		assert.NotContains(t, args, "--embed")
	})
}

func TestExtraArgs(t *testing.T) {
	t.Run("empty options produce no extra args", func(t *testing.T) {
		assert.Empty(t, extraArgs(Options{}))
	})

	t.Run("split pages and zoom are forwarded", func(t *testing.T) {
		opts := Options{SplitPages: Bool(true), Zoom: 1.5}
		assert.Equal(t, []string{"--split-pages", "1", "--zoom", "1.5"}, extraArgs(opts))
	})

	t.Run("split pages false is omitted", func(t *testing.T) {
		assert.Empty(t, extraArgs(Options{SplitPages: Bool(false)}))
	})
}

func TestBuildArgs(t *testing.T) {
	c := NewPDF2HTMLConverter(PDF2HTMLConfig{})

	t.Run("binds the working directory into the container", func(t *testing.T) {
		args := c.buildArgs("/work/abc", "report.pdf", "report.html", Options{})
		require.GreaterOrEqual(t, len(args), 8)
		assert.Equal(t, "run", args[0])
		assert.Contains(t, args, "/work/abc:/pdf")
		assert.Equal(t, "report.pdf", args[len(args)-2])
		assert.Equal(t, "report.html", args[len(args)-1])
	})

	t.Run("dpi is accepted but never forwarded", func(t *testing.T) {
		args := c.buildArgs("/work/abc", "report.pdf", "report.html", Options{DPI: 300})
		joined := strings.Join(args, " ")
		assert.NotContains(t, joined, "dpi")
		assert.NotContains(t, joined, "300")
	})
}
