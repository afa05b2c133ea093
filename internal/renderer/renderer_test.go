package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffMode(t *testing.T) {
	t.Run("converted-document markers select native sizing", func(t *testing.T) {
		assert.Equal(t, ModeNativeSize, SniffMode(`<div id="page-container"><div class="pf w0 h0"></div></div>`))
		assert.Equal(t, ModeNativeSize, SniffMode(`<div class="pf w1">page</div>`))
	})

	t.Run("plain markup selects paper format", func(t *testing.T) {
		assert.Equal(t, ModePaperFormat, SniffMode(`<html><body><h1>report</h1></body></html>`))
	})
}

func TestBuildPDFOptions(t *testing.T) {
	t.Run("native size uses measured pixel dimensions at scale one", func(t *testing.T) {
		opts := buildPDFOptions(ModeNativeSize, Request{}, 1400, 2600)

		require.NotNil(t, opts.Width)
		require.NotNil(t, opts.Height)
		require.NotNil(t, opts.Scale)
		assert.Equal(t, "1400px", *opts.Width)
		assert.Equal(t, "2600px", *opts.Height)
		assert.Equal(t, 1.0, *opts.Scale)
		assert.Nil(t, opts.Format)
		require.NotNil(t, opts.Margin)
		assert.Equal(t, "0", *opts.Margin.Top)
	})

	t.Run("paper format defaults to A4 portrait with reduced scale", func(t *testing.T) {
		opts := buildPDFOptions(ModePaperFormat, Request{}, 800, 600)

		require.NotNil(t, opts.Format)
		assert.Equal(t, "A4", *opts.Format)
		assert.False(t, *opts.Landscape)
		assert.Equal(t, defaultPaperScale, *opts.Scale)
		assert.Equal(t, "10mm", *opts.Margin.Top)
		assert.Nil(t, opts.Width)
	})

	t.Run("paper format honors explicit request values", func(t *testing.T) {
		req := Request{Format: "Letter", Orientation: "landscape", MarginMm: 5, Scale: 0.8}
		opts := buildPDFOptions(ModePaperFormat, req, 800, 600)

		assert.Equal(t, "Letter", *opts.Format)
		assert.True(t, *opts.Landscape)
		assert.Equal(t, 0.8, *opts.Scale)
		assert.Equal(t, "5mm", *opts.Margin.Left)
	})
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 1400, toInt(1400))
	assert.Equal(t, 2600, toInt(float64(2600)))
	assert.Equal(t, 0, toInt("nope"))
	assert.Equal(t, 0, toInt(nil))
}
