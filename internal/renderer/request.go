package renderer

import "strings"

// Mode selects the page-sizing strategy for a render
type Mode string

const (
	// ModeAuto defers the choice to content sniffing at render time
	ModeAuto Mode = ""
	// ModeNativeSize emits custom pixel dimensions equal to the measured
	// content at 1:1 scale, preserving a converted document's layout
	ModeNativeSize Mode = "native-size"
	// ModePaperFormat emits a named paper format with margins
	ModePaperFormat Mode = "paper-format"
)

// Request describes one markup-to-document render
type Request struct {
	Markup      string  `json:"markup"`
	Filename    string  `json:"filename,omitempty"`
	Format      string  `json:"format,omitempty"`      // named paper size, default A4
	Orientation string  `json:"orientation,omitempty"` // portrait or landscape
	MarginMm    float64 `json:"marginMm,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Mode        Mode    `json:"mode,omitempty"`
}

// Result is the retrieval handle returned instead of raw document bytes
type Result struct {
	DownloadURL      string `json:"downloadUrl"`
	Filename         string `json:"filename"`
	FileSizeBytes    int64  `json:"fileSizeBytes"`
	PageCount        int    `json:"pageCount"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

// convertedDocumentMarkers are the structural hallmarks pdf2htmlEX leaves
// in its output. Their presence means the markup came from a converted
// document whose pixel-exact layout should be preserved.
var convertedDocumentMarkers = []string{
	`id="page-container"`,
	`class="pf `,
}

// SniffMode picks the sizing strategy for markup whose request did not
// specify one
func SniffMode(markup string) Mode {
	for _, marker := range convertedDocumentMarkers {
		if strings.Contains(markup, marker) {
			return ModeNativeSize
		}
	}
	return ModePaperFormat
}
