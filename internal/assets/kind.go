package assets

import (
	"path/filepath"
	"strings"
)

// Kind classifies a side-asset by what it contributes to the document
type Kind string

const (
	KindCSS    Kind = "css"
	KindScript Kind = "script"
	KindFont   Kind = "font"
	KindImage  Kind = "image"
	KindOther  Kind = "other"
)

var fontExtensions = map[string]bool{
	".woff":  true,
	".woff2": true,
	".ttf":   true,
	".otf":   true,
	".eot":   true,
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".bmp":  true,
	".webp": true,
}

// Classify maps a filename to exactly one asset kind by extension
func Classify(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".css":
		return KindCSS
	case ext == ".js" || ext == ".mjs":
		return KindScript
	case fontExtensions[ext]:
		return KindFont
	case imageExtensions[ext]:
		return KindImage
	default:
		return KindOther
	}
}
