package assets

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps asset extensions to content types for serving. Unknown
// extensions fall back to a generic binary type rather than failing.
var mimeTypes = map[string]string{
	".css":   "text/css",
	".js":    "application/javascript",
	".mjs":   "application/javascript",
	".html":  "text/html",
	".htm":   "text/html",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".bmp":   "image/bmp",
	".webp":  "image/webp",
	".json":  "application/json",
	".txt":   "text/plain",
}

// MIMEType returns the content type to serve an asset with
func MIMEType(filename string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mt
	}
	return "application/octet-stream"
}
