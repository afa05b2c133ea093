package converter

import "strings"

// benignDiagnostics are stderr markers the tool emits during normal
// operation: warnings, progress lines, docker platform and image-pull
// notices and fontforge font-table chatter. Lines carrying one of these
// are logged and ignored; anything else on stderr is a hard failure.
var benignDiagnostics = []string{
	"WARNING:",
	"Processing",
	"Preprocessing",
	"Working:",
	"requested image's platform",
	"The glyph named",
	"Lookup subtable contains unused glyph",
	"This font contains",
	// docker writes its first-run image pull to stderr
	"Unable to find image",
	"Pulling from",
	"Pulling fs layer",
	"Waiting",
	"Verifying Checksum",
	"Download complete",
	"Pull complete",
	"Digest: sha256:",
	"Status: Downloaded newer image",
	"Status: Image is up to date",
}

// classifyDiagnostics splits the tool's diagnostic stream into benign
// warnings and fatal lines
func classifyDiagnostics(stderr string) (warnings, fatal []string) {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isBenignDiagnostic(line) {
			warnings = append(warnings, line)
		} else {
			fatal = append(fatal, line)
		}
	}
	return warnings, fatal
}

func isBenignDiagnostic(line string) bool {
	for _, marker := range benignDiagnostics {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
