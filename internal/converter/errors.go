package converter

import "fmt"

// ConversionError represents an external-tool failure with detailed info
type ConversionError struct {
	OriginalError error
	Stderr        string
	Path          string
	Hint          string
}

func (e *ConversionError) Error() string {
	msg := "pdf2htmlEX conversion failed"
	if e.OriginalError != nil {
		msg += fmt.Sprintf(": %v", e.OriginalError)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (file: %s)", e.Path)
	}
	if e.Stderr != "" {
		// Truncate stderr if too long
		stderr := e.Stderr
		if len(stderr) > 500 {
			stderr = stderr[:500] + "..."
		}
		msg += fmt.Sprintf("\nstderr: %s", stderr)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHint: %s", e.Hint)
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.OriginalError
}

// BinaryNotFoundError represents a missing container runtime binary
type BinaryNotFoundError struct {
	Binary string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("container runtime %q not found in PATH", e.Binary)
}
