package assets

import "fmt"

// PathValidationError represents a rejected asset path or filename
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return fmt.Sprintf("path validation failed for %q: %s", e.Path, e.Reason)
}

// AssetNotFoundError is returned when a requested asset is not in the catalog
type AssetNotFoundError struct {
	Filename string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset not found: %s", e.Filename)
}
