package storage

import "fmt"

// StorageError represents a storage-related failure
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	msg := fmt.Sprintf("storage error during %s", e.Operation)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a requested document is not on disk,
// typically because the sweeper already reclaimed it
type NotFoundError struct {
	Filename string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.Filename)
}

// FilenameValidationError represents a rejected filename at the serving boundary
type FilenameValidationError struct {
	Filename string
	Reason   string
}

func (e *FilenameValidationError) Error() string {
	return fmt.Sprintf("filename validation failed for %q: %s", e.Filename, e.Reason)
}
