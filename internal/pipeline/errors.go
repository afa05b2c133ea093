package pipeline

import "fmt"

// OutputNotFoundError means the converter produced no markup file
// matching the input's base name
type OutputNotFoundError struct {
	Stem string
	Dir  string
}

func (e *OutputNotFoundError) Error() string {
	return fmt.Sprintf("no markup output matching %q found in %s", e.Stem, e.Dir)
}

// ValidationError represents input validation failure
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s '%s': %s", e.Field, e.Value, e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}
