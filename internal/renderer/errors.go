package renderer

import "fmt"

// Stage names the render state a failure occurred in
type Stage string

const (
	StageLaunch  Stage = "launch"
	StageLoad    Stage = "load"
	StageMeasure Stage = "measure"
	StageEmit    Stage = "emit"
)

// RenderError wraps a failure from the headless rendering flow
type RenderError struct {
	Stage Stage
	Err   error
	Hint  string
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("render failed during %s", e.Stage)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHint: %s", e.Hint)
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
