package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies a pipeline step for failure reporting.
type Stage string

const (
	StageInput      Stage = "input"
	StageNormalize  Stage = "normalize"
	StageGuard      Stage = "duration-guard"
	StageTranscribe Stage = "transcribe"
	StageAnswer     Stage = "answer"
	StageSynthesize Stage = "synthesize"
)

// ErrInputNotFound means the source audio path does not exist. It is checked
// before any working area is created.
var ErrInputNotFound = errors.New("input audio not found")

// Error is the single failure surfaced by Process: the stage that failed and
// the underlying cause, chained. Raw backend errors never escape without it.
type Error struct {
	Stage Stage
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline stage %s failed: %v", e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewStageError tags cause with the stage that produced it.
func NewStageError(stage Stage, cause error) *Error {
	return &Error{Stage: stage, Cause: cause}
}
