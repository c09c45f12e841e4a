package pipeline

import "fmt"

// DefinitionError reports a malformed stage list. This is a programming
// error, not a runtime condition, and fails the run before any stage
// starts.
type DefinitionError struct {
	Type   Type
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid pipeline definition %s: %s", e.Type, e.Reason)
}

// EmptyResultError reports a stage that must produce at least one
// candidate but returned an empty list.
type EmptyResultError struct {
	StageID string
	Field   string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("stage %s returned no %s", e.StageID, e.Field)
}

// StageError reports the stage at which a run halted, together with the
// stages that completed before it. Completed is always a strict prefix
// of the full stage list.
type StageError struct {
	StageID   string
	Title     string
	Completed []StageRun
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s) failed: %v", e.StageID, e.Title, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
