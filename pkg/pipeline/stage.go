package pipeline

import (
	"time"

	"github.com/stratagem-ai/stratagem/pkg/schema"
)

// StageDefinition declares one stage of a pipeline: how its prompt is
// built and what shape its output must have. Definitions are immutable.
type StageDefinition struct {
	ID          string
	Title       string
	Description string

	// Prompt composes a complete, self-contained prompt from the
	// original input and all prior stages' validated outputs.
	Prompt func(in Input, prior Outputs) string

	// Output is the structural contract the parsed response must satisfy.
	Output schema.Schema

	// RequireResults optionally names an array field that must hold at
	// least one element for the stage to count as completed.
	RequireResults string
}

// Status is the lifecycle state of a stage within one run.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// StageRun tracks one stage's progress within one execution.
// Completed and error are terminal.
type StageRun struct {
	StageID     string         `json:"stage_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	Output      map[string]any `json:"output,omitempty"`
	Err         string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at,omitempty"`
	FinishedAt  time.Time      `json:"finished_at,omitempty"`
}
