package pipeline

import (
	"testing"
)

func TestNewExecutionStartsWaiting(t *testing.T) {
	defs, err := Definitions(FrameworkAnalysis3C)
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	exec := newExecution(FrameworkAnalysis3C, defs)

	if exec.ID == "" {
		t.Fatal("execution must have an id")
	}
	snapshot := exec.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 stage runs, got %d", len(snapshot))
	}
	for _, run := range snapshot {
		if run.Status != StatusWaiting {
			t.Fatalf("stage %s: expected waiting, got %s", run.StageID, run.Status)
		}
		if run.Title == "" || run.Description == "" {
			t.Fatalf("stage %s: missing progress metadata", run.StageID)
		}
	}
}

func TestSnapshotDoesNotAliasRunnerState(t *testing.T) {
	defs, err := Definitions(FrameworkAnalysis3C)
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	exec := newExecution(FrameworkAnalysis3C, defs)

	exec.start(0)
	exec.complete(0, map[string]any{"key_points": []any{"a"}})

	first := exec.Snapshot()
	first[0].Output["key_points"] = "tampered"

	second := exec.Snapshot()
	if _, ok := second[0].Output["key_points"].([]any); !ok {
		t.Fatal("snapshot mutation leaked into execution state")
	}
}

func TestStageRunTimestamps(t *testing.T) {
	defs, err := Definitions(ConceptRefinement)
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	exec := newExecution(ConceptRefinement, defs)

	exec.start(0)
	if run := exec.Snapshot()[0]; run.StartedAt.IsZero() || !run.FinishedAt.IsZero() {
		t.Fatal("processing stage must have a start time only")
	}

	exec.fail(0, &EmptyResultError{StageID: "refine", Field: "concepts"})
	run := exec.Snapshot()[0]
	if run.Status != StatusError || run.FinishedAt.IsZero() || run.Err == "" {
		t.Fatalf("failed stage not recorded: %+v", run)
	}
}
