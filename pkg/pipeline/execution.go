package pipeline

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Execution owns the stage runs of one pipeline invocation. The runner
// goroutine is the only writer; concurrent readers observe progress
// through Snapshot. Executions live only for the duration of one run;
// the only persisted result is the final artifact.
type Execution struct {
	ID   string
	Type Type

	defs []StageDefinition

	mu   sync.Mutex
	runs []StageRun
}

func newExecution(typ Type, defs []StageDefinition) *Execution {
	runs := make([]StageRun, len(defs))
	for i, def := range defs {
		runs[i] = StageRun{
			StageID:     def.ID,
			Title:       def.Title,
			Description: def.Description,
			Status:      StatusWaiting,
		}
	}
	return &Execution{
		ID:   uuid.NewString(),
		Type: typ,
		defs: defs,
		runs: runs,
	}
}

// Snapshot returns a copy of the current per-stage state, including
// stages still waiting. Output maps are cloned so pollers never alias
// the runner's state.
func (e *Execution) Snapshot() []StageRun {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]StageRun, len(e.runs))
	for i, run := range e.runs {
		out[i] = run
		if run.Output != nil {
			out[i].Output = maps.Clone(run.Output)
		}
	}
	return out
}

func (e *Execution) start(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs[i].Status = StatusProcessing
	e.runs[i].StartedAt = time.Now().UTC()
}

func (e *Execution) complete(i int, output map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs[i].Status = StatusCompleted
	e.runs[i].Output = output
	e.runs[i].FinishedAt = time.Now().UTC()
}

func (e *Execution) fail(i int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs[i].Status = StatusError
	e.runs[i].Err = err.Error()
	e.runs[i].FinishedAt = time.Now().UTC()
}

// completedRuns returns copies of the runs that reached completed, in
// stage order.
func (e *Execution) completedRuns() []StageRun {
	snapshot := e.Snapshot()
	out := make([]StageRun, 0, len(snapshot))
	for _, run := range snapshot {
		if run.Status == StatusCompleted {
			out = append(out, run)
		}
	}
	return out
}
