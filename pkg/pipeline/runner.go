package pipeline

import (
	"context"

	"github.com/stratagem-ai/stratagem/pkg/artifact"
	"github.com/stratagem-ai/stratagem/pkg/llm"
)

// Runner executes a pipeline's stages strictly in order against one
// generation client. Stage n+1 never starts before stage n reaches a
// terminal state, and only ever sees stage n's validated output.
//
// There is no automatic retry: any failure halts the run and is
// surfaced with the failing stage's identity. Re-running the whole
// pipeline is the caller's policy.
type Runner struct {
	client *llm.Client
	logger func(format string, args ...any)
}

// NewRunner creates a runner over the given generation client.
func NewRunner(client *llm.Client) *Runner {
	return &Runner{
		client: client,
		logger: func(string, ...any) {},
	}
}

// SetLogger installs a progress logger. Nil restores the no-op logger.
func (r *Runner) SetLogger(logger func(format string, args ...any)) {
	if logger == nil {
		logger = func(string, ...any) {}
	}
	r.logger = logger
}

// NewExecution resolves and validates the stage list for a pipeline
// type and returns an execution with every stage waiting. Use it when
// a caller wants to watch progress while Execute runs.
func (r *Runner) NewExecution(typ Type) (*Execution, error) {
	defs, err := Definitions(typ)
	if err != nil {
		return nil, &DefinitionError{Type: typ, Reason: err.Error()}
	}
	if err := validateDefinitions(typ, defs); err != nil {
		return nil, err
	}
	return newExecution(typ, defs), nil
}

// Run executes the pipeline type against the input and returns the
// assembled artifact. On failure the returned error is a *StageError
// carrying the failing stage and the completed prefix.
func (r *Runner) Run(ctx context.Context, typ Type, in Input) (*artifact.Artifact, error) {
	exec, err := r.NewExecution(typ)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, exec, in)
}

// Execute runs a fresh execution to completion. Each execution may be
// executed once; its stage runs record the outcome.
func (r *Runner) Execute(ctx context.Context, exec *Execution, in Input) (*artifact.Artifact, error) {
	outputs := make(Outputs, len(exec.defs))

	for i, def := range exec.defs {
		exec.start(i)
		r.logger("stage %s (%s) processing", def.ID, def.Title)

		prompt := def.Prompt(in, outputs)

		value, err := r.client.Invoke(ctx, prompt)
		if err != nil {
			return nil, r.failStage(exec, i, def, err)
		}

		if err := def.Output.Validate(value); err != nil {
			return nil, r.failStage(exec, i, def, err)
		}

		if def.RequireResults != "" {
			arr, _ := value[def.RequireResults].([]any)
			if len(arr) == 0 {
				return nil, r.failStage(exec, i, def, &EmptyResultError{StageID: def.ID, Field: def.RequireResults})
			}
		}

		exec.complete(i, value)
		outputs[def.ID] = value
		r.logger("stage %s (%s) completed", def.ID, def.Title)
	}

	return assemble(exec.Type, outputs)
}

func (r *Runner) failStage(exec *Execution, i int, def StageDefinition, err error) error {
	exec.fail(i, err)
	r.logger("stage %s (%s) failed: %v", def.ID, def.Title, err)
	return &StageError{
		StageID:   def.ID,
		Title:     def.Title,
		Completed: exec.completedRuns(),
		Err:       err,
	}
}
