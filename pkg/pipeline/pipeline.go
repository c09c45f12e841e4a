// Package pipeline sequences dependent generation stages: each stage
// builds a prompt from the original input plus all prior validated
// outputs, invokes the generation client, validates the response shape,
// and feeds the result forward. The first failure halts the run.
package pipeline

import (
	"github.com/stratagem-ai/stratagem/pkg/artifact"
)

// Type selects which stage sequence a run executes.
type Type string

const (
	FrameworkAnalysis3C   Type = "framework_3c"
	FrameworkAnalysis4P   Type = "framework_4p"
	FrameworkAnalysisPEST Type = "framework_pest"
	ConceptGeneration     Type = "concept_generation"
	ConceptRefinement     Type = "concept_refinement"
	RequirementGeneration Type = "requirement_generation"
	RequirementRefinement Type = "requirement_refinement"
)

// Input carries the raw form input for one run. Refinement pipelines
// additionally carry the artifact being refined and free-form
// constraints (budget, timeline, team size, and so on).
type Input struct {
	Fields        map[string]string
	PriorArtifact *artifact.Artifact
	Constraints   map[string]string
}

// Field returns a named form field, or empty when absent.
func (in Input) Field(name string) string {
	return in.Fields[name]
}

// Outputs holds the validated output of each completed stage, keyed by
// stage id. Later stages never see raw, unvalidated service text.
type Outputs map[string]map[string]any
