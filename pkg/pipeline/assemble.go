package pipeline

import (
	"fmt"

	"github.com/stratagem-ai/stratagem/pkg/artifact"
)

// assemble merges the validated stage outputs of a finished run into
// the pipeline's target artifact. It is only called when every stage
// completed.
func assemble(typ Type, out Outputs) (*artifact.Artifact, error) {
	switch typ {
	case FrameworkAnalysis3C, FrameworkAnalysis4P, FrameworkAnalysisPEST:
		fw := frameworks[typ]
		deepOrder := make([]string, 0, len(fw.Dimensions)+1)
		for _, dim := range fw.Dimensions {
			deepOrder = append(deepOrder, dim.Key+"_insights")
		}
		deepOrder = append(deepOrder, "recommendations")

		return artifact.New(artifact.KindAnalysis, []artifact.Section{
			{
				Key:   "initial_analysis",
				Title: "初期分析",
				Order: []string{"key_points", "opportunities", "challenges"},
				Body:  out[stageInitial],
			},
			{
				Key:   "deep_analysis",
				Title: "詳細分析",
				Order: deepOrder,
				Body:  out[stageDeep],
			},
			{
				Key:   "final_recommendations",
				Title: "最終提案",
				Order: []string{"strategic_moves", "action_items", "risk_factors"},
				Body:  out[stageFinal],
			},
		}), nil

	case ConceptGeneration:
		return artifact.New(artifact.KindConcept, []artifact.Section{
			{
				Key:   "summary",
				Title: "分析サマリー",
				Order: []string{"key_points", "opportunities", "challenges"},
				Body:  out[stageSummarize],
			},
			{
				Key:   "correlation",
				Title: "相関分析",
				Order: []string{"insights", "opportunities", "risks"},
				Body:  out[stageCorrelate],
			},
			{
				Key:   "concepts",
				Title: "コンセプト案",
				Order: []string{"concepts"},
				Body:  out[stagePropose],
			},
		}), nil

	case ConceptRefinement:
		return artifact.New(artifact.KindConcept, []artifact.Section{
			{
				Key:   "concept",
				Title: "コンセプト",
				Order: []string{"title", "value_proposition", "target_customer", "advantage"},
				Body:  out[stageRefine],
			},
		}), nil

	case RequirementGeneration, RequirementRefinement:
		stageID := stageGenerate
		if typ == RequirementRefinement {
			stageID = stageRefine
		}
		return artifact.New(artifact.KindRequirements, []artifact.Section{
			{
				Key:   "requirements",
				Title: "要件定義",
				Order: []string{"title", "overview", "target_users", "features", "non_functional", "milestones"},
				Body:  out[stageID],
			},
		}), nil

	default:
		return nil, fmt.Errorf("unknown pipeline type %q", typ)
	}
}
