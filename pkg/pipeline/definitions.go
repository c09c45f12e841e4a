package pipeline

import (
	"fmt"

	"github.com/stratagem-ai/stratagem/pkg/schema"
)

// Stage ids. Stable keys: progress consumers and assembled artifacts
// index by these.
const (
	stageInitial   = "initial"
	stageDeep      = "deep"
	stageFinal     = "final"
	stageSummarize = "summarize"
	stageCorrelate = "correlate"
	stagePropose   = "propose"
	stageRefine    = "refine"
	stageGenerate  = "generate"
)

// Dimension is one axis of an analysis framework.
type Dimension struct {
	Key   string
	Label string
}

// Framework describes an analysis framework and its input dimensions.
type Framework struct {
	Key        string
	Name       string
	Dimensions []Dimension
}

var frameworks = map[Type]Framework{
	FrameworkAnalysis3C: {
		Key:  "3c",
		Name: "3C分析",
		Dimensions: []Dimension{
			{Key: "company", Label: "自社"},
			{Key: "customer", Label: "顧客"},
			{Key: "competitor", Label: "競合"},
		},
	},
	FrameworkAnalysis4P: {
		Key:  "4p",
		Name: "4P分析",
		Dimensions: []Dimension{
			{Key: "product", Label: "製品"},
			{Key: "price", Label: "価格"},
			{Key: "place", Label: "流通"},
			{Key: "promotion", Label: "販促"},
		},
	},
	FrameworkAnalysisPEST: {
		Key:  "pest",
		Name: "PEST分析",
		Dimensions: []Dimension{
			{Key: "political", Label: "政治"},
			{Key: "economic", Label: "経済"},
			{Key: "social", Label: "社会"},
			{Key: "technological", Label: "技術"},
		},
	},
}

// FrameworkFor returns the framework descriptor for an analysis type.
func FrameworkFor(typ Type) (Framework, bool) {
	fw, ok := frameworks[typ]
	return fw, ok
}

// TypeForFramework maps a framework key ("3c", "4p", "pest") to its
// pipeline type.
func TypeForFramework(key string) (Type, bool) {
	for typ, fw := range frameworks {
		if fw.Key == key {
			return typ, true
		}
	}
	return "", false
}

var conceptSchema = schema.Schema{
	"title":             {Kind: schema.String, NonEmpty: true},
	"value_proposition": {Kind: schema.String},
	"target_customer":   {Kind: schema.String},
	"advantage":         {Kind: schema.String},
}

var requirementsSchema = schema.Schema{
	"title":          {Kind: schema.String, NonEmpty: true},
	"overview":       {Kind: schema.String},
	"target_users":   {Kind: schema.StringArray},
	"features":       {Kind: schema.StringArray, NonEmpty: true},
	"non_functional": {Kind: schema.StringArray},
	"milestones":     {Kind: schema.StringArray},
}

// Definitions resolves the ordered stage list for a pipeline type.
func Definitions(typ Type) ([]StageDefinition, error) {
	switch typ {
	case FrameworkAnalysis3C, FrameworkAnalysis4P, FrameworkAnalysisPEST:
		return frameworkStages(frameworks[typ]), nil
	case ConceptGeneration:
		return conceptGenerationStages(), nil
	case ConceptRefinement:
		return []StageDefinition{{
			ID:          stageRefine,
			Title:       "コンセプト改善",
			Description: "制約条件を反映したコンセプトを再生成します",
			Prompt:      refineConceptPrompt,
			Output:      conceptSchema,
		}}, nil
	case RequirementGeneration:
		return []StageDefinition{{
			ID:          stageGenerate,
			Title:       "要件定義生成",
			Description: "コンセプトから要件定義書を生成します",
			Prompt:      generateRequirementsPrompt,
			Output:      requirementsSchema,
		}}, nil
	case RequirementRefinement:
		return []StageDefinition{{
			ID:          stageRefine,
			Title:       "要件定義改訂",
			Description: "制約条件を反映した要件定義書を再生成します",
			Prompt:      refineRequirementsPrompt,
			Output:      requirementsSchema,
		}}, nil
	default:
		return nil, fmt.Errorf("unknown pipeline type %q", typ)
	}
}

func frameworkStages(fw Framework) []StageDefinition {
	deepSchema := schema.Schema{
		"recommendations": {Kind: schema.StringArray},
	}
	for _, dim := range fw.Dimensions {
		deepSchema[dim.Key+"_insights"] = schema.Field{Kind: schema.StringArray}
	}

	return []StageDefinition{
		{
			ID:          stageInitial,
			Title:       "初期分析",
			Description: fmt.Sprintf("%sの入力から要点・機会・課題を抽出します", fw.Name),
			Prompt:      initialPrompt(fw),
			Output: schema.Schema{
				"key_points":    {Kind: schema.StringArray},
				"opportunities": {Kind: schema.StringArray},
				"challenges":    {Kind: schema.StringArray},
			},
		},
		{
			ID:          stageDeep,
			Title:       "詳細分析",
			Description: "初期分析を踏まえて観点別のインサイトを導きます",
			Prompt:      deepPrompt(fw),
			Output:      deepSchema,
		},
		{
			ID:          stageFinal,
			Title:       "最終提案",
			Description: "分析結果を統合して戦略提案をまとめます",
			Prompt:      finalPrompt(fw),
			Output: schema.Schema{
				"strategic_moves": {Kind: schema.StringArray},
				"action_items":    {Kind: schema.StringArray},
				"risk_factors":    {Kind: schema.StringArray},
			},
		},
	}
}

func conceptGenerationStages() []StageDefinition {
	return []StageDefinition{
		{
			ID:          stageSummarize,
			Title:       "分析サマリー",
			Description: "複数の分析結果を横断的に要約します",
			Prompt:      summarizePrompt,
			Output: schema.Schema{
				"key_points":    {Kind: schema.StringArray},
				"opportunities": {Kind: schema.StringArray},
				"challenges":    {Kind: schema.StringArray},
			},
		},
		{
			ID:          stageCorrelate,
			Title:       "相関分析",
			Description: "分析間の相関からインサイトを抽出します",
			Prompt:      correlatePrompt,
			Output: schema.Schema{
				"insights":      {Kind: schema.StringArray},
				"opportunities": {Kind: schema.StringArray},
				"risks":         {Kind: schema.StringArray},
			},
		},
		{
			ID:          stagePropose,
			Title:       "コンセプト提案",
			Description: "プロダクトコンセプト案を生成します",
			Prompt:      proposePrompt,
			Output: schema.Schema{
				"concepts": {Kind: schema.ObjectArray, Fields: conceptSchema},
			},
			RequireResults: "concepts",
		},
	}
}

// validateDefinitions fails fast on malformed stage lists.
func validateDefinitions(typ Type, defs []StageDefinition) error {
	if len(defs) == 0 {
		return &DefinitionError{Type: typ, Reason: "stage list is empty"}
	}
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return &DefinitionError{Type: typ, Reason: "stage id is empty"}
		}
		if _, ok := seen[def.ID]; ok {
			return &DefinitionError{Type: typ, Reason: fmt.Sprintf("duplicate stage id %q", def.ID)}
		}
		seen[def.ID] = struct{}{}
		if def.Prompt == nil {
			return &DefinitionError{Type: typ, Reason: fmt.Sprintf("stage %q has no prompt builder", def.ID)}
		}
		if len(def.Output) == 0 {
			return &DefinitionError{Type: typ, Reason: fmt.Sprintf("stage %q has no output schema", def.ID)}
		}
	}
	return nil
}
