package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Every prompt is self-contained: the service keeps no conversational
// memory, so each stage re-supplies the original input and the prior
// stages' validated outputs.

const jsonOnlyInstruction = `出力は上記のキーを持つ単一のJSONオブジェクトのみを返してください。
JSON以外の文章、説明、マークダウンの修飾(` + "```" + `など)は一切含めないでください。
応答は { で始まり } で終わる必要があります。`

const initialAnalysisTemplate = `あなたは経営戦略コンサルタントです。%sの観点で、以下の入力に対する初期分析を行ってください。

## 入力
%s
## 出力形式
- "key_points": 文字列配列(入力から読み取れる重要なポイント)
- "opportunities": 文字列配列(見込まれる機会)
- "challenges": 文字列配列(想定される課題)

%s`

const deepAnalysisTemplate = `あなたは経営戦略コンサルタントです。%sの初期分析結果を踏まえ、より深い分析を行ってください。

## 入力
%s
## 初期分析の結果
%s

## 出力形式
%s- "recommendations": 文字列配列(分析から導かれる推奨事項)

%s`

const finalRecommendationsTemplate = `あなたは経営戦略コンサルタントです。%sの初期分析と詳細分析の結果を統合し、最終提案をまとめてください。

## 初期分析の結果
%s

## 詳細分析の結果
%s

## 出力形式
- "strategic_moves": 文字列配列(戦略的打ち手)
- "action_items": 文字列配列(具体的なアクションアイテム)
- "risk_factors": 文字列配列(リスク要因)

%s`

const summarizeTemplate = `あなたは新規事業開発の専門家です。以下の複数の分析結果を横断的に要約してください。

## 分析結果
%s

## 出力形式
- "key_points": 文字列配列(分析全体から読み取れる重要なポイント)
- "opportunities": 文字列配列(事業機会)
- "challenges": 文字列配列(課題)

%s`

const correlateTemplate = `あなたは新規事業開発の専門家です。以下の要約をもとに、分析間の相関関係を抽出してください。

## 分析サマリー
%s

## 出力形式
- "insights": 文字列配列(フレームワークを横断して見えるインサイト)
- "opportunities": 文字列配列(組み合わせから生まれる機会)
- "risks": 文字列配列(考慮すべきリスク)

%s`

const proposeTemplate = `あなたは新規事業開発の専門家です。以下の要約と相関分析をもとに、プロダクトコンセプト案を1〜3件提案してください。

## 分析サマリー
%s

## 相関分析
%s

## 出力形式
- "concepts": オブジェクト配列。各要素は次のキーを持つこと:
  - "title": 文字列(コンセプト名)
  - "value_proposition": 文字列(提供価値)
  - "target_customer": 文字列(ターゲット顧客)
  - "advantage": 文字列(競合優位性)

%s`

const refineConceptTemplate = `あなたは新規事業開発の専門家です。以下の既存コンセプトを、制約条件を満たすように改善してください。

## 既存コンセプト
%s

## 制約条件
%s

## 出力形式
- "title": 文字列(コンセプト名)
- "value_proposition": 文字列(提供価値)
- "target_customer": 文字列(ターゲット顧客)
- "advantage": 文字列(競合優位性)

改善後のコンセプト全体を返すこと。部分的な差分は返さないでください。
%s`

const generateRequirementsTemplate = `あなたはプロダクトマネージャーです。以下のコンセプトをもとに、プロダクト要件定義書を作成してください。

## コンセプト
%s

## 制約条件
%s

## 出力形式
- "title": 文字列(プロダクト名。必須)
- "overview": 文字列(プロダクト概要)
- "target_users": 文字列配列(想定ユーザー)
- "features": 文字列配列(主要機能。必須、1件以上)
- "non_functional": 文字列配列(非機能要件)
- "milestones": 文字列配列(マイルストーン)

%s`

const refineRequirementsTemplate = `あなたはプロダクトマネージャーです。以下の既存の要件定義書を、制約条件を満たすように改訂してください。

## 既存の要件定義書
%s

## 制約条件
%s

## 出力形式
- "title": 文字列(プロダクト名。必須)
- "overview": 文字列(プロダクト概要)
- "target_users": 文字列配列(想定ユーザー)
- "features": 文字列配列(主要機能。必須、1件以上)
- "non_functional": 文字列配列(非機能要件)
- "milestones": 文字列配列(マイルストーン)

改訂後の要件定義書全体を返すこと。部分的な差分は返さないでください。
%s`

func initialPrompt(fw Framework) func(Input, Outputs) string {
	return func(in Input, _ Outputs) string {
		return fmt.Sprintf(initialAnalysisTemplate, fw.Name, dimensionBlock(fw, in), jsonOnlyInstruction)
	}
}

func deepPrompt(fw Framework) func(Input, Outputs) string {
	return func(in Input, prior Outputs) string {
		var keys strings.Builder
		for _, dim := range fw.Dimensions {
			fmt.Fprintf(&keys, "- %q: 文字列配列(%sに関するインサイト)\n", dim.Key+"_insights", dim.Label)
		}
		return fmt.Sprintf(deepAnalysisTemplate,
			fw.Name, dimensionBlock(fw, in), jsonBlock(prior[stageInitial]), keys.String(), jsonOnlyInstruction)
	}
}

func finalPrompt(fw Framework) func(Input, Outputs) string {
	return func(_ Input, prior Outputs) string {
		return fmt.Sprintf(finalRecommendationsTemplate,
			fw.Name, jsonBlock(prior[stageInitial]), jsonBlock(prior[stageDeep]), jsonOnlyInstruction)
	}
}

func summarizePrompt(in Input, _ Outputs) string {
	return fmt.Sprintf(summarizeTemplate, in.Field("analyses"), jsonOnlyInstruction)
}

func correlatePrompt(_ Input, prior Outputs) string {
	return fmt.Sprintf(correlateTemplate, jsonBlock(prior[stageSummarize]), jsonOnlyInstruction)
}

func proposePrompt(_ Input, prior Outputs) string {
	return fmt.Sprintf(proposeTemplate,
		jsonBlock(prior[stageSummarize]), jsonBlock(prior[stageCorrelate]), jsonOnlyInstruction)
}

func refineConceptPrompt(in Input, _ Outputs) string {
	return fmt.Sprintf(refineConceptTemplate,
		priorArtifactBlock(in), constraintsBlock(in), jsonOnlyInstruction)
}

func generateRequirementsPrompt(in Input, _ Outputs) string {
	return fmt.Sprintf(generateRequirementsTemplate,
		priorArtifactBlock(in), constraintsBlock(in), jsonOnlyInstruction)
}

func refineRequirementsPrompt(in Input, _ Outputs) string {
	return fmt.Sprintf(refineRequirementsTemplate,
		priorArtifactBlock(in), constraintsBlock(in), jsonOnlyInstruction)
}

// dimensionBlock renders one titled block per framework dimension from
// the raw form input.
func dimensionBlock(fw Framework, in Input) string {
	var sb strings.Builder
	for _, dim := range fw.Dimensions {
		fmt.Fprintf(&sb, "### %s (%s)\n%s\n\n", dim.Label, dim.Key, in.Field(dim.Key))
	}
	return sb.String()
}

// priorArtifactBlock renders the artifact being refined as indented
// JSON so the stage carries its full context.
func priorArtifactBlock(in Input) string {
	if in.PriorArtifact == nil {
		return "(なし)"
	}
	return jsonBlock(in.PriorArtifact.Sections)
}

func constraintsBlock(in Input) string {
	if len(in.Constraints) == 0 {
		return "特になし"
	}
	keys := make([]string, 0, len(in.Constraints))
	for key := range in.Constraints {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&sb, "- %s: %s\n", key, in.Constraints[key])
	}
	return sb.String()
}

func jsonBlock(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
