package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stratagem-ai/stratagem/pkg/adapter"
	"github.com/stratagem-ai/stratagem/pkg/artifact"
	"github.com/stratagem-ai/stratagem/pkg/llm"
	"github.com/stratagem-ai/stratagem/pkg/schema"
)

const (
	initial3C = `{"key_points":["国内市場でのブランド認知が高い"],"opportunities":["海外展開の余地"],"challenges":["価格競争の激化"]}`
	deep3C    = `{"company_insights":["自社の強みは技術力"],"customer_insights":["顧客は利便性を重視"],"competitor_insights":["競合は低価格戦略"],"recommendations":["プレミアム路線を維持"]}`
	final3C   = `{"strategic_moves":["高付加価値市場に集中"],"action_items":["四半期内にパイロット開始"],"risk_factors":["為替変動"]}`

	summarizeJSON = `{"key_points":["分析共通の強み"],"opportunities":["未開拓セグメント"],"challenges":["リソース不足"]}`
	correlateJSON = `{"insights":["強みと市場機会が重なる"],"opportunities":["サブスク展開"],"risks":["参入障壁の低さ"]}`
	proposeJSON   = `{"concepts":[{"title":"スマート在庫管理","value_proposition":"発注作業を自動化","target_customer":"中小の小売店","advantage":"既存POSとの連携"}]}`
)

func newTestRunner(t *testing.T, mock *adapter.MockAdapter) *Runner {
	t.Helper()
	client, err := llm.NewClient(mock, "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return NewRunner(client)
}

func threeCInput() Input {
	return Input{Fields: map[string]string{
		"company":    "A",
		"customer":   "B",
		"competitor": "C",
	}}
}

func TestRunFrameworkAnalysisSuccess(t *testing.T) {
	mock := adapter.NewMockAdapter().Enqueue(initial3C).Enqueue(deep3C).Enqueue(final3C)
	runner := newTestRunner(t, mock)

	a, err := runner.Run(context.Background(), FrameworkAnalysis3C, threeCInput())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if a.Kind != artifact.KindAnalysis {
		t.Fatalf("expected analysis artifact, got %s", a.Kind)
	}
	wantKeys := []string{"initial_analysis", "deep_analysis", "final_recommendations"}
	if len(a.Sections) != len(wantKeys) {
		t.Fatalf("expected %d sections, got %d", len(wantKeys), len(a.Sections))
	}
	for i, key := range wantKeys {
		if a.Sections[i].Key != key {
			t.Fatalf("section %d: expected key %s, got %s", i, key, a.Sections[i].Key)
		}
	}
	if len(mock.Prompts()) != 3 {
		t.Fatalf("expected 3 generation calls, got %d", len(mock.Prompts()))
	}

	md := artifact.Markdown(a)
	initial := strings.Index(md, "## 初期分析")
	deep := strings.Index(md, "## 詳細分析")
	final := strings.Index(md, "## 最終提案")
	if initial < 0 || deep < 0 || final < 0 || !(initial < deep && deep < final) {
		t.Fatalf("rendered document headings missing or out of order:\n%s", md)
	}
}

func TestRunFeedsValidatedOutputsForward(t *testing.T) {
	mock := adapter.NewMockAdapter().Enqueue(initial3C).Enqueue(deep3C).Enqueue(final3C)
	runner := newTestRunner(t, mock)

	if _, err := runner.Run(context.Background(), FrameworkAnalysis3C, threeCInput()); err != nil {
		t.Fatalf("run: %v", err)
	}

	prompts := mock.Prompts()
	if strings.Contains(prompts[0], "国内市場でのブランド認知が高い") {
		t.Fatal("first prompt must not contain later stage output")
	}
	if !strings.Contains(prompts[1], "国内市場でのブランド認知が高い") {
		t.Fatal("deep prompt must carry the validated initial output")
	}
	if !strings.Contains(prompts[2], "自社の強みは技術力") {
		t.Fatal("final prompt must carry the validated deep output")
	}
}

func TestRunHaltsOnTransportError(t *testing.T) {
	mock := adapter.NewMockAdapter().
		Enqueue(initial3C).
		EnqueueError(&adapter.AdapterError{Temporary: true, Err: fmt.Errorf("connection refused")})
	runner := newTestRunner(t, mock)

	exec, err := runner.NewExecution(FrameworkAnalysis3C)
	if err != nil {
		t.Fatalf("new execution: %v", err)
	}

	a, err := runner.Execute(context.Background(), exec, threeCInput())
	if a != nil {
		t.Fatal("expected no artifact on failure")
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected *StageError, got %v", err)
	}
	if stageErr.StageID != "deep" {
		t.Fatalf("expected failure at deep, got %s", stageErr.StageID)
	}
	if len(stageErr.Completed) != 1 || stageErr.Completed[0].StageID != "initial" {
		t.Fatalf("expected completed prefix [initial], got %v", stageErr.Completed)
	}
	var transport *llm.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport error cause, got %v", err)
	}

	// The third stage never ran: no prompt was built for it.
	if len(mock.Prompts()) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(mock.Prompts()))
	}

	snapshot := exec.Snapshot()
	if snapshot[0].Status != StatusCompleted || snapshot[1].Status != StatusError || snapshot[2].Status != StatusWaiting {
		t.Fatalf("unexpected stage statuses: %s %s %s", snapshot[0].Status, snapshot[1].Status, snapshot[2].Status)
	}
	if snapshot[1].Err == "" {
		t.Fatal("failed stage must carry an error message")
	}
}

func TestRunRejectsSchemaMismatch(t *testing.T) {
	// Parses as JSON, but misses key_points and challenges.
	mock := adapter.NewMockAdapter().Enqueue(`{"opportunities":["x"]}`)
	runner := newTestRunner(t, mock)

	_, err := runner.Run(context.Background(), FrameworkAnalysis3C, threeCInput())

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected *StageError, got %v", err)
	}
	if stageErr.StageID != "initial" {
		t.Fatalf("expected failure at initial, got %s", stageErr.StageID)
	}
	var vErr *schema.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected schema validation cause, got %v", err)
	}
}

func TestRunConceptGeneration(t *testing.T) {
	mock := adapter.NewMockAdapter().Enqueue(summarizeJSON).Enqueue(correlateJSON).Enqueue(proposeJSON)
	runner := newTestRunner(t, mock)

	in := Input{Fields: map[string]string{"analyses": "3C分析の結果..."}}
	a, err := runner.Run(context.Background(), ConceptGeneration, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if a.Kind != artifact.KindConcept {
		t.Fatalf("expected concept artifact, got %s", a.Kind)
	}

	section, ok := a.Section("concepts")
	if !ok {
		t.Fatal("expected concepts section")
	}
	concepts, ok := section.Body["concepts"].([]any)
	if !ok || len(concepts) != 1 {
		t.Fatalf("expected one concept candidate, got %v", section.Body["concepts"])
	}
}

func TestRunConceptGenerationEmptyCandidates(t *testing.T) {
	mock := adapter.NewMockAdapter().Enqueue(summarizeJSON).Enqueue(correlateJSON).Enqueue(`{"concepts":[]}`)
	runner := newTestRunner(t, mock)

	in := Input{Fields: map[string]string{"analyses": "分析結果"}}
	_, err := runner.Run(context.Background(), ConceptGeneration, in)

	var emptyErr *EmptyResultError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected *EmptyResultError, got %v", err)
	}
	if emptyErr.StageID != "propose" {
		t.Fatalf("expected failure at propose, got %s", emptyErr.StageID)
	}
}

func TestRunConceptRefinement(t *testing.T) {
	prior := artifact.New(artifact.KindConcept, []artifact.Section{{
		Key:   "concept",
		Title: "コンセプト",
		Body: map[string]any{
			"title":             "既存のコンセプト名",
			"value_proposition": "v",
			"target_customer":   "t",
			"advantage":         "a",
		},
	}})

	mock := adapter.NewMockAdapter().Enqueue(
		`{"title":"改善後のコンセプト","value_proposition":"v2","target_customer":"t2","advantage":"a2"}`)
	runner := newTestRunner(t, mock)

	in := Input{
		PriorArtifact: prior,
		Constraints:   map[string]string{"budget": "500万円", "timeline": "3ヶ月"},
	}
	a, err := runner.Run(context.Background(), ConceptRefinement, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if a.Kind != artifact.KindConcept {
		t.Fatalf("expected concept artifact, got %s", a.Kind)
	}

	prompt := mock.Prompts()[0]
	if !strings.Contains(prompt, "既存のコンセプト名") {
		t.Fatal("refinement prompt must carry the prior artifact")
	}
	if !strings.Contains(prompt, "500万円") || !strings.Contains(prompt, "3ヶ月") {
		t.Fatal("refinement prompt must carry the constraints")
	}
}

func TestRunRequirementGenerationRequiresTitleAndFeatures(t *testing.T) {
	prior := artifact.New(artifact.KindConcept, []artifact.Section{{
		Key: "concept", Title: "コンセプト", Body: map[string]any{"title": "c"},
	}})

	// A complete-looking response with a blank title is a schema
	// failure, not a success.
	mock := adapter.NewMockAdapter().Enqueue(
		`{"title":"","overview":"o","target_users":["u"],"features":["f"],"non_functional":[],"milestones":[]}`)
	runner := newTestRunner(t, mock)

	_, err := runner.Run(context.Background(), RequirementGeneration, Input{PriorArtifact: prior})

	var vErr *schema.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestRunUnknownType(t *testing.T) {
	runner := newTestRunner(t, adapter.NewMockAdapter())

	_, err := runner.Run(context.Background(), Type("nope"), Input{})
	var defErr *DefinitionError
	if !errors.As(err, &defErr) {
		t.Fatalf("expected *DefinitionError, got %v", err)
	}
}

func TestValidateDefinitionsRejectsEmpty(t *testing.T) {
	err := validateDefinitions(FrameworkAnalysis3C, nil)
	var defErr *DefinitionError
	if !errors.As(err, &defErr) {
		t.Fatalf("expected *DefinitionError, got %v", err)
	}
}

func TestIndependentExecutionsDoNotShareState(t *testing.T) {
	mockA := adapter.NewMockAdapter().Enqueue(initial3C).Enqueue(deep3C).Enqueue(final3C)
	mockB := adapter.NewMockAdapter().EnqueueError(fmt.Errorf("boom"))

	runnerA := newTestRunner(t, mockA)
	runnerB := newTestRunner(t, mockB)

	done := make(chan error, 1)
	go func() {
		_, err := runnerA.Run(context.Background(), FrameworkAnalysis3C, threeCInput())
		done <- err
	}()

	if _, err := runnerB.Run(context.Background(), FrameworkAnalysis3C, threeCInput()); err == nil {
		t.Fatal("expected failing run to fail")
	}
	if err := <-done; err != nil {
		t.Fatalf("concurrent run affected by unrelated failure: %v", err)
	}
}
