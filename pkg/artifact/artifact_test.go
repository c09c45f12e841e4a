package artifact

import (
	"path/filepath"
	"testing"
)

func analysisSections() []Section {
	return []Section{
		{
			Key:   "initial_analysis",
			Title: "初期分析",
			Order: []string{"key_points", "opportunities", "challenges"},
			Body: map[string]any{
				"key_points":    []any{"要点1", "要点2"},
				"opportunities": []any{"機会1"},
				"challenges":    []any{"課題1"},
			},
		},
		{
			Key:   "deep_analysis",
			Title: "詳細分析",
			Order: []string{"company_insights", "customer_insights", "competitor_insights", "recommendations"},
			Body: map[string]any{
				"company_insights":    []any{"自社インサイト"},
				"customer_insights":   []any{"顧客インサイト"},
				"competitor_insights": []any{"競合インサイト"},
				"recommendations":     []any{"推奨1"},
			},
		},
		{
			Key:   "final_recommendations",
			Title: "最終提案",
			Order: []string{"strategic_moves", "action_items", "risk_factors"},
			Body: map[string]any{
				"strategic_moves": []any{"打ち手1"},
				"action_items":    []any{"アクション1"},
				"risk_factors":    []any{"リスク1"},
			},
		},
	}
}

func TestHashStableAcrossInstances(t *testing.T) {
	a := New(KindAnalysis, analysisSections())
	b := New(KindAnalysis, analysisSections())

	if a.Hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if a.Hash != b.Hash {
		t.Fatalf("same sections must hash identically: %s vs %s", a.Hash, b.Hash)
	}
	if a.ID == b.ID {
		t.Fatal("distinct artifacts must have distinct ids")
	}
}

func TestHashChangesWithContent(t *testing.T) {
	a := New(KindAnalysis, analysisSections())

	sections := analysisSections()
	sections[0].Body["key_points"] = []any{"different"}
	b := New(KindAnalysis, sections)

	if a.Hash == b.Hash {
		t.Fatal("different content must hash differently")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	a := New(KindAnalysis, analysisSections())
	path := filepath.Join(t.TempDir(), "analysis.json")

	if err := a.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Kind != a.Kind || loaded.Hash != a.Hash || loaded.ID != a.ID {
		t.Fatalf("round trip changed artifact: %+v", loaded)
	}
	if Markdown(loaded) != Markdown(a) {
		t.Fatal("round trip changed rendering")
	}
}

func TestLoadRejectsMissingKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := writeFile(path, `{"sections":[]}`); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for artifact without kind")
	}
}
