package schema

import (
	"errors"
	"strings"
	"testing"
)

var analysisSchema = Schema{
	"key_points":    {Kind: StringArray},
	"opportunities": {Kind: StringArray},
	"challenges":    {Kind: StringArray},
}

func TestValidateAccepts(t *testing.T) {
	value := map[string]any{
		"key_points":    []any{"a", "b"},
		"opportunities": []any{"c"},
		"challenges":    []any{},
		"extra":         "ignored",
	}
	if err := analysisSchema.Validate(value); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateReportsMissingKeys(t *testing.T) {
	value := map[string]any{
		"opportunities": []any{"c"},
	}
	err := analysisSchema.Validate(value)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(vErr.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %d: %v", len(vErr.Problems), vErr.Problems)
	}
	if !strings.Contains(err.Error(), "key_points") || !strings.Contains(err.Error(), "challenges") {
		t.Fatalf("expected missing keys named, got %q", err.Error())
	}
}

func TestValidateRejectsWrongKind(t *testing.T) {
	value := map[string]any{
		"key_points":    "not an array",
		"opportunities": []any{"c"},
		"challenges":    []any{"d"},
	}
	if err := analysisSchema.Validate(value); err == nil {
		t.Fatal("expected validation error for string where array expected")
	}
}

func TestValidateRejectsNonStringElements(t *testing.T) {
	value := map[string]any{
		"key_points":    []any{"a", 42.0},
		"opportunities": []any{},
		"challenges":    []any{},
	}
	if err := analysisSchema.Validate(value); err == nil {
		t.Fatal("expected validation error for numeric array element")
	}
}

func TestValidateNonEmpty(t *testing.T) {
	s := Schema{
		"title":    {Kind: String, NonEmpty: true},
		"features": {Kind: StringArray, NonEmpty: true},
	}

	if err := s.Validate(map[string]any{"title": "  ", "features": []any{"f"}}); err == nil {
		t.Fatal("expected error for blank title")
	}
	if err := s.Validate(map[string]any{"title": "t", "features": []any{}}); err == nil {
		t.Fatal("expected error for empty features")
	}
	if err := s.Validate(map[string]any{"title": "t", "features": []any{"f"}}); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateNestedObject(t *testing.T) {
	s := Schema{
		"meta": {Kind: Object, Fields: Schema{
			"name": {Kind: String},
		}},
	}

	if err := s.Validate(map[string]any{"meta": map[string]any{"name": "x"}}); err != nil {
		t.Fatalf("validate: %v", err)
	}
	err := s.Validate(map[string]any{"meta": map[string]any{}})
	if err == nil || !strings.Contains(err.Error(), "meta.name") {
		t.Fatalf("expected nested path in error, got %v", err)
	}
}

func TestValidateObjectArray(t *testing.T) {
	s := Schema{
		"concepts": {Kind: ObjectArray, Fields: Schema{
			"title": {Kind: String},
		}},
	}

	value := map[string]any{
		"concepts": []any{
			map[string]any{"title": "a"},
			map[string]any{},
		},
	}
	err := s.Validate(value)
	if err == nil || !strings.Contains(err.Error(), "concepts[1].title") {
		t.Fatalf("expected indexed path in error, got %v", err)
	}
}
