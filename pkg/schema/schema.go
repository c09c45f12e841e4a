// Package schema defines the structural contract a stage's generated
// output must satisfy before it may cross a stage boundary: required
// keys, each with an expected value kind. Extra keys are ignored.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the expected shape of a field value.
type Kind int

const (
	String Kind = iota
	StringArray
	Object
	ObjectArray
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case StringArray:
		return "string array"
	case Object:
		return "object"
	case ObjectArray:
		return "object array"
	default:
		return "unknown"
	}
}

// Field describes one required key. Fields is consulted for Object and
// ObjectArray kinds. NonEmpty requires a non-blank string or a
// non-empty array.
type Field struct {
	Kind     Kind
	NonEmpty bool
	Fields   Schema
}

// Schema maps required key names to their field contracts.
type Schema map[string]Field

// ValidationError reports every structural problem found in a value.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Problems, "; "))
}

// Validate checks that every required key is present with a correctly
// kinded value. All problems are collected before returning.
func (s Schema) Validate(value map[string]any) error {
	problems := validateObject(s, value, "")
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateObject(s Schema, value map[string]any, path string) []string {
	var problems []string

	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field := s[key]
		keyPath := key
		if path != "" {
			keyPath = path + "." + key
		}

		raw, ok := value[key]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing key %q", keyPath))
			continue
		}
		problems = append(problems, validateField(field, raw, keyPath)...)
	}

	return problems
}

func validateField(field Field, raw any, path string) []string {
	switch field.Kind {
	case String:
		str, ok := raw.(string)
		if !ok {
			return []string{fmt.Sprintf("key %q: expected string, got %T", path, raw)}
		}
		if field.NonEmpty && strings.TrimSpace(str) == "" {
			return []string{fmt.Sprintf("key %q: string must not be empty", path)}
		}
	case StringArray:
		arr, ok := raw.([]any)
		if !ok {
			return []string{fmt.Sprintf("key %q: expected string array, got %T", path, raw)}
		}
		if field.NonEmpty && len(arr) == 0 {
			return []string{fmt.Sprintf("key %q: array must not be empty", path)}
		}
		for i, item := range arr {
			if _, ok := item.(string); !ok {
				return []string{fmt.Sprintf("key %q: element %d is %T, want string", path, i, item)}
			}
		}
	case Object:
		obj, ok := raw.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("key %q: expected object, got %T", path, raw)}
		}
		return validateObject(field.Fields, obj, path)
	case ObjectArray:
		arr, ok := raw.([]any)
		if !ok {
			return []string{fmt.Sprintf("key %q: expected object array, got %T", path, raw)}
		}
		if field.NonEmpty && len(arr) == 0 {
			return []string{fmt.Sprintf("key %q: array must not be empty", path)}
		}
		var problems []string
		for i, item := range arr {
			obj, ok := item.(map[string]any)
			if !ok {
				problems = append(problems, fmt.Sprintf("key %q: element %d is %T, want object", path, i, item))
				continue
			}
			problems = append(problems, validateObject(field.Fields, obj, fmt.Sprintf("%s[%d]", path, i))...)
		}
		return problems
	default:
		return []string{fmt.Sprintf("key %q: unknown kind", path)}
	}
	return nil
}
