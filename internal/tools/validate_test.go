package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tavlaapp/tavla/internal/llm"
)

func TestValidateArgsAllGood(t *testing.T) {
	schema := llm.ObjReq(map[string]any{
		"name":  llm.Prop("string", ""),
		"count": llm.Prop("integer", ""),
		"force": llm.Prop("boolean", ""),
	}, "name")

	violations := validateArgs(schema, map[string]any{
		"name":  "x",
		"count": float64(3),
		"force": true,
	})
	if len(violations) != 0 {
		t.Errorf("expected no violations, got %v", violations)
	}
}

func TestValidateArgsMissingRequired(t *testing.T) {
	schema := llm.ObjReq(map[string]any{
		"a": llm.Prop("string", ""),
		"b": llm.Prop("string", ""),
	}, "a", "b")

	violations := validateArgs(schema, map[string]any{})
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", violations)
	}
}

func TestValidateArgsAccumulatesTypeViolations(t *testing.T) {
	schema := llm.Obj(map[string]any{
		"count": llm.Prop("integer", ""),
		"name":  llm.Prop("string", ""),
	})

	violations := validateArgs(schema, map[string]any{
		"count": "three",
		"name":  float64(1),
	})
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", violations)
	}
	// Sorted by field name for a stable report.
	if !strings.Contains(violations[0], `"count"`) || !strings.Contains(violations[1], `"name"`) {
		t.Errorf("unexpected order: %v", violations)
	}
}

func TestValidateArgsIgnoresUndeclaredAndNull(t *testing.T) {
	schema := llm.Obj(map[string]any{
		"name": llm.Prop("string", ""),
	})

	violations := validateArgs(schema, map[string]any{
		"name":   nil,
		"extras": 12,
	})
	if len(violations) != 0 {
		t.Errorf("expected no violations, got %v", violations)
	}
}

func TestValidateArgsJSONRoundTrippedSchema(t *testing.T) {
	schema := llm.ObjReq(map[string]any{
		"id": llm.Prop("integer", ""),
	}, "id")

	// Simulate a schema that came back over the wire.
	b, _ := json.Marshal(schema)
	var wire map[string]any
	json.Unmarshal(b, &wire)

	violations := validateArgs(wire, map[string]any{})
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %v", violations)
	}

	violations = validateArgs(wire, map[string]any{"id": json.Number("7")})
	if len(violations) != 0 {
		t.Errorf("expected json.Number to satisfy integer, got %v", violations)
	}
}

func TestValidateArgsNumberTypes(t *testing.T) {
	schema := llm.Obj(map[string]any{"n": llm.Prop("number", "")})

	for _, v := range []any{float64(1.5), int64(2), 3, json.Number("4")} {
		if violations := validateArgs(schema, map[string]any{"n": v}); len(violations) != 0 {
			t.Errorf("value %T rejected: %v", v, violations)
		}
	}
	if violations := validateArgs(schema, map[string]any{"n": "5"}); len(violations) != 1 {
		t.Errorf("expected string rejected for number, got %v", violations)
	}
}

func TestValidateArgsIntegerRejectsFractions(t *testing.T) {
	schema := llm.Obj(map[string]any{"id": llm.Prop("integer", "")})

	for _, v := range []any{float64(7), float64(7.0), int64(7), 7, json.Number("7")} {
		if violations := validateArgs(schema, map[string]any{"id": v}); len(violations) != 0 {
			t.Errorf("integral value %v (%T) rejected: %v", v, v, violations)
		}
	}
	for _, v := range []any{float64(2.5), json.Number("2.5")} {
		if violations := validateArgs(schema, map[string]any{"id": v}); len(violations) != 1 {
			t.Errorf("fractional value %v (%T) should be a violation, got %v", v, v, violations)
		}
	}
}
