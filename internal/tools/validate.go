package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// validateArgs checks an argument bag against a tool's JSON-Schema-style
// parameter declaration: required fields must be present, and present fields
// must have a compatible primitive type. All violations are collected so the
// model gets the full picture in one pass instead of fixing one field per
// round.
func validateArgs(schema map[string]any, args map[string]any) []string {
	var violations []string

	properties, _ := schema["properties"].(map[string]any)

	for _, name := range requiredFields(schema) {
		if _, present := args[name]; !present {
			violations = append(violations, fmt.Sprintf("missing required field %q", name))
		}
	}

	// Deterministic report order for the fields that are present.
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		decl, declared := properties[name].(map[string]any)
		if !declared {
			continue // undeclared extras are ignored, models pad freely
		}
		want, _ := decl["type"].(string)
		if want == "" {
			continue
		}
		if args[name] == nil {
			continue // explicit null reads as "not provided"
		}
		if !typeMatches(want, args[name]) {
			violations = append(violations,
				fmt.Sprintf("field %q must be of type %s, got %T", name, want, args[name]))
		}
	}
	return violations
}

// requiredFields handles both the in-process schema shape ([]string) and
// schemas that round-tripped through JSON ([]any).
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		var names []string
		for _, r := range req {
			if s, ok := r.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

func typeMatches(want string, v any) bool {
	switch want {
	case "string":
		_, ok := v.(string)
		return ok
	case "integer":
		switch n := v.(type) {
		case float64:
			// JSON has no integer type; reject fractional values instead
			// of silently truncating them later.
			return n == math.Trunc(n)
		case int64, int:
			return true
		case json.Number:
			_, err := n.Int64()
			return err == nil
		}
		return false
	case "number":
		switch v.(type) {
		case float64, int64, int, json.Number:
			return true
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	}
	return true // unknown declared type: don't block the call
}
