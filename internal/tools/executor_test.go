package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/tavlaapp/tavla/internal/db"
	"github.com/tavlaapp/tavla/internal/llm"
)

func testTool(name string) llm.Tool {
	return llm.Tool{Name: name, Description: "test tool", Parameters: llm.Obj(nil)}
}

func testRegistry(t *testing.T) (*Registry, *db.DB) {
	t.Helper()
	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewRegistry(d), d
}

func seedBoard(t *testing.T, d *db.DB) {
	t.Helper()
	cid, err := d.CreateCustomer(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if _, err := d.CreateProject(context.Background(), cid, "Website"); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
}

func TestListIsIdempotent(t *testing.T) {
	r, _ := testRegistry(t)
	ctx := context.Background()

	first, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	second, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List (second): %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected registered tools")
	}
	if len(first) != len(second) {
		t.Fatalf("List changed size between calls: %d vs %d", len(first), len(second))
	}

	names := make(map[string]bool)
	for _, tool := range first {
		names[tool.Name] = true
	}
	for _, tool := range second {
		if !names[tool.Name] {
			t.Errorf("tool %q appeared only on the second listing", tool.Name)
		}
	}
}

func TestListFailsWhenStoreClosed(t *testing.T) {
	r, d := testRegistry(t)
	d.Close()

	_, err := r.List(context.Background())
	if err == nil {
		t.Fatal("expected error from List after store closed")
	}
	if !strings.Contains(err.Error(), "tool registry unavailable") {
		t.Errorf("expected registry-unavailable error, got %v", err)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r, _ := testRegistry(t)
	e := NewExecutor(r, nil, 0)

	res := e.Execute(context.Background(), "call_1", "delete_everything", nil)
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if res.Content != "Tool delete_everything not found." {
		t.Errorf("unexpected error text: %q", res.Content)
	}
	if res.ToolCallID != "call_1" {
		t.Errorf("expected echoed call ID, got %q", res.ToolCallID)
	}
}

func TestExecuteMissingRequiredArgs(t *testing.T) {
	r, _ := testRegistry(t)
	e := NewExecutor(r, nil, 0)

	res := e.Execute(context.Background(), "call_1", "create_task", map[string]any{
		"taskTitel": "Fix bug",
	})
	if !res.IsError {
		t.Fatal("expected error result")
	}
	// All violations reported in one pass.
	if !strings.Contains(res.Content, `"kundNamn"`) || !strings.Contains(res.Content, `"projektNamn"`) {
		t.Errorf("expected both missing fields reported, got %q", res.Content)
	}
}

func TestExecuteBadArgTypes(t *testing.T) {
	r, _ := testRegistry(t)
	e := NewExecutor(r, nil, 0)

	res := e.Execute(context.Background(), "call_1", "update_task", map[string]any{
		"id":       "not-a-number",
		"priority": "high",
	})
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(res.Content, `"id"`) || !strings.Contains(res.Content, `"priority"`) {
		t.Errorf("expected both type violations reported, got %q", res.Content)
	}
}

func TestExecuteCreateTask(t *testing.T) {
	r, d := testRegistry(t)
	seedBoard(t, d)
	e := NewExecutor(r, nil, 0)

	res := e.Execute(context.Background(), "call_1", "create_task", map[string]any{
		"taskTitel":   "Fix bug",
		"kundNamn":    "Acme",
		"projektNamn": "Website",
		"priority":    float64(2),
	})
	if res.IsError {
		t.Fatalf("expected success, got %q", res.Content)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(res.Content), &payload); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if payload["status"] != "created" {
		t.Errorf("expected created status, got %v", payload["status"])
	}

	tasks, err := d.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Fix bug" {
		t.Fatalf("expected the task in the store, got %v", tasks)
	}
}

func TestExecuteCreateTaskUnknownCustomer(t *testing.T) {
	r, _ := testRegistry(t)
	e := NewExecutor(r, nil, 0)

	res := e.Execute(context.Background(), "call_1", "create_task", map[string]any{
		"taskTitel":   "Fix bug",
		"kundNamn":    "Nobody",
		"projektNamn": "Website",
	})
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(res.Content, `customer "Nobody" not found`) {
		t.Errorf("unexpected error text: %q", res.Content)
	}
}

func TestExecuteUnknownProjectYieldsEmptyList(t *testing.T) {
	r, d := testRegistry(t)
	seedBoard(t, d)
	e := NewExecutor(r, nil, 0)

	res := e.Execute(context.Background(), "call_1", "get_tasks_by_customer_and_project", map[string]any{
		"kundNamn":    "Acme",
		"projektNamn": "No Such Project",
	})
	if res.IsError {
		t.Fatalf("expected graceful empty list, got error %q", res.Content)
	}
	if res.Content != "[]" {
		t.Errorf("expected empty JSON array, got %q", res.Content)
	}
}

func TestExecuteSubtaskFlow(t *testing.T) {
	r, d := testRegistry(t)
	seedBoard(t, d)
	e := NewExecutor(r, nil, 0)
	ctx := context.Background()

	res := e.Execute(ctx, "c1", "create_task", map[string]any{
		"taskTitel": "Epic", "kundNamn": "Acme", "projektNamn": "Website",
	})
	if res.IsError {
		t.Fatalf("create parent: %q", res.Content)
	}
	var parent map[string]any
	json.Unmarshal([]byte(res.Content), &parent)

	res = e.Execute(ctx, "c2", "create_task", map[string]any{
		"taskTitel": "Child", "kundNamn": "Acme", "projektNamn": "Website",
		"parentId": parent["id"],
	})
	if res.IsError {
		t.Fatalf("create child: %q", res.Content)
	}

	res = e.Execute(ctx, "c3", "list_subtasks", map[string]any{"id": parent["id"]})
	if res.IsError {
		t.Fatalf("list_subtasks: %q", res.Content)
	}
	var children []map[string]any
	if err := json.Unmarshal([]byte(res.Content), &children); err != nil {
		t.Fatalf("subtasks payload: %v", err)
	}
	if len(children) != 1 || children[0]["title"] != "Child" {
		t.Fatalf("expected one subtask Child, got %v", children)
	}
}

func TestExecutePanicBecomesErrorResult(t *testing.T) {
	r, _ := testRegistry(t)
	r.Register(testTool("boom"), func(ctx context.Context, args map[string]any) (any, error) {
		panic("kaboom")
	})
	e := NewExecutor(r, nil, 0)

	res := e.Execute(context.Background(), "call_1", "boom", nil)
	if !res.IsError {
		t.Fatal("expected error result from panicking tool")
	}
	if !strings.Contains(res.Content, "boom") {
		t.Errorf("expected tool name in diagnostic, got %q", res.Content)
	}
}

func TestExecuteTimeoutBoundsStoreCalls(t *testing.T) {
	r, d := testRegistry(t)
	seedBoard(t, d)
	// Deadline expires before the handler can touch the store.
	e := NewExecutor(r, nil, time.Nanosecond)

	res := e.Execute(context.Background(), "call_1", "create_task", map[string]any{
		"taskTitel": "Fix bug", "kundNamn": "Acme", "projektNamn": "Website",
	})
	if !res.IsError {
		t.Fatalf("expected timeout error result, got %q", res.Content)
	}
	if !strings.HasPrefix(res.Content, "Error:") {
		t.Errorf("expected execution-failure diagnostic, got %q", res.Content)
	}

	tasks, err := d.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no task created past the deadline, got %v", tasks)
	}
}

func TestExecuteTimeoutStopsSlowHandler(t *testing.T) {
	r, _ := testRegistry(t)
	r.Register(testTool("slow"), func(ctx context.Context, args map[string]any) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return "finished", nil
		}
	})
	e := NewExecutor(r, nil, 10*time.Millisecond)

	start := time.Now()
	res := e.Execute(context.Background(), "call_1", "slow", nil)
	if !res.IsError {
		t.Fatalf("expected timeout error result, got %q", res.Content)
	}
	if !strings.Contains(res.Content, "deadline") {
		t.Errorf("expected deadline in diagnostic, got %q", res.Content)
	}
	if time.Since(start) > time.Second {
		t.Error("executor did not enforce its timeout")
	}
}
