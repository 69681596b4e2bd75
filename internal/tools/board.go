package tools

import (
	"context"
	"fmt"

	"github.com/tavlaapp/tavla/internal/db"
	"github.com/tavlaapp/tavla/internal/llm"
)

// The chat assistant predates the Go rewrite; the Swedish argument keys
// (taskTitel, kundNamn, projektNamn) are the wire contract the existing
// prompts and frontend were built against, so they stay.

func (r *Registry) registerBoardTools() {
	r.Register(llm.Tool{
		Name:        "create_task",
		Description: "Create a new task on the board for a customer and project. Optionally as a subtask of another task.",
		Parameters: llm.ObjReq(map[string]any{
			"taskTitel":   llm.Prop("string", "Task title"),
			"kundNamn":    llm.Prop("string", "Customer name the task belongs to"),
			"projektNamn": llm.Prop("string", "Project title within the customer"),
			"content":     llm.Prop("string", "Task description"),
			"priority":    llm.Prop("integer", "Priority, higher is more urgent"),
			"status":      llm.Prop("string", "Column: NOT_STARTED, WIP, WAITING, CLOSED"),
			"parentId":    llm.Prop("integer", "Parent task ID to attach this as a subtask"),
		}, "taskTitel", "kundNamn", "projektNamn"),
	}, r.createTask)

	r.Register(llm.Tool{
		Name:        "update_task",
		Description: "Update a task by ID. Can change title, content, status (board column), or priority.",
		Parameters: llm.ObjReq(map[string]any{
			"id":        llm.Prop("integer", "Task ID"),
			"taskTitel": llm.Prop("string", "New title"),
			"content":   llm.Prop("string", "New description"),
			"status":    llm.Prop("string", "New column: NOT_STARTED, WIP, WAITING, CLOSED"),
			"priority":  llm.Prop("integer", "New priority"),
		}, "id"),
	}, r.updateTask)

	r.Register(llm.Tool{
		Name:        "delete_task",
		Description: "Delete a task by ID. Subtasks are kept but detached.",
		Parameters: llm.ObjReq(map[string]any{
			"id": llm.Prop("integer", "Task ID to delete"),
		}, "id"),
	}, r.deleteTask)

	r.Register(llm.Tool{
		Name:        "list_tasks",
		Description: "List every task on the board with customer and project names.",
		Parameters:  llm.Obj(nil),
	}, r.listTasks)

	r.Register(llm.Tool{
		Name:        "get_tasks_by_customer",
		Description: "List all tasks for one customer.",
		Parameters: llm.ObjReq(map[string]any{
			"kundNamn": llm.Prop("string", "Customer name"),
		}, "kundNamn"),
	}, r.tasksByCustomer)

	r.Register(llm.Tool{
		Name:        "get_tasks_by_customer_and_project",
		Description: "List tasks for one customer, optionally narrowed to one project.",
		Parameters: llm.ObjReq(map[string]any{
			"kundNamn":    llm.Prop("string", "Customer name"),
			"projektNamn": llm.Prop("string", "Project title to narrow down to"),
		}, "kundNamn"),
	}, r.tasksByCustomerAndProject)

	r.Register(llm.Tool{
		Name:        "list_subtasks",
		Description: "List the direct subtasks of a task.",
		Parameters: llm.ObjReq(map[string]any{
			"id": llm.Prop("integer", "Parent task ID"),
		}, "id"),
	}, r.listSubtasks)

	r.Register(llm.Tool{
		Name:        "list_customers",
		Description: "List all customers.",
		Parameters:  llm.Obj(nil),
	}, r.listCustomers)

	r.Register(llm.Tool{
		Name:        "list_projects",
		Description: "List projects, optionally for one customer.",
		Parameters: llm.Obj(map[string]any{
			"kundNamn": llm.Prop("string", "Customer name to filter by"),
		}),
	}, r.listProjects)

	r.Register(llm.Tool{
		Name:        "get_board_summary",
		Description: "Get task counts per board column and recently updated tasks.",
		Parameters:  llm.Obj(nil),
	}, r.boardSummary)
}

// resolveCustomer maps a customer name to its row, with an error the model
// can relay when the name is unknown.
func (r *Registry) resolveCustomer(ctx context.Context, name string) (*db.Customer, error) {
	customer, err := r.store.GetCustomerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %q not found", name)
	}
	return customer, nil
}

func (r *Registry) createTask(ctx context.Context, args map[string]any) (any, error) {
	title, _ := getString(args, "taskTitel")
	kundNamn, _ := getString(args, "kundNamn")
	projektNamn, _ := getString(args, "projektNamn")

	customer, err := r.resolveCustomer(ctx, kundNamn)
	if err != nil {
		return nil, err
	}
	project, err := r.store.GetProjectByTitle(ctx, customer.ID, projektNamn)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %q not found for customer %q", projektNamn, kundNamn)
	}

	in := db.TaskInput{
		Title:      title,
		CustomerID: customer.ID,
		ProjectID:  project.ID,
	}
	in.Content, _ = getString(args, "content")
	in.Priority, _ = getInt(args, "priority")
	if status, ok := getString(args, "status"); ok {
		if !db.ValidStatus(status) {
			return nil, fmt.Errorf("invalid status %q, must be one of NOT_STARTED, WIP, WAITING, CLOSED", status)
		}
		in.Status = status
	}
	if parentID, ok := getInt(args, "parentId"); ok {
		parent, err := r.store.GetTask(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("parent task %d not found", parentID)
		}
		in.ParentID = &parentID
	}

	id, err := r.store.CreateTask(ctx, in)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "status": "created", "title": title, "customer": kundNamn, "project": projektNamn}, nil
}

func (r *Registry) updateTask(ctx context.Context, args map[string]any) (any, error) {
	id, _ := getInt(args, "id")
	fields := make(map[string]any)
	if v, ok := getString(args, "taskTitel"); ok {
		fields["title"] = v
	}
	if v, ok := getString(args, "content"); ok {
		fields["content"] = v
	}
	if v, ok := getString(args, "status"); ok {
		if !db.ValidStatus(v) {
			return nil, fmt.Errorf("invalid status %q, must be one of NOT_STARTED, WIP, WAITING, CLOSED", v)
		}
		fields["status"] = v
	}
	if v, ok := getInt(args, "priority"); ok {
		fields["priority"] = v
	}
	if err := r.store.UpdateTask(ctx, id, fields); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "status": "updated"}, nil
}

func (r *Registry) deleteTask(ctx context.Context, args map[string]any) (any, error) {
	id, _ := getInt(args, "id")
	if err := r.store.DeleteTask(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "status": "deleted"}, nil
}

func (r *Registry) listTasks(ctx context.Context, args map[string]any) (any, error) {
	return r.store.ListTasks(ctx)
}

func (r *Registry) tasksByCustomer(ctx context.Context, args map[string]any) (any, error) {
	kundNamn, _ := getString(args, "kundNamn")
	customer, err := r.resolveCustomer(ctx, kundNamn)
	if err != nil {
		return nil, err
	}
	return r.store.ListTasksByCustomer(ctx, customer.ID)
}

func (r *Registry) tasksByCustomerAndProject(ctx context.Context, args map[string]any) (any, error) {
	kundNamn, _ := getString(args, "kundNamn")
	customer, err := r.resolveCustomer(ctx, kundNamn)
	if err != nil {
		return nil, err
	}
	projektNamn, ok := getString(args, "projektNamn")
	if !ok || projektNamn == "" {
		return r.store.ListTasksByCustomer(ctx, customer.ID)
	}
	project, err := r.store.GetProjectByTitle(ctx, customer.ID, projektNamn)
	if err != nil {
		return nil, err
	}
	if project == nil {
		// Unknown project for a known customer: empty list, not an error.
		return []db.Task{}, nil
	}
	return r.store.ListTasksByProject(ctx, project.ID)
}

func (r *Registry) listSubtasks(ctx context.Context, args map[string]any) (any, error) {
	id, _ := getInt(args, "id")
	return r.store.ListSubtasks(ctx, id)
}

func (r *Registry) listCustomers(ctx context.Context, args map[string]any) (any, error) {
	return r.store.ListCustomers(ctx)
}

func (r *Registry) listProjects(ctx context.Context, args map[string]any) (any, error) {
	if kundNamn, ok := getString(args, "kundNamn"); ok && kundNamn != "" {
		customer, err := r.resolveCustomer(ctx, kundNamn)
		if err != nil {
			return nil, err
		}
		return r.store.ListProjects(ctx, &customer.ID)
	}
	return r.store.ListProjects(ctx, nil)
}

func (r *Registry) boardSummary(ctx context.Context, args map[string]any) (any, error) {
	return r.store.GetSummary(ctx)
}
