package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Board columns.
const (
	StatusNotStarted = "NOT_STARTED"
	StatusWIP        = "WIP"
	StatusWaiting    = "WAITING"
	StatusClosed     = "CLOSED"
)

// ValidStatus reports whether s names a board column.
func ValidStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusWIP, StatusWaiting, StatusClosed:
		return true
	}
	return false
}

type Task struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Status    string `json:"status"`
	Priority  int64  `json:"priority"`
	Customer  string `json:"customer"`
	Project   string `json:"project"`
	ParentID  *int64 `json:"parentId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	ClosedAt  string `json:"closedAt,omitempty"`
}

type TaskInput struct {
	Title      string
	Content    string
	Status     string
	Priority   int64
	CustomerID int64
	ProjectID  int64
	ParentID   *int64
}

// CreateTask inserts a task and returns its ID. Creating a task directly in
// the CLOSED column stamps closed_at immediately.
func (d *DB) CreateTask(ctx context.Context, in TaskInput) (int64, error) {
	if in.Status == "" {
		in.Status = StatusNotStarted
	}
	closedAt := "NULL"
	if in.Status == StatusClosed {
		closedAt = "datetime('now')"
	}
	q := fmt.Sprintf(
		"INSERT INTO tasks (title, content, status, priority, customer_id, project_id, parent_id, closed_at) VALUES (?, ?, ?, ?, ?, ?, ?, %s)",
		closedAt,
	)
	res, err := d.conn.ExecContext(ctx, q, in.Title, in.Content, in.Status, in.Priority, in.CustomerID, in.ProjectID, in.ParentID)
	if err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}
	return res.LastInsertId()
}

const taskSelect = `SELECT t.id, t.title, t.content, t.status, t.priority,
	c.name, p.title, t.parent_id, t.created_at, t.updated_at, COALESCE(t.closed_at, '')
	FROM tasks t
	JOIN customers c ON c.id = t.customer_id
	JOIN projects p ON p.id = t.project_id`

// GetTask returns one task by ID, or nil if it does not exist.
func (d *DB) GetTask(ctx context.Context, id int64) (*Task, error) {
	row := d.conn.QueryRowContext(ctx, taskSelect+" WHERE t.id = ?", id)
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Content, &t.Status, &t.Priority,
		&t.Customer, &t.Project, &t.ParentID, &t.CreatedAt, &t.UpdatedAt, &t.ClosedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	return &t, nil
}

// ListTasks returns every task on the board.
func (d *DB) ListTasks(ctx context.Context) ([]Task, error) {
	return d.scanTasks(ctx, taskSelect+" ORDER BY t.updated_at DESC")
}

// ListTasksByCustomer returns all tasks for one customer.
func (d *DB) ListTasksByCustomer(ctx context.Context, customerID int64) ([]Task, error) {
	return d.scanTasks(ctx, taskSelect+" WHERE t.customer_id = ? ORDER BY t.updated_at DESC", customerID)
}

// ListTasksByProject returns all tasks for one project.
func (d *DB) ListTasksByProject(ctx context.Context, projectID int64) ([]Task, error) {
	return d.scanTasks(ctx, taskSelect+" WHERE t.project_id = ? ORDER BY t.updated_at DESC", projectID)
}

// ListSubtasks returns the direct children of a task.
func (d *DB) ListSubtasks(ctx context.Context, parentID int64) ([]Task, error) {
	return d.scanTasks(ctx, taskSelect+" WHERE t.parent_id = ? ORDER BY t.created_at", parentID)
}

var taskColumns = map[string]bool{
	"title": true, "content": true, "status": true, "priority": true,
}

// UpdateTask patches a task's fields. Moving into the CLOSED column stamps
// closed_at; moving back out clears it (so reopened tasks don't keep a
// stale close date).
func (d *DB) UpdateTask(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	var curStatus string
	err := d.conn.QueryRowContext(ctx, "SELECT status FROM tasks WHERE id = ?", id).Scan(&curStatus)
	if err == sql.ErrNoRows {
		return fmt.Errorf("task %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}

	var setClauses []string
	var args []any
	for col, val := range fields {
		if !taskColumns[col] {
			return fmt.Errorf("disallowed column %q for tasks", col)
		}
		setClauses = append(setClauses, col+" = ?")
		args = append(args, val)
	}

	if newStatus, ok := fields["status"].(string); ok {
		if newStatus == StatusClosed && curStatus != StatusClosed {
			setClauses = append(setClauses, "closed_at = datetime('now')")
		} else if newStatus != StatusClosed && curStatus == StatusClosed {
			setClauses = append(setClauses, "closed_at = NULL")
		}
	}

	setClauses = append(setClauses, "updated_at = datetime('now')")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	res, err := d.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}

// DeleteTask removes a task. Children survive with parent_id cleared.
func (d *DB) DeleteTask(ctx context.Context, id int64) error {
	res, err := d.conn.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}

func (d *DB) scanTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Content, &t.Status, &t.Priority,
			&t.Customer, &t.Project, &t.ParentID, &t.CreatedAt, &t.UpdatedAt, &t.ClosedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
