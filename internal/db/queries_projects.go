package db

import (
	"context"
	"database/sql"
	"fmt"
)

type Project struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Customer   string `json:"customer,omitempty"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at"`
}

// CreateProject adds a project under a customer and returns its ID.
func (d *DB) CreateProject(ctx context.Context, customerID int64, title string) (int64, error) {
	res, err := d.conn.ExecContext(ctx, "INSERT INTO projects (customer_id, title) VALUES (?, ?)", customerID, title)
	if err != nil {
		return 0, fmt.Errorf("creating project: %w", err)
	}
	return res.LastInsertId()
}

// ListProjects returns projects, optionally restricted to one customer.
func (d *DB) ListProjects(ctx context.Context, customerID *int64) ([]Project, error) {
	q := `SELECT p.id, p.customer_id, c.name, p.title, p.created_at
		FROM projects p JOIN customers c ON c.id = p.customer_id`
	var args []any
	if customerID != nil {
		q += " WHERE p.customer_id = ?"
		args = append(args, *customerID)
	}
	q += " ORDER BY c.name, p.title"
	rows, err := d.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()
	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Customer, &p.Title, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProjectByTitle looks a project up by title within one customer.
// Returns nil when there is no match.
func (d *DB) GetProjectByTitle(ctx context.Context, customerID int64, title string) (*Project, error) {
	var p Project
	err := d.conn.QueryRowContext(ctx,
		"SELECT id, customer_id, title, created_at FROM projects WHERE customer_id = ? AND title = ?",
		customerID, title,
	).Scan(&p.ID, &p.CustomerID, &p.Title, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %q: %w", title, err)
	}
	return &p, nil
}
