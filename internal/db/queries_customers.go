package db

import (
	"context"
	"database/sql"
	"fmt"
)

type Customer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// CreateCustomer adds a customer and returns its ID.
func (d *DB) CreateCustomer(ctx context.Context, name string) (int64, error) {
	res, err := d.conn.ExecContext(ctx, "INSERT INTO customers (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("creating customer: %w", err)
	}
	return res.LastInsertId()
}

// ListCustomers returns all customers ordered by name.
func (d *DB) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := d.conn.QueryContext(ctx, "SELECT id, name, created_at FROM customers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()
	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// GetCustomerByName looks a customer up by exact name. Returns nil when
// there is no match.
func (d *DB) GetCustomerByName(ctx context.Context, name string) (*Customer, error) {
	var c Customer
	err := d.conn.QueryRowContext(ctx, "SELECT id, name, created_at FROM customers WHERE name = ?", name).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting customer %q: %w", name, err)
	}
	return &c, nil
}
