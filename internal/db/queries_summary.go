package db

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

type Summary struct {
	Columns     map[string]int `json:"columns"`
	OpenTasks   int            `json:"open_tasks"`
	RecentTasks []RecentTask   `json:"recent_tasks,omitempty"`
}

type RecentTask struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Customer string `json:"customer"`
	Updated  string `json:"updated"` // e.g. "2 days ago"
}

// sqliteTime is the datetime('now') text format.
const sqliteTime = "2006-01-02 15:04:05"

// GetSummary returns per-column task counts and the most recently touched
// tasks, with update times rendered relative for the model to read out.
func (d *DB) GetSummary(ctx context.Context) (*Summary, error) {
	s := &Summary{Columns: map[string]int{
		StatusNotStarted: 0,
		StatusWIP:        0,
		StatusWaiting:    0,
		StatusClosed:     0,
	}}

	rows, err := d.conn.QueryContext(ctx, "SELECT status, COUNT(*) FROM tasks GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		s.Columns[status] = n
		if status != StatusClosed {
			s.OpenTasks += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recent, err := d.conn.QueryContext(ctx, `SELECT t.id, t.title, t.status, c.name, t.updated_at
		FROM tasks t JOIN customers c ON c.id = t.customer_id
		ORDER BY t.updated_at DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("querying recent tasks: %w", err)
	}
	defer recent.Close()
	for recent.Next() {
		var r RecentTask
		var updatedAt string
		if err := recent.Scan(&r.ID, &r.Title, &r.Status, &r.Customer, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning recent task: %w", err)
		}
		if ts, err := time.Parse(sqliteTime, updatedAt); err == nil {
			r.Updated = humanize.Time(ts)
		} else {
			r.Updated = updatedAt
		}
		s.RecentTasks = append(s.RecentTasks, r)
	}
	return s, recent.Err()
}
