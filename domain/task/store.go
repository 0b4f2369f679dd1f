package task

import (
	"context"

	"github.com/defectlens/defectlens/domain/analysis"
)

// TaskStore persists queued tasks.
type TaskStore interface {
	// Save inserts the task, or updates the priority of the existing row
	// when one with the same dedup key is already queued.
	Save(ctx context.Context, t Task) (Task, error)

	// Dequeue atomically claims the highest-priority pending task.
	// The claimed task is removed from the queue; a task is handed to
	// exactly one caller. The second return reports whether a task was
	// available.
	Dequeue(ctx context.Context) (Task, bool, error)

	// Get retrieves a task by ID.
	Get(ctx context.Context, id int64) (Task, error)

	// FindPending returns pending tasks ordered by priority (highest
	// first) then created_at (oldest first).
	FindPending(ctx context.Context, options ...analysis.Option) ([]Task, error)

	// CountPending returns the number of pending tasks.
	CountPending(ctx context.Context) (int64, error)

	// Delete removes a task from the queue.
	Delete(ctx context.Context, t Task) error
}
