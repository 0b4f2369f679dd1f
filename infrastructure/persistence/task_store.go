package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/domain/task"
	"github.com/defectlens/defectlens/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStore implements task.TaskStore using GORM.
type TaskStore struct {
	database.Repository[task.Task, TaskModel]
	db database.Database
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db database.Database) TaskStore {
	return TaskStore{
		Repository: database.NewRepository[task.Task, TaskModel](db, TaskMapper{}, "task"),
		db:         db,
	}
}

// Save inserts the task, or bumps the priority of the existing row when
// one with the same dedup key is already queued.
func (s TaskStore) Save(ctx context.Context, t task.Task) (task.Task, error) {
	model := s.Mapper().ToModel(t)
	model.ID = 0

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"priority", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return task.Task{}, fmt.Errorf("save task: %w", result.Error)
	}

	return s.FindOne(ctx, analysis.WithCondition("dedup_key", t.DedupKey()))
}

// Dequeue atomically claims the highest-priority pending task. The row is
// deleted inside the claiming transaction, so concurrent workers never
// receive the same task.
func (s TaskStore) Dequeue(ctx context.Context) (task.Task, bool, error) {
	claimed, err := database.WithTransactionResult(ctx, s.db, func(tx *gorm.DB) (TaskModel, error) {
		var model TaskModel
		err := tx.Order("priority DESC, created_at ASC").First(&model).Error
		if err != nil {
			return TaskModel{}, err
		}

		// The delete doubles as the claim: losing a race on the same row
		// leaves RowsAffected at zero and the caller retries later.
		result := tx.Delete(&TaskModel{}, model.ID)
		if result.Error != nil {
			return TaskModel{}, result.Error
		}
		if result.RowsAffected == 0 {
			return TaskModel{}, gorm.ErrRecordNotFound
		}
		return model, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task.Task{}, false, nil
		}
		return task.Task{}, false, fmt.Errorf("dequeue task: %w", err)
	}

	return s.Mapper().ToDomain(claimed), true, nil
}

// Get retrieves a task by ID.
func (s TaskStore) Get(ctx context.Context, id int64) (task.Task, error) {
	return s.FindOne(ctx, analysis.WithID(id))
}

// FindPending returns pending tasks ordered by priority (highest first)
// then created_at (oldest first).
func (s TaskStore) FindPending(ctx context.Context, options ...analysis.Option) ([]task.Task, error) {
	opts := append([]analysis.Option{
		analysis.WithOrderDesc("priority"),
		analysis.WithOrderAsc("created_at"),
	}, options...)
	return s.Find(ctx, opts...)
}

// CountPending returns the number of pending tasks.
func (s TaskStore) CountPending(ctx context.Context) (int64, error) {
	return s.Count(ctx)
}

// Delete removes a task from the queue.
func (s TaskStore) Delete(ctx context.Context, t task.Task) error {
	if t.ID() == 0 {
		return nil
	}
	result := s.DB(ctx).Delete(&TaskModel{}, t.ID())
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	return nil
}
