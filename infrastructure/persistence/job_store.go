package persistence

import (
	"context"
	"fmt"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/internal/database"
)

// JobStore implements analysis.JobStore using GORM.
type JobStore struct {
	database.Repository[analysis.Job, JobModel]
}

// NewJobStore creates a new JobStore.
func NewJobStore(db database.Database) JobStore {
	return JobStore{
		Repository: database.NewRepository[analysis.Job, JobModel](db, JobMapper{}, "job"),
	}
}

// Create inserts a new job row.
func (s JobStore) Create(ctx context.Context, job analysis.Job) (analysis.Job, error) {
	model := s.Mapper().ToModel(job)
	result := s.DB(ctx).Create(&model)
	if result.Error != nil {
		return analysis.Job{}, fmt.Errorf("create job: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Update writes the job's mutable fields. The WHERE clause excludes rows
// already in a terminal status, so completed and errored jobs can never
// regress even if a stale writer races the transition.
func (s JobStore) Update(ctx context.Context, job analysis.Job) (bool, error) {
	result := s.DB(ctx).Model(&JobModel{}).
		Where("id = ?", job.ID()).
		Where("status NOT IN ?", []string{
			analysis.StatusCompleted.String(),
			analysis.StatusError.String(),
		}).
		Updates(map[string]any{
			"status": job.Status().String(),
			"step":   job.Step(),
			"log":    job.Log(),
			"error":  job.Error(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("update job: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
