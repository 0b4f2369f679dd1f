package persistence

import (
	"context"
	"fmt"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MetricStore implements analysis.MetricStore using GORM.
type MetricStore struct {
	database.Repository[analysis.Metric, MetricModel]
	db database.Database
}

// NewMetricStore creates a new MetricStore.
func NewMetricStore(db database.Database) MetricStore {
	return MetricStore{
		Repository: database.NewRepository[analysis.Metric, MetricModel](db, MetricMapper{}, "metric"),
		db:         db,
	}
}

// Upsert writes metric rows, replacing any existing row for the same
// commit, atomically per call.
func (s MetricStore) Upsert(ctx context.Context, metrics []analysis.Metric) error {
	if len(metrics) == 0 {
		return nil
	}

	models := make([]MetricModel, len(metrics))
	for i, m := range metrics {
		models[i] = s.Mapper().ToModel(m)
	}

	return database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "commit_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"ns", "nd", "nf", "entropy",
				"la", "ld", "lt",
				"ndev", "age", "nuc",
				"exp", "rexp", "sexp",
				"computed_at",
			}),
		}).Create(&models)
		if result.Error != nil {
			return fmt.Errorf("upsert metrics: %w", result.Error)
		}
		return nil
	})
}

// FindForRepository returns metrics joined with their commit hashes for
// all commits of the given repository.
func (s MetricStore) FindForRepository(ctx context.Context, repoID int64, options ...analysis.Option) ([]analysis.CommitMetric, error) {
	type row struct {
		MetricModel
		Hash string
	}

	var rows []row
	db := s.DB(ctx).Model(&MetricModel{}).
		Select("metrics.*, commits.hash").
		Joins("JOIN commits ON commits.id = metrics.commit_id").
		Where("commits.repo_id = ?", repoID)
	db = database.ApplyOptions(db, options...)
	if err := db.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("find metrics for repository: %w", err)
	}

	metrics := make([]analysis.CommitMetric, len(rows))
	for i, r := range rows {
		metrics[i] = analysis.CommitMetric{
			CommitHash: r.Hash,
			Metric:     s.Mapper().ToDomain(r.MetricModel),
		}
	}
	return metrics, nil
}
