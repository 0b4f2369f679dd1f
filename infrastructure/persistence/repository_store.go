package persistence

import (
	"context"
	"fmt"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/internal/database"
	"gorm.io/gorm/clause"
)

// RepositoryStore implements analysis.RepositoryStore using GORM.
type RepositoryStore struct {
	database.Repository[analysis.Repository, RepositoryModel]
}

// NewRepositoryStore creates a new RepositoryStore.
func NewRepositoryStore(db database.Database) RepositoryStore {
	return RepositoryStore{
		Repository: database.NewRepository[analysis.Repository, RepositoryModel](db, RepositoryMapper{}, "repository"),
	}
}

// GetOrCreate registers a repository, reusing the existing row when one
// with the same URL exists. The insert races are resolved by the unique
// index on url: DoNothing on conflict, then re-read by URL.
func (s RepositoryStore) GetOrCreate(ctx context.Context, repo analysis.Repository) (analysis.Repository, bool, error) {
	model := s.Mapper().ToModel(repo)
	model.ID = 0

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&model)
	if result.Error != nil {
		return analysis.Repository{}, false, fmt.Errorf("create repository: %w", result.Error)
	}
	created := result.RowsAffected > 0

	stored, err := s.FindOne(ctx, analysis.WithURL(repo.URL()))
	if err != nil {
		return analysis.Repository{}, false, err
	}
	return stored, created, nil
}

// Save updates an existing repository row.
func (s RepositoryStore) Save(ctx context.Context, repo analysis.Repository) (analysis.Repository, error) {
	model := s.Mapper().ToModel(repo)
	result := s.DB(ctx).Save(&model)
	if result.Error != nil {
		return analysis.Repository{}, fmt.Errorf("save repository: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}
