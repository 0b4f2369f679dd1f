package service

import (
	"context"
	"log/slog"

	"github.com/defectlens/defectlens/domain/analysis"
)

// Repository provides read access to registered repositories.
type Repository struct {
	store  analysis.RepositoryStore
	logger *slog.Logger
}

// NewRepository creates a new Repository service.
func NewRepository(store analysis.RepositoryStore, logger *slog.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger,
	}
}

// Get retrieves a repository by ID.
func (s *Repository) Get(ctx context.Context, id int64) (analysis.Repository, error) {
	return s.store.FindOne(ctx, analysis.WithID(id))
}

// GetByURL retrieves a repository by remote URL.
func (s *Repository) GetByURL(ctx context.Context, url string) (analysis.Repository, error) {
	return s.store.FindOne(ctx, analysis.WithURL(url))
}

// List returns repositories matching the options, newest first.
func (s *Repository) List(ctx context.Context, options ...analysis.Option) ([]analysis.Repository, error) {
	options = append([]analysis.Option{analysis.WithOrderDesc("created_at")}, options...)
	return s.store.Find(ctx, options...)
}

// Count counts repositories matching the options.
func (s *Repository) Count(ctx context.Context, options ...analysis.Option) (int64, error) {
	return s.store.Count(ctx, options...)
}
