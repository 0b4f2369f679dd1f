package service

import (
	"context"
	"log/slog"

	"github.com/defectlens/defectlens/domain/analysis"
)

// Metric provides read access to computed change metrics.
type Metric struct {
	store  analysis.MetricStore
	logger *slog.Logger
}

// NewMetric creates a new Metric service.
func NewMetric(store analysis.MetricStore, logger *slog.Logger) *Metric {
	return &Metric{
		store:  store,
		logger: logger,
	}
}

// ListForRepository returns metrics with their commit hashes for all
// commits of the repository.
func (s *Metric) ListForRepository(ctx context.Context, repoID int64, options ...analysis.Option) ([]analysis.CommitMetric, error) {
	return s.store.FindForRepository(ctx, repoID, options...)
}

// Count counts metric rows matching the options.
func (s *Metric) Count(ctx context.Context, options ...analysis.Option) (int64, error) {
	return s.store.Count(ctx, options...)
}
