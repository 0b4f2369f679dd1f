package service

import (
	"context"
	"log/slog"

	"github.com/defectlens/defectlens/domain/analysis"
)

// CommitListParams configures commit listing for a repository.
type CommitListParams struct {
	Classification string
	OnlyBuggy      bool
	Limit          int
	Offset         int
}

// Commit provides read access to mined commits.
type Commit struct {
	store  analysis.CommitStore
	logger *slog.Logger
}

// NewCommit creates a new Commit service.
func NewCommit(store analysis.CommitStore, logger *slog.Logger) *Commit {
	return &Commit{
		store:  store,
		logger: logger,
	}
}

// ListForRepository returns commits of a repository, newest first.
func (s *Commit) ListForRepository(ctx context.Context, repoID int64, params *CommitListParams) ([]analysis.Commit, error) {
	options := commitOptions(repoID, params)
	options = append(options,
		analysis.WithOrderDesc("author_date"),
		analysis.WithOrderDesc("committer_date"),
		analysis.WithOrderAsc("id"),
	)
	if params != nil && params.Limit > 0 {
		options = append(options, analysis.WithPagination(params.Limit, params.Offset)...)
	}
	return s.store.Find(ctx, options...)
}

// CountForRepository counts commits of a repository.
func (s *Commit) CountForRepository(ctx context.Context, repoID int64, params *CommitListParams) (int64, error) {
	return s.store.Count(ctx, commitOptions(repoID, params)...)
}

func commitOptions(repoID int64, params *CommitListParams) []analysis.Option {
	options := []analysis.Option{analysis.WithRepoID(repoID)}
	if params == nil {
		return options
	}
	if params.Classification != "" {
		options = append(options,
			analysis.WithClassification(analysis.NormalizeClassification(params.Classification)))
	}
	if params.OnlyBuggy {
		options = append(options, analysis.WithCondition("contains_bug", true))
	}
	return options
}
