package analysis

import "context"

// RepositoryStore persists repositories.
type RepositoryStore interface {
	// GetOrCreate registers a repository, reusing the existing row when
	// one with the same URL exists. The second return reports whether a
	// new row was created.
	GetOrCreate(ctx context.Context, repo Repository) (Repository, bool, error)

	// Save updates an existing repository row.
	Save(ctx context.Context, repo Repository) (Repository, error)

	Find(ctx context.Context, options ...Option) ([]Repository, error)
	FindOne(ctx context.Context, options ...Option) (Repository, error)
	Count(ctx context.Context, options ...Option) (int64, error)
}

// JobStore persists analysis jobs.
type JobStore interface {
	// Create inserts a new job row.
	Create(ctx context.Context, job Job) (Job, error)

	// Update writes the job's mutable fields. Rows already in a terminal
	// status are left untouched; the return reports whether a row changed.
	Update(ctx context.Context, job Job) (bool, error)

	Find(ctx context.Context, options ...Option) ([]Job, error)
	FindOne(ctx context.Context, options ...Option) (Job, error)
	Count(ctx context.Context, options ...Option) (int64, error)
}

// CommitStore persists mined commits.
type CommitStore interface {
	// InsertAll bulk-inserts commits, silently skipping rows whose
	// (repo_id, hash) already exists. Returns the number inserted.
	InsertAll(ctx context.Context, commits []Commit) (int64, error)

	// ApplyBugLinks flags bug-inducing commits and records the fix
	// relationships on their fixing commits, atomically per call.
	ApplyBugLinks(ctx context.Context, repoID int64, links []BugLink) error

	Find(ctx context.Context, options ...Option) ([]Commit, error)
	FindOne(ctx context.Context, options ...Option) (Commit, error)
	Count(ctx context.Context, options ...Option) (int64, error)
}

// CommitMetric pairs a metric row with the hash of its commit.
type CommitMetric struct {
	CommitHash string
	Metric     Metric
}

// MetricStore persists per-commit change metrics.
type MetricStore interface {
	// Upsert writes metric rows, replacing any existing row for the
	// same commit, atomically per call.
	Upsert(ctx context.Context, metrics []Metric) error

	Find(ctx context.Context, options ...Option) ([]Metric, error)

	// FindForRepository returns metrics joined with their commit hashes
	// for all commits of the given repository.
	FindForRepository(ctx context.Context, repoID int64, options ...Option) ([]CommitMetric, error)

	Count(ctx context.Context, options ...Option) (int64, error)
}
