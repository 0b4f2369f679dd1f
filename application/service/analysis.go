package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/domain/task"
	"github.com/defectlens/defectlens/infrastructure/github"
)

// SubmitParams configures an analysis submission.
type SubmitParams struct {
	UserID        string
	RepositoryURL string
	Branch        string
	Token         string
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	JobID        string
	RepositoryID int64

	// ExistingRepo is true when the URL was already registered and the
	// job re-analyzes the existing repository row.
	ExistingRepo bool
}

// Analysis submits repositories for analysis and reads back job state.
// Every submission creates a job and queues a pipeline run, whether or
// not the repository URL was seen before.
type Analysis struct {
	repoStore analysis.RepositoryStore
	jobStore  analysis.JobStore
	queue     *Queue
	github    *github.Client
	logger    *slog.Logger
}

// NewAnalysis creates a new Analysis service. The GitHub client is
// optional; without it submissions skip the metadata probe.
func NewAnalysis(
	repoStore analysis.RepositoryStore,
	jobStore analysis.JobStore,
	queue *Queue,
	gh *github.Client,
	logger *slog.Logger,
) *Analysis {
	return &Analysis{
		repoStore: repoStore,
		jobStore:  jobStore,
		queue:     queue,
		github:    gh,
		logger:    logger,
	}
}

// Submit registers the repository (idempotently, by URL), creates a
// queued job for it and enqueues a pipeline run.
func (s *Analysis) Submit(ctx context.Context, params SubmitParams) (SubmitResult, error) {
	if params.UserID == "" {
		return SubmitResult{}, fmt.Errorf("user id is required")
	}
	if params.RepositoryURL == "" {
		return SubmitResult{}, fmt.Errorf("repository url is required")
	}

	name, isPublic := s.probeRepository(ctx, params.RepositoryURL)

	repo, created, err := s.repoStore.GetOrCreate(ctx,
		analysis.NewRepository(params.UserID, name, params.RepositoryURL, isPublic))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("register repository: %w", err)
	}

	job := analysis.NewJob(uuid.NewString(), params.UserID, repo.ID())
	if job, err = s.jobStore.Create(ctx, job); err != nil {
		return SubmitResult{}, fmt.Errorf("create job: %w", err)
	}

	payload := map[string]any{
		"job_id":         job.ID(),
		"user_id":        params.UserID,
		"repository_id":  repo.ID(),
		"repository_url": params.RepositoryURL,
	}
	if params.Branch != "" {
		payload["branch"] = params.Branch
	}
	if params.Token != "" {
		payload["token"] = params.Token
	}

	t := task.NewTask(task.OperationAnalyzeRepository, int(task.PriorityUserInitiated), payload)
	if err := s.queue.Enqueue(ctx, t); err != nil {
		return SubmitResult{}, fmt.Errorf("enqueue analysis: %w", err)
	}

	s.logger.Info("analysis submitted",
		slog.String("job_id", job.ID()),
		slog.Int64("repository_id", repo.ID()),
		slog.Bool("existing_repo", !created),
	)

	return SubmitResult{
		JobID:        job.ID(),
		RepositoryID: repo.ID(),
		ExistingRepo: !created,
	}, nil
}

// Job retrieves a job by ID.
func (s *Analysis) Job(ctx context.Context, id string) (analysis.Job, error) {
	return s.jobStore.FindOne(ctx, analysis.WithJobID(id))
}

// Jobs lists jobs, newest first.
func (s *Analysis) Jobs(ctx context.Context, options ...analysis.Option) ([]analysis.Job, error) {
	options = append([]analysis.Option{analysis.WithOrderDesc("created_at")}, options...)
	return s.jobStore.Find(ctx, options...)
}

// CountJobs counts jobs matching the options.
func (s *Analysis) CountJobs(ctx context.Context, options ...analysis.Option) (int64, error) {
	return s.jobStore.Count(ctx, options...)
}

// probeRepository fetches name and visibility from GitHub when the URL
// points there and a client is configured. Probe failures fall back to
// the URL-derived name; submission must not depend on the GitHub API.
func (s *Analysis) probeRepository(ctx context.Context, url string) (name string, isPublic bool) {
	name = repoNameFromURL(url)
	isPublic = true

	owner, repo, ok := github.ParseOwnerRepo(url)
	if !ok || s.github == nil {
		return name, isPublic
	}

	info, err := s.github.GetRepositoryInfo(ctx, owner, repo)
	if err != nil {
		s.logger.Warn("repository metadata probe failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return name, isPublic
	}
	if info.Name != "" {
		name = info.Name
	}
	return name, !info.Private
}

// repoNameFromURL derives a display name from the last URL path segment.
func repoNameFromURL(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(url), "/"), ".git")
	name := path.Base(strings.ReplaceAll(trimmed, ":", "/"))
	if name == "." || name == "/" || name == "" {
		return trimmed
	}
	return name
}
