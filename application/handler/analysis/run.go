// Package analysis contains the task handler that drives the four-stage
// analysis pipeline for one job.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/defectlens/defectlens/application/handler"
	domain "github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/infrastructure/notify"
	"github.com/defectlens/defectlens/infrastructure/pipeline"
)

// Step labels shown to clients while a job is in progress.
const (
	StepClone    = "Cloning repository"
	StepClassify = "Extracting and classifying commits"
	StepLink     = "Linking bug-inducing commits"
	StepMetrics  = "Computing metrics"
)

// Run handles the analysis pipeline operation. It owns all persistence
// around the pipeline stages; the Runner only talks to the working copy.
type Run struct {
	jobStore    domain.JobStore
	repoStore   domain.RepositoryStore
	commitStore domain.CommitStore
	metricStore domain.MetricStore
	runner      pipeline.Runner
	notifier    *notify.Notifier
	cloneDir    string
	logger      *slog.Logger
}

// NewRun creates a new Run handler.
func NewRun(
	jobStore domain.JobStore,
	repoStore domain.RepositoryStore,
	commitStore domain.CommitStore,
	metricStore domain.MetricStore,
	runner pipeline.Runner,
	notifier *notify.Notifier,
	cloneDir string,
	logger *slog.Logger,
) *Run {
	return &Run{
		jobStore:    jobStore,
		repoStore:   repoStore,
		commitStore: commitStore,
		metricStore: metricStore,
		runner:      runner,
		notifier:    notifier,
		cloneDir:    cloneDir,
		logger:      logger,
	}
}

// Execute runs the pipeline for the job named in the payload. Stage
// failures are recorded on the job and are not reported as task errors;
// the job row is the source of truth for the outcome.
func (h *Run) Execute(ctx context.Context, payload map[string]any) error {
	jobID, err := handler.ExtractString(payload, "job_id")
	if err != nil {
		return err
	}
	repoID, err := handler.ExtractInt64(payload, "repository_id")
	if err != nil {
		return err
	}
	repoURL, err := handler.ExtractString(payload, "repository_url")
	if err != nil {
		return err
	}
	branch := handler.OptionalString(payload, "branch")
	token := handler.OptionalString(payload, "token")

	job, err := h.jobStore.FindOne(ctx, domain.WithJobID(jobID))
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Status().IsTerminal() {
		h.logger.Info("job already finished, skipping",
			slog.String("job_id", jobID),
			slog.String("status", job.Status().String()),
		)
		return nil
	}

	workdir := filepath.Join(h.cloneDir, strconv.FormatInt(repoID, 10))

	job, ok := h.advance(ctx, job, StepClone, "Cloning "+repoURL)
	if !ok {
		return nil
	}
	if err := os.RemoveAll(workdir); err != nil {
		h.fail(ctx, job, fmt.Errorf("reset working copy: %w", err))
		return nil
	}
	if err := h.runner.Clone(ctx, pipeline.CloneRequest{
		URL:    repoURL,
		Dir:    workdir,
		Branch: branch,
		Token:  token,
	}); err != nil {
		h.fail(ctx, job, err)
		return nil
	}

	job, ok = h.advance(ctx, job, StepClassify, "Extracting commit history")
	if !ok {
		return nil
	}
	classified, err := h.runner.Classify(ctx, workdir)
	if err != nil {
		h.fail(ctx, job, err)
		return nil
	}
	commits := make([]domain.Commit, len(classified.Commits))
	for i, record := range classified.Commits {
		commits[i] = record.ToCommit(repoID)
	}
	inserted, err := h.commitStore.InsertAll(ctx, commits)
	if err != nil {
		h.fail(ctx, job, fmt.Errorf("store commits: %w", err))
		return nil
	}
	h.logger.Info("commits stored",
		slog.String("job_id", jobID),
		slog.Int("extracted", len(commits)),
		slog.Int64("inserted", inserted),
	)

	job, ok = h.advance(ctx, job, StepLink, "Tracing corrective commits")
	if !ok {
		return nil
	}
	correctivePath, err := writeCorrectiveFile(workdir, classified.CorrectiveCommits)
	if err != nil {
		h.fail(ctx, job, err)
		return nil
	}
	defer os.Remove(correctivePath)

	links, err := h.runner.Link(ctx, workdir, correctivePath)
	if err != nil {
		h.fail(ctx, job, err)
		return nil
	}
	if err := h.commitStore.ApplyBugLinks(ctx, repoID, links); err != nil {
		h.fail(ctx, job, fmt.Errorf("apply bug links: %w", err))
		return nil
	}

	job, ok = h.advance(ctx, job, StepMetrics, "Computing change metrics")
	if !ok {
		return nil
	}
	records, err := h.runner.ComputeMetrics(ctx, workdir)
	if err != nil {
		h.fail(ctx, job, err)
		return nil
	}
	if err := h.storeMetrics(ctx, repoID, records); err != nil {
		h.fail(ctx, job, err)
		return nil
	}

	if err := h.markIngested(ctx, repoID); err != nil {
		h.fail(ctx, job, err)
		return nil
	}

	job = job.Complete()
	if changed, err := h.jobStore.Update(ctx, job); err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	} else if changed {
		h.notifier.Publish(job.Event())
	}

	h.logger.Info("analysis complete",
		slog.String("job_id", jobID),
		slog.Int64("repository_id", repoID),
	)
	return nil
}

// advance moves the job to the given step, persists it and publishes
// the transition. A false return means the row was already terminal.
func (h *Run) advance(ctx context.Context, job domain.Job, step, logLine string) (domain.Job, bool) {
	job = job.Advance(step, logLine)

	changed, err := h.jobStore.Update(ctx, job)
	if err != nil {
		h.logger.Error("failed to advance job",
			slog.String("job_id", job.ID()),
			slog.String("step", step),
			slog.String("error", err.Error()),
		)
		return job, false
	}
	if !changed {
		h.logger.Info("job finished elsewhere, aborting pipeline",
			slog.String("job_id", job.ID()),
		)
		return job, false
	}

	h.notifier.Publish(job.Event())
	return job, true
}

// fail records the error verbatim on the job and publishes the terminal
// event. Best effort; a job already terminal stays untouched.
func (h *Run) fail(ctx context.Context, job domain.Job, cause error) {
	h.logger.Error("analysis failed",
		slog.String("job_id", job.ID()),
		slog.String("step", job.Step()),
		slog.String("error", cause.Error()),
	)

	job = job.Fail(cause.Error())
	changed, err := h.jobStore.Update(ctx, job)
	if err != nil {
		h.logger.Error("failed to record job failure",
			slog.String("job_id", job.ID()),
			slog.String("error", err.Error()),
		)
		return
	}
	if changed {
		h.notifier.Publish(job.Event())
	}
}

// storeMetrics resolves commit hashes to row IDs and upserts the
// metric rows. Hashes the classify stage never reported are skipped.
func (h *Run) storeMetrics(ctx context.Context, repoID int64, records []pipeline.MetricRecord) error {
	if len(records) == 0 {
		return nil
	}

	hashes := make([]string, len(records))
	for i, r := range records {
		hashes[i] = r.CommitHash
	}
	commits, err := h.commitStore.Find(ctx, domain.WithRepoID(repoID), domain.WithHashIn(hashes))
	if err != nil {
		return fmt.Errorf("resolve commit hashes: %w", err)
	}
	byHash := make(map[string]int64, len(commits))
	for _, c := range commits {
		byHash[c.Hash()] = c.ID()
	}

	now := time.Now().UTC()
	metrics := make([]domain.Metric, 0, len(records))
	for _, r := range records {
		commitID, ok := byHash[r.CommitHash]
		if !ok {
			h.logger.Warn("metrics for unknown commit, skipping",
				slog.Int64("repository_id", repoID),
				slog.String("hash", handler.ShortSHA(r.CommitHash)),
			)
			continue
		}
		metrics = append(metrics, domain.NewMetric(commitID, r.Stats, now))
	}

	if err := h.metricStore.Upsert(ctx, metrics); err != nil {
		return fmt.Errorf("store metrics: %w", err)
	}
	return nil
}

func (h *Run) markIngested(ctx context.Context, repoID int64) error {
	repo, err := h.repoStore.FindOne(ctx, domain.WithID(repoID))
	if err != nil {
		return fmt.Errorf("load repository: %w", err)
	}
	if _, err := h.repoStore.Save(ctx, repo.MarkIngested(time.Now().UTC())); err != nil {
		return fmt.Errorf("mark repository ingested: %w", err)
	}
	return nil
}

// writeCorrectiveFile writes the corrective commit hashes as a JSON
// array inside the working copy for the linking stage to read.
func writeCorrectiveFile(workdir string, hashes []string) (string, error) {
	if hashes == nil {
		hashes = []string{}
	}
	data, err := json.Marshal(hashes)
	if err != nil {
		return "", fmt.Errorf("encode corrective commits: %w", err)
	}

	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return "", fmt.Errorf("create working area: %w", err)
	}
	path := filepath.Join(workdir, "corrective_commits.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write corrective commits: %w", err)
	}
	return path, nil
}
