// Package analysis provides the domain model for repository analysis:
// repositories, analysis jobs, mined commits, and change metrics.
package analysis

import "time"

// JobStatus represents the lifecycle state of an analysis job.
type JobStatus string

// JobStatus values.
const (
	StatusQueued     JobStatus = "queued"
	StatusInProgress JobStatus = "in_progress"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// IsTerminal reports whether the status is a final state.
// Terminal jobs never transition again.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// String returns the string representation of the status.
func (s JobStatus) String() string {
	return string(s)
}

// FinalStep is the step label recorded when a job completes.
const FinalStep = "done"

// Job represents one analysis run of a repository.
// A job is immutable; transitions return a copy. Transitions on a
// terminal job are no-ops, so completed and error states stick.
type Job struct {
	id           string
	userID       string
	repositoryID int64
	status       JobStatus
	step         string
	log          string
	errMsg       string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewJob creates a queued Job for the given repository.
func NewJob(id, userID string, repositoryID int64) Job {
	return Job{
		id:           id,
		userID:       userID,
		repositoryID: repositoryID,
		status:       StatusQueued,
	}
}

// ReconstructJob rebuilds a Job from stored fields.
func ReconstructJob(
	id, userID string,
	repositoryID int64,
	status JobStatus,
	step, log, errMsg string,
	createdAt, updatedAt time.Time,
) Job {
	return Job{
		id:           id,
		userID:       userID,
		repositoryID: repositoryID,
		status:       status,
		step:         step,
		log:          log,
		errMsg:       errMsg,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the job ID.
func (j Job) ID() string { return j.id }

// UserID returns the submitting user's ID.
func (j Job) UserID() string { return j.userID }

// RepositoryID returns the analyzed repository's ID.
func (j Job) RepositoryID() int64 { return j.repositoryID }

// Status returns the job status.
func (j Job) Status() JobStatus { return j.status }

// Step returns the human-readable pipeline step label.
func (j Job) Step() string { return j.step }

// Log returns the latest progress log line.
func (j Job) Log() string { return j.log }

// Error returns the failure message, empty unless the job errored.
func (j Job) Error() string { return j.errMsg }

// CreatedAt returns when the job was created.
func (j Job) CreatedAt() time.Time { return j.createdAt }

// UpdatedAt returns when the job was last updated.
func (j Job) UpdatedAt() time.Time { return j.updatedAt }

// Advance moves the job to in_progress at the given step.
// No-op when the job is already terminal.
func (j Job) Advance(step, log string) Job {
	if j.status.IsTerminal() {
		return j
	}
	j.status = StatusInProgress
	j.step = step
	j.log = log
	return j
}

// Complete marks the job completed with the final step label.
// No-op when the job is already terminal.
func (j Job) Complete() Job {
	if j.status.IsTerminal() {
		return j
	}
	j.status = StatusCompleted
	j.step = FinalStep
	j.log = "Analysis complete"
	return j
}

// Fail marks the job errored with the verbatim failure message.
// No-op when the job is already terminal.
func (j Job) Fail(errMsg string) Job {
	if j.status.IsTerminal() {
		return j
	}
	j.status = StatusError
	j.errMsg = errMsg
	return j
}

// WithTimestamps returns a copy with the given timestamps (used by stores).
func (j Job) WithTimestamps(createdAt, updatedAt time.Time) Job {
	j.createdAt = createdAt
	j.updatedAt = updatedAt
	return j
}

// Event returns the job's current state as a JobEvent.
func (j Job) Event() JobEvent {
	return NewJobEvent(j.id, j.status, j.step, j.errMsg)
}
