package analysis

// JobEvent is a point-in-time snapshot of a job's visible state,
// published after every status or step transition. Events are
// delivered best-effort and are not persisted.
type JobEvent struct {
	jobID  string
	status JobStatus
	step   string
	errMsg string
}

// NewJobEvent creates a JobEvent.
func NewJobEvent(jobID string, status JobStatus, step, errMsg string) JobEvent {
	return JobEvent{
		jobID:  jobID,
		status: status,
		step:   step,
		errMsg: errMsg,
	}
}

// JobID returns the job this event belongs to.
func (e JobEvent) JobID() string { return e.jobID }

// Status returns the job status at event time.
func (e JobEvent) Status() JobStatus { return e.status }

// Step returns the pipeline step label at event time.
func (e JobEvent) Step() string { return e.step }

// Error returns the failure message, empty unless the job errored.
func (e JobEvent) Error() string { return e.errMsg }

// Terminal reports whether this event closes the job's event stream.
func (e JobEvent) Terminal() bool {
	return e.status.IsTerminal()
}
