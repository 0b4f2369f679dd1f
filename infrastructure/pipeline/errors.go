package pipeline

import "errors"

// Sentinel errors for collaborator stage outcomes.
var (
	// ErrStageFailed indicates the collaborator process reported failure:
	// a non-zero exit or an explicit non-success status in its output.
	ErrStageFailed = errors.New("analysis stage failed")

	// ErrMalformedOutput indicates the collaborator exited successfully
	// but its stdout did not satisfy the stage's output contract.
	ErrMalformedOutput = errors.New("malformed collaborator output")
)
