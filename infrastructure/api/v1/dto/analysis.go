// Package dto defines the JSON request/response shapes of the v1 API.
package dto

import "time"

// SubmitAnalysisRequest is the body of POST /api/v1/analyses.
type SubmitAnalysisRequest struct {
	UserID        string `json:"userId"`
	RepositoryURL string `json:"repositoryUrl"`
	Branch        string `json:"branch,omitempty"`
	Token         string `json:"token,omitempty"`
}

// SubmitAnalysisResponse is the body returned for a submission.
// ExistingRepoLink is set when the repository URL was already known.
type SubmitAnalysisResponse struct {
	Success          bool   `json:"success"`
	JobID            string `json:"jobId"`
	ExistingRepoLink string `json:"existingRepoLink,omitempty"`
}

// Job describes an analysis job.
type Job struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	RepositoryID int64     `json:"repositoryId"`
	Status       string    `json:"status"`
	Step         string    `json:"step,omitempty"`
	Log          string    `json:"log,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// JobEvent is one frame of the job event stream.
type JobEvent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Step   string `json:"step"`
	Error  string `json:"error"`
}

// Repository describes a registered repository.
type Repository struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"userId"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	IsPublic   bool       `json:"isPublic"`
	CreatedAt  time.Time  `json:"createdAt"`
	IngestedAt *time.Time `json:"ingestedAt,omitempty"`
}

// Commit describes a mined commit.
type Commit struct {
	ID             int64     `json:"id"`
	RepositoryID   int64     `json:"repositoryId"`
	Hash           string    `json:"hash"`
	AuthorName     string    `json:"authorName"`
	AuthorEmail    string    `json:"authorEmail"`
	AuthoredDate   time.Time `json:"authoredDate"`
	CommitterName  string    `json:"committerName"`
	CommitterEmail string    `json:"committerEmail"`
	CommittedDate  time.Time `json:"committedDate"`
	Message        string    `json:"message"`
	Classification string    `json:"classification"`
	IsMerged       bool      `json:"isMerged"`
	ContainsBug    bool      `json:"containsBug"`
	IsLinked       bool      `json:"isLinked"`
	Fixes          []string  `json:"fixes"`
	ParentHashes   []string  `json:"parentHashes"`
}

// Metric describes the change metrics of one commit.
type Metric struct {
	CommitHash string    `json:"commitHash"`
	NS         float64   `json:"ns"`
	ND         float64   `json:"nd"`
	NF         float64   `json:"nf"`
	Entropy    float64   `json:"entropy"`
	LA         float64   `json:"la"`
	LD         float64   `json:"ld"`
	LT         float64   `json:"lt"`
	NDev       float64   `json:"ndev"`
	Age        float64   `json:"age"`
	NUC        float64   `json:"nuc"`
	Exp        float64   `json:"exp"`
	RExp       float64   `json:"rexp"`
	SExp       float64   `json:"sexp"`
	ComputedAt time.Time `json:"computedAt"`
}

// Task describes a pending queue task.
type Task struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListResponse wraps a list payload with pagination metadata.
type ListResponse[T any] struct {
	Data []T            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}
