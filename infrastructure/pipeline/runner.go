// Package pipeline invokes the external analysis collaborators and
// enforces their output contracts at the process boundary.
package pipeline

import (
	"context"
	"time"

	"github.com/defectlens/defectlens/domain/analysis"
)

// CloneRequest describes a clone stage invocation.
type CloneRequest struct {
	URL    string
	Dir    string
	Branch string
	Token  string
}

// CommitRecord is one commit as reported by the classification stage.
type CommitRecord struct {
	Hash           string   `json:"hash"`
	Message        string   `json:"message"`
	Classification string   `json:"classification"`
	AuthorName     string   `json:"author_name"`
	AuthorEmail    string   `json:"author_email"`
	AuthoredDate   string   `json:"authored_date"`
	CommitterName  string   `json:"committer_name"`
	CommitterEmail string   `json:"committer_email"`
	CommittedDate  string   `json:"committed_date"`
	ParentHashes   []string `json:"parent_hashes"`
	IsMerged       bool     `json:"is_merged"`
}

// ToCommit converts the record to a domain Commit, applying the
// contract defaults: classification "none" when absent, is_merged false.
func (r CommitRecord) ToCommit(repoID int64) analysis.Commit {
	return analysis.NewCommit(repoID, r.Hash, r.Message, r.Classification).
		WithAuthor(r.AuthorName, r.AuthorEmail, parseTimestamp(r.AuthoredDate)).
		WithCommitter(r.CommitterName, r.CommitterEmail, parseTimestamp(r.CommittedDate)).
		WithParentHashes(r.ParentHashes).
		WithMerge(r.IsMerged)
}

// ClassifyResult is the decoded output of the classification stage.
type ClassifyResult struct {
	Commits           []CommitRecord
	CorrectiveCommits []string
}

// MetricRecord is one commit's metrics as reported by the metrics stage.
// Missing numeric fields decode to zero.
type MetricRecord struct {
	CommitHash string
	Stats      analysis.MetricValues
}

// Runner drives the four analysis stages against a working copy.
// Implementations must treat each call as independent; the orchestrator
// sequences them and owns all persistence.
type Runner interface {
	// Clone materializes the repository at req.Dir.
	Clone(ctx context.Context, req CloneRequest) error

	// Classify extracts and classifies the commits of the working copy.
	Classify(ctx context.Context, workdir string) (ClassifyResult, error)

	// Link traces corrective commits back to the commits that introduced
	// the defects they fix. correctivePath names a JSON file listing the
	// corrective commit hashes.
	Link(ctx context.Context, workdir, correctivePath string) ([]analysis.BugLink, error)

	// ComputeMetrics computes per-commit change metrics.
	ComputeMetrics(ctx context.Context, workdir string) ([]MetricRecord, error)
}

// Timestamp layouts accepted from collaborators. The originals emit
// naive ISO-8601; tolerate RFC3339 as well.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
