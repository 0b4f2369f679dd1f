package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defectlens/defectlens/domain/analysis"
)

func TestClassifySchema_AcceptsWellFormedOutput(t *testing.T) {
	payload := []byte(`{
		"status": "success",
		"commits": [
			{
				"hash": "abc123",
				"message": "fix: crash",
				"classification": "Corrective",
				"author_name": "Alice",
				"author_email": "alice@example.com",
				"authored_date": "2024-05-01T10:00:00",
				"committer_name": "Alice",
				"committer_email": "alice@example.com",
				"committed_date": "2024-05-01T10:05:00",
				"parent_hashes": ["def456"]
			}
		],
		"corrective_commits": ["abc123"]
	}`)

	err := validateOutput(context.Background(), "classify", classifySchema, payload)
	assert.NoError(t, err)
}

func TestClassifySchema_RejectsMissingStatus(t *testing.T) {
	err := validateOutput(context.Background(), "classify", classifySchema, []byte(`{"commits": []}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedOutput)
	assert.Contains(t, err.Error(), "classify")
}

func TestClassifySchema_RejectsWrongCommitShape(t *testing.T) {
	payload := []byte(`{"status": "success", "commits": [{"message": "no hash"}]}`)
	err := validateOutput(context.Background(), "classify", classifySchema, payload)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestLinkSchema(t *testing.T) {
	good := []byte(`[{"buggy_commit": "h1", "linked_to": ["h2", "h3"]}]`)
	assert.NoError(t, validateOutput(context.Background(), "link", linkSchema, good))

	empty := []byte(`[]`)
	assert.NoError(t, validateOutput(context.Background(), "link", linkSchema, empty))

	bad := []byte(`[{"linked_to": ["h2"]}]`)
	assert.ErrorIs(t, validateOutput(context.Background(), "link", linkSchema, bad), ErrMalformedOutput)

	notArray := []byte(`{"buggy_commit": "h1"}`)
	assert.ErrorIs(t, validateOutput(context.Background(), "link", linkSchema, notArray), ErrMalformedOutput)
}

func TestMetricsSchema(t *testing.T) {
	good := []byte(`[{"commit_hash": "h1", "stats": {"ns": 1, "la": 10.5}}]`)
	assert.NoError(t, validateOutput(context.Background(), "metrics", metricsSchema, good))

	bad := []byte(`[{"stats": {"ns": 1}}]`)
	assert.ErrorIs(t, validateOutput(context.Background(), "metrics", metricsSchema, bad), ErrMalformedOutput)

	wrongType := []byte(`[{"commit_hash": "h1", "stats": {"ns": "many"}}]`)
	assert.ErrorIs(t, validateOutput(context.Background(), "metrics", metricsSchema, wrongType), ErrMalformedOutput)
}

func TestCommitRecord_ToCommit_Defaults(t *testing.T) {
	record := CommitRecord{Hash: "abc123", Message: "change things"}

	commit := record.ToCommit(7)
	assert.Equal(t, int64(7), commit.RepoID())
	assert.Equal(t, "abc123", commit.Hash())
	assert.Equal(t, analysis.ClassificationNone, commit.Classification())
	assert.False(t, commit.IsMerge())
	assert.True(t, commit.AuthoredAt().IsZero())
}

func TestCommitRecord_ToCommit_NormalizesClassification(t *testing.T) {
	record := CommitRecord{
		Hash:           "abc123",
		Classification: "Corrective",
		AuthoredDate:   "2024-05-01T10:00:00",
		CommittedDate:  "2024-05-01T10:05:00Z",
		ParentHashes:   []string{"p1"},
	}

	commit := record.ToCommit(1)
	assert.Equal(t, analysis.ClassificationCorrective, commit.Classification())
	assert.True(t, commit.IsCorrective())
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), commit.AuthoredAt())
	assert.Equal(t, time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC), commit.CommittedAt())
	assert.Equal(t, []string{"p1"}, commit.ParentHashes())
}

func TestParseTimestamp_UnparseableYieldsZero(t *testing.T) {
	assert.True(t, parseTimestamp("not a time").IsZero())
	assert.True(t, parseTimestamp("").IsZero())
}

func TestProcessRunner_MissingInterpreterIsStageFailure(t *testing.T) {
	r := NewProcessRunner("/nonexistent-python", t.TempDir(), nil)

	err := r.Clone(context.Background(), CloneRequest{URL: "https://example.com/a.git", Dir: t.TempDir()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStageFailed)
	assert.NotErrorIs(t, err, ErrMalformedOutput)
}
