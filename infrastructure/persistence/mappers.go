package persistence

import (
	"encoding/json"
	"time"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/domain/task"
)

// RepositoryMapper maps between domain Repository and persistence RepositoryModel.
type RepositoryMapper struct{}

// ToDomain converts a RepositoryModel to a domain Repository.
func (m RepositoryMapper) ToDomain(e RepositoryModel) analysis.Repository {
	var ingestedAt time.Time
	if e.IngestedAt != nil {
		ingestedAt = *e.IngestedAt
	}
	return analysis.ReconstructRepository(
		e.ID,
		e.UserID,
		e.Name,
		e.URL,
		e.IsPublic,
		e.CreatedAt,
		ingestedAt,
	)
}

// ToModel converts a domain Repository to a RepositoryModel.
func (m RepositoryMapper) ToModel(r analysis.Repository) RepositoryModel {
	var ingestedAt *time.Time
	if r.Ingested() {
		t := r.IngestedAt()
		ingestedAt = &t
	}
	return RepositoryModel{
		ID:         r.ID(),
		UserID:     r.UserID(),
		Name:       r.Name(),
		URL:        r.URL(),
		IsPublic:   r.IsPublic(),
		CreatedAt:  r.CreatedAt(),
		IngestedAt: ingestedAt,
	}
}

// JobMapper maps between domain Job and persistence JobModel.
type JobMapper struct{}

// ToDomain converts a JobModel to a domain Job.
func (m JobMapper) ToDomain(e JobModel) analysis.Job {
	return analysis.ReconstructJob(
		e.ID,
		e.UserID,
		e.RepositoryID,
		analysis.JobStatus(e.Status),
		e.Step,
		e.Log,
		e.Error,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Job to a JobModel.
func (m JobMapper) ToModel(j analysis.Job) JobModel {
	return JobModel{
		ID:           j.ID(),
		UserID:       j.UserID(),
		RepositoryID: j.RepositoryID(),
		Status:       string(j.Status()),
		Step:         j.Step(),
		Log:          j.Log(),
		Error:        j.Error(),
		CreatedAt:    j.CreatedAt(),
		UpdatedAt:    j.UpdatedAt(),
	}
}

// CommitMapper maps between domain Commit and persistence CommitModel.
type CommitMapper struct{}

// ToDomain converts a CommitModel to a domain Commit.
func (m CommitMapper) ToDomain(e CommitModel) analysis.Commit {
	return analysis.ReconstructCommit(
		e.ID,
		e.RepoID,
		e.Hash,
		e.AuthorName,
		e.AuthorEmail,
		e.AuthorDate,
		e.CommitterName,
		e.CommitterEmail,
		e.CommitterDate,
		e.Message,
		e.Classification,
		e.IsMerge,
		e.ContainsBug,
		e.IsLinked,
		decodeStrings(e.Fixes),
		decodeStrings(e.ParentHashes),
		e.CreatedAt,
	)
}

// ToModel converts a domain Commit to a CommitModel.
func (m CommitMapper) ToModel(c analysis.Commit) CommitModel {
	return CommitModel{
		ID:             c.ID(),
		RepoID:         c.RepoID(),
		Hash:           c.Hash(),
		AuthorName:     c.AuthorName(),
		AuthorEmail:    c.AuthorEmail(),
		AuthorDate:     c.AuthoredAt(),
		CommitterName:  c.CommitterName(),
		CommitterEmail: c.CommitterEmail(),
		CommitterDate:  c.CommittedAt(),
		Message:        c.Message(),
		Classification: c.Classification(),
		IsMerge:        c.IsMerge(),
		ContainsBug:    c.ContainsBug(),
		IsLinked:       c.IsLinked(),
		Fixes:          encodeStrings(c.Fixes()),
		ParentHashes:   encodeStrings(c.ParentHashes()),
		CreatedAt:      c.CreatedAt(),
	}
}

// MetricMapper maps between domain Metric and persistence MetricModel.
type MetricMapper struct{}

// ToDomain converts a MetricModel to a domain Metric.
func (m MetricMapper) ToDomain(e MetricModel) analysis.Metric {
	return analysis.NewMetric(e.CommitID, analysis.MetricValues{
		NS:      e.NS,
		ND:      e.ND,
		NF:      e.NF,
		Entropy: e.Entropy,
		LA:      e.LA,
		LD:      e.LD,
		LT:      e.LT,
		NDev:    e.NDev,
		Age:     e.Age,
		NUC:     e.NUC,
		Exp:     e.Exp,
		RExp:    e.RExp,
		SExp:    e.SExp,
	}, e.ComputedAt)
}

// ToModel converts a domain Metric to a MetricModel.
func (m MetricMapper) ToModel(metric analysis.Metric) MetricModel {
	v := metric.Values()
	return MetricModel{
		CommitID:   metric.CommitID(),
		NS:         v.NS,
		ND:         v.ND,
		NF:         v.NF,
		Entropy:    v.Entropy,
		LA:         v.LA,
		LD:         v.LD,
		LT:         v.LT,
		NDev:       v.NDev,
		Age:        v.Age,
		NUC:        v.NUC,
		Exp:        v.Exp,
		RExp:       v.RExp,
		SExp:       v.SExp,
		ComputedAt: metric.ComputedAt(),
	}
}

// TaskMapper maps between domain Task and persistence TaskModel.
type TaskMapper struct{}

// ToDomain converts a TaskModel to a domain Task.
func (m TaskMapper) ToDomain(e TaskModel) task.Task {
	var payload map[string]any
	if e.Payload != "" {
		_ = json.Unmarshal([]byte(e.Payload), &payload)
	}
	return task.ReconstructTask(
		e.ID,
		e.DedupKey,
		task.Operation(e.Operation),
		e.Priority,
		payload,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Task to a TaskModel.
func (m TaskMapper) ToModel(t task.Task) TaskModel {
	payload, err := t.PayloadJSON()
	if err != nil {
		payload = []byte("{}")
	}
	return TaskModel{
		ID:        t.ID(),
		DedupKey:  t.DedupKey(),
		Operation: t.Operation().String(),
		Priority:  t.Priority(),
		Payload:   string(payload),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}

// encodeStrings serializes a string slice as JSON for text column storage.
func encodeStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeStrings deserializes a JSON-encoded string slice.
func decodeStrings(data string) []string {
	if data == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil
	}
	return values
}
