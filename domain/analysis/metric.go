package analysis

import "time"

// MetricValues holds the change metrics computed for one commit.
// Fields follow the standard defect-prediction feature set: diffusion
// (NS, ND, NF, entropy), size (LA, LD, LT), history (NDEV, age, NUC)
// and experience (EXP, REXP, SEXP). Missing values default to zero.
type MetricValues struct {
	NS      float64
	ND      float64
	NF      float64
	Entropy float64
	LA      float64
	LD      float64
	LT      float64
	NDev    float64
	Age     float64
	NUC     float64
	Exp     float64
	RExp    float64
	SExp    float64
}

// Metric associates computed MetricValues with a commit row.
// Each commit has at most one metric row; recomputation replaces it.
type Metric struct {
	commitID   int64
	values     MetricValues
	computedAt time.Time
}

// NewMetric creates a Metric for the given commit.
func NewMetric(commitID int64, values MetricValues, computedAt time.Time) Metric {
	return Metric{
		commitID:   commitID,
		values:     values,
		computedAt: computedAt,
	}
}

// CommitID returns the owning commit's row ID.
func (m Metric) CommitID() int64 { return m.commitID }

// Values returns the computed metric values.
func (m Metric) Values() MetricValues { return m.values }

// ComputedAt returns when the metrics were computed.
func (m Metric) ComputedAt() time.Time { return m.computedAt }
