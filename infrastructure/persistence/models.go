package persistence

import "time"

// RepositoryModel is the GORM model for analyzed repositories.
type RepositoryModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	UserID     string `gorm:"column:user_id;index;not null"`
	Name       string `gorm:"not null"`
	URL        string `gorm:"uniqueIndex;not null"`
	IsPublic   bool   `gorm:"not null;default:true"`
	CreatedAt  time.Time
	IngestedAt *time.Time
}

// TableName returns the database table name.
func (RepositoryModel) TableName() string { return "repositories" }

// JobModel is the GORM model for analysis jobs.
type JobModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"column:user_id;index;not null"`
	RepositoryID int64  `gorm:"index;not null"`
	Status       string `gorm:"not null"`
	Step         string
	Log          string `gorm:"type:text"`
	Error        string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the database table name.
func (JobModel) TableName() string { return "jobs" }

// CommitModel is the GORM model for extracted commits.
// A commit hash is unique within a repository, not globally; forks of the
// same repository may carry the same hashes.
type CommitModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	RepoID         int64  `gorm:"column:repo_id;uniqueIndex:idx_commits_repo_hash;not null"`
	Hash           string `gorm:"uniqueIndex:idx_commits_repo_hash;size:64;not null"`
	AuthorName     string
	AuthorEmail    string
	AuthorDate     time.Time
	CommitterName  string
	CommitterEmail string
	CommitterDate  time.Time
	Message        string `gorm:"type:text"`
	Classification string `gorm:"index"`
	IsMerge        bool
	ContainsBug    bool `gorm:"index"`
	IsLinked       bool
	Fixes          string `gorm:"type:text"`
	ParentHashes   string `gorm:"type:text"`
	CreatedAt      time.Time
}

// TableName returns the database table name.
func (CommitModel) TableName() string { return "commits" }

// MetricModel is the GORM model for per-commit change metrics.
type MetricModel struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	CommitID   int64 `gorm:"uniqueIndex;not null"`
	NS         float64
	ND         float64
	NF         float64
	Entropy    float64
	LA         float64
	LD         float64
	LT         float64
	NDev       float64 `gorm:"column:ndev"`
	Age        float64
	NUC        float64 `gorm:"column:nuc"`
	Exp        float64
	RExp       float64 `gorm:"column:rexp"`
	SExp       float64 `gorm:"column:sexp"`
	ComputedAt time.Time
}

// TableName returns the database table name.
func (MetricModel) TableName() string { return "metrics" }

// TaskModel is the GORM model for queued tasks.
type TaskModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	DedupKey  string `gorm:"uniqueIndex:idx_tasks_dedup_key;not null"`
	Operation string `gorm:"not null"`
	Priority  int    `gorm:"index;not null"`
	Payload   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name.
func (TaskModel) TableName() string { return "tasks" }
