package analysis

// WithID filters by the "id" column.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithJobID filters by the "id" column for string (UUID) keyed rows.
func WithJobID(id string) Option {
	return WithCondition("id", id)
}

// WithRepoID filters by the "repo_id" column.
func WithRepoID(id int64) Option {
	return WithCondition("repo_id", id)
}

// WithRepositoryID filters by the "repository_id" column.
func WithRepositoryID(id int64) Option {
	return WithCondition("repository_id", id)
}

// WithURL filters by the "url" column.
func WithURL(url string) Option {
	return WithCondition("url", url)
}

// WithUserID filters by the "user_id" column.
func WithUserID(id string) Option {
	return WithCondition("user_id", id)
}

// WithHash filters by the "hash" column.
func WithHash(hash string) Option {
	return WithCondition("hash", hash)
}

// WithHashIn filters by the "hash" column using IN.
func WithHashIn(hashes []string) Option {
	return WithConditionIn("hash", hashes)
}

// WithClassification filters by the "classification" column.
func WithClassification(c string) Option {
	return WithCondition("classification", c)
}

// WithCommitID filters by the "commit_id" column.
func WithCommitID(id int64) Option {
	return WithCondition("commit_id", id)
}

// WithCommitIDIn filters by the "commit_id" column using IN.
func WithCommitIDIn(ids []int64) Option {
	return WithConditionIn("commit_id", ids)
}

// WithStatus filters by the "status" column.
func WithStatus(status JobStatus) Option {
	return WithCondition("status", string(status))
}
