package analysis

import "time"

// Repository represents a source repository registered for analysis.
// Registration is idempotent by URL: submitting the same URL again
// reuses the existing row.
type Repository struct {
	id         int64
	userID     string
	name       string
	url        string
	isPublic   bool
	createdAt  time.Time
	ingestedAt time.Time
}

// NewRepository creates a Repository pending its first analysis.
func NewRepository(userID, name, url string, isPublic bool) Repository {
	return Repository{
		userID:   userID,
		name:     name,
		url:      url,
		isPublic: isPublic,
	}
}

// ReconstructRepository rebuilds a Repository from stored fields.
func ReconstructRepository(
	id int64,
	userID, name, url string,
	isPublic bool,
	createdAt, ingestedAt time.Time,
) Repository {
	return Repository{
		id:         id,
		userID:     userID,
		name:       name,
		url:        url,
		isPublic:   isPublic,
		createdAt:  createdAt,
		ingestedAt: ingestedAt,
	}
}

// ID returns the repository ID.
func (r Repository) ID() int64 { return r.id }

// UserID returns the registering user's ID.
func (r Repository) UserID() string { return r.userID }

// Name returns the repository display name.
func (r Repository) Name() string { return r.name }

// URL returns the remote URL.
func (r Repository) URL() string { return r.url }

// IsPublic reports whether the repository is publicly visible.
func (r Repository) IsPublic() bool { return r.isPublic }

// CreatedAt returns when the repository was registered.
func (r Repository) CreatedAt() time.Time { return r.createdAt }

// IngestedAt returns when the last successful analysis finished,
// zero if the repository has never been fully analyzed.
func (r Repository) IngestedAt() time.Time { return r.ingestedAt }

// Ingested reports whether at least one analysis has completed.
func (r Repository) Ingested() bool { return !r.ingestedAt.IsZero() }

// WithID returns a copy with the given ID (used by stores).
func (r Repository) WithID(id int64) Repository {
	r.id = id
	return r
}

// MarkIngested returns a copy stamped with the given ingestion time.
func (r Repository) MarkIngested(t time.Time) Repository {
	r.ingestedAt = t
	return r
}
