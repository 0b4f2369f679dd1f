package analysis

import (
	"strings"
	"time"
)

// ClassificationNone is the default commit classification.
const ClassificationNone = "none"

// ClassificationCorrective marks bug-fixing commits. The bug-linking
// stage only considers commits with this classification.
const ClassificationCorrective = "corrective"

// NormalizeClassification lowercases a classification label and maps
// empty values to ClassificationNone.
func NormalizeClassification(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return ClassificationNone
	}
	return c
}

// Commit represents a mined commit of an analyzed repository.
// The (repository, hash) pair is unique; re-analysis keeps the first
// written row for a hash.
type Commit struct {
	id             int64
	repoID         int64
	hash           string
	authorName     string
	authorEmail    string
	authoredAt     time.Time
	committerName  string
	committerEmail string
	committedAt    time.Time
	message        string
	classification string
	isMerge        bool
	containsBug    bool
	isLinked       bool
	fixes          []string
	parentHashes   []string
	createdAt      time.Time
}

// NewCommit creates a Commit for the given repository and hash.
// The classification is normalized; empty becomes "none".
func NewCommit(repoID int64, hash, message, classification string) Commit {
	return Commit{
		repoID:         repoID,
		hash:           hash,
		message:        message,
		classification: NormalizeClassification(classification),
	}
}

// ReconstructCommit rebuilds a Commit from stored fields.
func ReconstructCommit(
	id, repoID int64,
	hash string,
	authorName, authorEmail string,
	authoredAt time.Time,
	committerName, committerEmail string,
	committedAt time.Time,
	message, classification string,
	isMerge, containsBug, isLinked bool,
	fixes, parentHashes []string,
	createdAt time.Time,
) Commit {
	return Commit{
		id:             id,
		repoID:         repoID,
		hash:           hash,
		authorName:     authorName,
		authorEmail:    authorEmail,
		authoredAt:     authoredAt,
		committerName:  committerName,
		committerEmail: committerEmail,
		committedAt:    committedAt,
		message:        message,
		classification: NormalizeClassification(classification),
		isMerge:        isMerge,
		containsBug:    containsBug,
		isLinked:       isLinked,
		fixes:          copyStrings(fixes),
		parentHashes:   copyStrings(parentHashes),
		createdAt:      createdAt,
	}
}

// ID returns the commit row ID.
func (c Commit) ID() int64 { return c.id }

// RepoID returns the owning repository's ID.
func (c Commit) RepoID() int64 { return c.repoID }

// Hash returns the commit hash.
func (c Commit) Hash() string { return c.hash }

// AuthorName returns the author name.
func (c Commit) AuthorName() string { return c.authorName }

// AuthorEmail returns the author email.
func (c Commit) AuthorEmail() string { return c.authorEmail }

// AuthoredAt returns the author timestamp.
func (c Commit) AuthoredAt() time.Time { return c.authoredAt }

// CommitterName returns the committer name.
func (c Commit) CommitterName() string { return c.committerName }

// CommitterEmail returns the committer email.
func (c Commit) CommitterEmail() string { return c.committerEmail }

// CommittedAt returns the commit timestamp.
func (c Commit) CommittedAt() time.Time { return c.committedAt }

// Message returns the commit message.
func (c Commit) Message() string { return c.message }

// Classification returns the normalized classification label.
func (c Commit) Classification() string { return c.classification }

// IsMerge reports whether the commit is a merge commit.
func (c Commit) IsMerge() bool { return c.isMerge }

// ContainsBug reports whether a later fix was linked back to this commit.
func (c Commit) ContainsBug() bool { return c.containsBug }

// IsLinked reports whether this commit was linked as a fix of earlier commits.
func (c Commit) IsLinked() bool { return c.isLinked }

// Fixes returns the hashes of the bug-inducing commits this commit fixes.
func (c Commit) Fixes() []string { return copyStrings(c.fixes) }

// ParentHashes returns the commit's parent hashes.
func (c Commit) ParentHashes() []string { return copyStrings(c.parentHashes) }

// CreatedAt returns when the row was written.
func (c Commit) CreatedAt() time.Time { return c.createdAt }

// IsCorrective reports whether the commit is classified as bug-fixing.
func (c Commit) IsCorrective() bool {
	return c.classification == ClassificationCorrective
}

// WithAuthor returns a copy with author identity and timestamp set.
func (c Commit) WithAuthor(name, email string, at time.Time) Commit {
	c.authorName = name
	c.authorEmail = email
	c.authoredAt = at
	return c
}

// WithCommitter returns a copy with committer identity and timestamp set.
func (c Commit) WithCommitter(name, email string, at time.Time) Commit {
	c.committerName = name
	c.committerEmail = email
	c.committedAt = at
	return c
}

// WithParentHashes returns a copy with the parent hashes set.
func (c Commit) WithParentHashes(hashes []string) Commit {
	c.parentHashes = copyStrings(hashes)
	return c
}

// WithMerge returns a copy with the merge flag set.
func (c Commit) WithMerge(isMerge bool) Commit {
	c.isMerge = isMerge
	return c
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
