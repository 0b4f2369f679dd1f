package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/infrastructure/persistence"
	"github.com/defectlens/defectlens/internal/database"
	"github.com/defectlens/defectlens/internal/testdb"
)

func seedRepository(t *testing.T, db database.Database, url string) analysis.Repository {
	t.Helper()
	store := persistence.NewRepositoryStore(db)
	repo, _, err := store.GetOrCreate(context.Background(), analysis.NewRepository("user-1", "demo", url, true))
	require.NoError(t, err)
	return repo
}

func TestCommitStore_InsertAll_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repo := seedRepository(t, db, "https://example.com/a.git")
	store := persistence.NewCommitStore(db)

	now := time.Now().UTC()
	commits := []analysis.Commit{
		analysis.NewCommit(repo.ID(), "aaa111", "fix: crash on empty input", "corrective").
			WithAuthor("Alice", "alice@example.com", now),
		analysis.NewCommit(repo.ID(), "bbb222", "add feature", "feature addition"),
	}

	inserted, err := store.InsertAll(ctx, commits)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	// Re-running the extraction stage must not duplicate rows.
	inserted, err = store.InsertAll(ctx, commits)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	count, err := store.Count(ctx, analysis.WithRepoID(repo.ID()))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCommitStore_SameHashAcrossRepositories(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repoA := seedRepository(t, db, "https://example.com/a.git")
	repoB := seedRepository(t, db, "https://example.com/b.git")
	store := persistence.NewCommitStore(db)

	_, err := store.InsertAll(ctx, []analysis.Commit{analysis.NewCommit(repoA.ID(), "aaa111", "m", "none")})
	require.NoError(t, err)

	inserted, err := store.InsertAll(ctx, []analysis.Commit{analysis.NewCommit(repoB.ID(), "aaa111", "m", "none")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)
}

func TestCommitStore_ApplyBugLinks(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repo := seedRepository(t, db, "https://example.com/a.git")
	store := persistence.NewCommitStore(db)

	_, err := store.InsertAll(ctx, []analysis.Commit{
		analysis.NewCommit(repo.ID(), "fix1", "fix the bug", "corrective"),
		analysis.NewCommit(repo.ID(), "inducer1", "introduce bug", "feature addition"),
		analysis.NewCommit(repo.ID(), "inducer2", "another change", "none"),
	})
	require.NoError(t, err)

	err = store.ApplyBugLinks(ctx, repo.ID(), []analysis.BugLink{
		{BuggyCommit: "fix1", LinkedTo: []string{"inducer1", "inducer2"}},
	})
	require.NoError(t, err)

	fix, err := store.FindOne(ctx, analysis.WithRepoID(repo.ID()), analysis.WithHash("fix1"))
	require.NoError(t, err)
	assert.True(t, fix.IsLinked())
	assert.Equal(t, []string{"inducer1", "inducer2"}, fix.Fixes())
	assert.False(t, fix.ContainsBug())

	for _, hash := range []string{"inducer1", "inducer2"} {
		c, err := store.FindOne(ctx, analysis.WithRepoID(repo.ID()), analysis.WithHash(hash))
		require.NoError(t, err)
		assert.True(t, c.ContainsBug(), hash)
		assert.False(t, c.IsLinked(), hash)
	}
}

func TestCommitStore_ApplyBugLinks_UnknownHashesSkipped(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repo := seedRepository(t, db, "https://example.com/a.git")
	store := persistence.NewCommitStore(db)

	_, err := store.InsertAll(ctx, []analysis.Commit{
		analysis.NewCommit(repo.ID(), "fix1", "fix", "corrective"),
	})
	require.NoError(t, err)

	err = store.ApplyBugLinks(ctx, repo.ID(), []analysis.BugLink{
		{BuggyCommit: "not-stored", LinkedTo: []string{"fix1"}},
		{BuggyCommit: "fix1", LinkedTo: []string{"missing-inducer"}},
	})
	require.NoError(t, err)

	fix, err := store.FindOne(ctx, analysis.WithRepoID(repo.ID()), analysis.WithHash("fix1"))
	require.NoError(t, err)
	assert.True(t, fix.IsLinked())
	assert.Equal(t, []string{"missing-inducer"}, fix.Fixes())
	assert.False(t, fix.ContainsBug())
}

func TestCommitStore_ApplyBugLinks_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repo := seedRepository(t, db, "https://example.com/a.git")
	store := persistence.NewCommitStore(db)

	_, err := store.InsertAll(ctx, []analysis.Commit{
		analysis.NewCommit(repo.ID(), "buggy1", "introduce bug", "none"),
		analysis.NewCommit(repo.ID(), "fix1", "fix the bug", "corrective"),
	})
	require.NoError(t, err)

	links := []analysis.BugLink{{BuggyCommit: "fix1", LinkedTo: []string{"buggy1"}}}
	require.NoError(t, store.ApplyBugLinks(ctx, repo.ID(), links))
	require.NoError(t, store.ApplyBugLinks(ctx, repo.ID(), links))

	fix, err := store.FindOne(ctx, analysis.WithRepoID(repo.ID()), analysis.WithHash("fix1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"buggy1"}, fix.Fixes())
}

func TestCommitStore_FindByClassification(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repo := seedRepository(t, db, "https://example.com/a.git")
	store := persistence.NewCommitStore(db)

	_, err := store.InsertAll(ctx, []analysis.Commit{
		analysis.NewCommit(repo.ID(), "c1", "fix", "corrective"),
		analysis.NewCommit(repo.ID(), "c2", "feat", "feature addition"),
		analysis.NewCommit(repo.ID(), "c3", "fix again", "Corrective"),
	})
	require.NoError(t, err)

	corrective, err := store.Find(ctx,
		analysis.WithRepoID(repo.ID()),
		analysis.WithClassification(analysis.ClassificationCorrective),
	)
	require.NoError(t, err)
	assert.Len(t, corrective, 2)
}
