package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/infrastructure/persistence"
	"github.com/defectlens/defectlens/internal/testdb"
)

func TestMetricStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repo := seedRepository(t, db, "https://example.com/a.git")

	commitStore := persistence.NewCommitStore(db)
	_, err := commitStore.InsertAll(ctx, []analysis.Commit{
		analysis.NewCommit(repo.ID(), "c1", "m", "none"),
	})
	require.NoError(t, err)

	commit, err := commitStore.FindOne(ctx, analysis.WithRepoID(repo.ID()), analysis.WithHash("c1"))
	require.NoError(t, err)

	store := persistence.NewMetricStore(db)
	now := time.Now().UTC()

	err = store.Upsert(ctx, []analysis.Metric{
		analysis.NewMetric(commit.ID(), analysis.MetricValues{NS: 1, LA: 10}, now),
	})
	require.NoError(t, err)

	// Recomputation replaces the row instead of adding a second one.
	err = store.Upsert(ctx, []analysis.Metric{
		analysis.NewMetric(commit.ID(), analysis.MetricValues{NS: 2, LA: 20, Entropy: 0.5}, now.Add(time.Hour)),
	})
	require.NoError(t, err)

	count, err := store.Count(ctx, analysis.WithCommitID(commit.ID()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	metric, err := store.FindOne(ctx, analysis.WithCommitID(commit.ID()))
	require.NoError(t, err)
	assert.Equal(t, 2.0, metric.Values().NS)
	assert.Equal(t, 20.0, metric.Values().LA)
	assert.Equal(t, 0.5, metric.Values().Entropy)
}

func TestMetricStore_FindForRepository(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repoA := seedRepository(t, db, "https://example.com/a.git")
	repoB := seedRepository(t, db, "https://example.com/b.git")

	commitStore := persistence.NewCommitStore(db)
	_, err := commitStore.InsertAll(ctx, []analysis.Commit{
		analysis.NewCommit(repoA.ID(), "a1", "m", "none"),
		analysis.NewCommit(repoA.ID(), "a2", "m", "none"),
		analysis.NewCommit(repoB.ID(), "b1", "m", "none"),
	})
	require.NoError(t, err)

	commits, err := commitStore.Find(ctx)
	require.NoError(t, err)

	store := persistence.NewMetricStore(db)
	now := time.Now().UTC()
	metrics := make([]analysis.Metric, len(commits))
	for i, c := range commits {
		metrics[i] = analysis.NewMetric(c.ID(), analysis.MetricValues{NF: float64(i + 1)}, now)
	}
	require.NoError(t, store.Upsert(ctx, metrics))

	got, err := store.FindForRepository(ctx, repoA.ID())
	require.NoError(t, err)
	require.Len(t, got, 2)

	hashes := []string{got[0].CommitHash, got[1].CommitHash}
	assert.ElementsMatch(t, []string{"a1", "a2"}, hashes)
}
