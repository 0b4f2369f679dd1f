package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/infrastructure/persistence"
	"github.com/defectlens/defectlens/internal/testdb"
)

func TestJobStore_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewJobStore(db)

	job, err := store.Create(ctx, analysis.NewJob("job-1", "user-1", 7))
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusQueued, job.Status())

	changed, err := store.Update(ctx, job.Advance("Cloning repository", "Cloning repository"))
	require.NoError(t, err)
	assert.True(t, changed)

	loaded, err := store.FindOne(ctx, analysis.WithJobID("job-1"))
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusInProgress, loaded.Status())
	assert.Equal(t, "Cloning repository", loaded.Step())
}

func TestJobStore_Update_TerminalRowsStay(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewJobStore(db)

	job, err := store.Create(ctx, analysis.NewJob("job-1", "user-1", 7))
	require.NoError(t, err)

	changed, err := store.Update(ctx, job.Complete())
	require.NoError(t, err)
	assert.True(t, changed)

	// A stale writer racing the completion must not revive the job.
	changed, err = store.Update(ctx, job.Advance("Computing metrics", ""))
	require.NoError(t, err)
	assert.False(t, changed)

	loaded, err := store.FindOne(ctx, analysis.WithJobID("job-1"))
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusCompleted, loaded.Status())
	assert.Equal(t, analysis.FinalStep, loaded.Step())
}

func TestJobStore_Update_ErrorSticks(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewJobStore(db)

	job, err := store.Create(ctx, analysis.NewJob("job-1", "user-1", 7))
	require.NoError(t, err)

	_, err = store.Update(ctx, job.Fail("clone failed: repository not found"))
	require.NoError(t, err)

	changed, err := store.Update(ctx, job.Complete())
	require.NoError(t, err)
	assert.False(t, changed)

	loaded, err := store.FindOne(ctx, analysis.WithJobID("job-1"))
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusError, loaded.Status())
	assert.Equal(t, "clone failed: repository not found", loaded.Error())
}

func TestJobStore_FindByUser(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewJobStore(db)

	_, err := store.Create(ctx, analysis.NewJob("job-1", "user-1", 1))
	require.NoError(t, err)
	_, err = store.Create(ctx, analysis.NewJob("job-2", "user-2", 1))
	require.NoError(t, err)

	jobs, err := store.Find(ctx, analysis.WithUserID("user-1"))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID())
}
