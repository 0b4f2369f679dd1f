package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defectlens/defectlens/domain/task"
	"github.com/defectlens/defectlens/infrastructure/persistence"
	"github.com/defectlens/defectlens/internal/testdb"
)

func TestTaskStore_SaveDeduplicates(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewTaskStore(db)

	payload := map[string]any{"job_id": "job-1"}

	first, err := store.Save(ctx, task.NewTask(task.OperationAnalyzeRepository, int(task.PriorityNormal), payload))
	require.NoError(t, err)
	assert.NotZero(t, first.ID())

	// Re-submitting the same job updates the row instead of queueing twice.
	second, err := store.Save(ctx, task.NewTask(task.OperationAnalyzeRepository, int(task.PriorityUserInitiated), payload))
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, int(task.PriorityUserInitiated), second.Priority())

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTaskStore_Dequeue_PriorityOrder(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewTaskStore(db)

	_, err := store.Save(ctx, task.NewTask(task.OperationAnalyzeRepository, int(task.PriorityBackground), map[string]any{"job_id": "low"}))
	require.NoError(t, err)
	_, err = store.Save(ctx, task.NewTask(task.OperationAnalyzeRepository, int(task.PriorityUserInitiated), map[string]any{"job_id": "high"}))
	require.NoError(t, err)

	claimed, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "high", claimed.Payload()["job_id"])

	claimed, ok, err = store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "low", claimed.Payload()["job_id"])

	_, ok, err = store.Dequeue(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTaskStore_Dequeue_RemovesClaimedTask(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewTaskStore(db)

	_, err := store.Save(ctx, task.NewTask(task.OperationAnalyzeRepository, 0, map[string]any{"job_id": "job-1"}))
	require.NoError(t, err)

	claimed, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, task.OperationAnalyzeRepository, claimed.Operation())

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTaskStore_PayloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewTaskStore(db)

	payload := map[string]any{
		"job_id":         "job-1",
		"repository_url": "https://example.com/a.git",
	}
	saved, err := store.Save(ctx, task.NewTask(task.OperationAnalyzeRepository, 0, payload))
	require.NoError(t, err)

	loaded, err := store.Get(ctx, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, "job-1", loaded.Payload()["job_id"])
	assert.Equal(t, "https://example.com/a.git", loaded.Payload()["repository_url"])
}
