package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defectlens/defectlens/application/service"
	"github.com/defectlens/defectlens/domain/task"
	"github.com/defectlens/defectlens/infrastructure/persistence"
	"github.com/defectlens/defectlens/internal/testdb"
)

func newQueue(t *testing.T) *service.Queue {
	t.Helper()
	db := testdb.New(t)
	return service.NewQueue(persistence.NewTaskStore(db), slog.Default())
}

func TestQueue_EnqueueDeduplicates(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)

	payload := map[string]any{"job_id": "job-1"}
	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationAnalyzeRepository, 100, payload)))
	require.NoError(t, queue.Enqueue(ctx, task.NewTask(task.OperationAnalyzeRepository, 200, payload)))

	count, err := queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	tasks, err := queue.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 200, tasks[0].Priority())
}

func TestQueue_ListOrdersByPriority(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)

	low := task.NewTask(task.OperationAnalyzeRepository, 10, map[string]any{"job_id": "low"})
	high := task.NewTask(task.OperationAnalyzeRepository, 500, map[string]any{"job_id": "high"})
	require.NoError(t, queue.Enqueue(ctx, low))
	require.NoError(t, queue.Enqueue(ctx, high))

	tasks, err := queue.List(ctx, &service.TaskListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "high", tasks[0].Payload()["job_id"])
	assert.Equal(t, "low", tasks[1].Payload()["job_id"])
}

func TestQueue_ListFiltersByOperation(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)

	require.NoError(t, queue.Enqueue(ctx,
		task.NewTask(task.OperationAnalyzeRepository, 100, map[string]any{"job_id": "job-1"})))

	other := task.Operation("defectlens.other")
	tasks, err := queue.List(ctx, &service.TaskListParams{Operation: &other})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	want := task.OperationAnalyzeRepository
	tasks, err = queue.List(ctx, &service.TaskListParams{Operation: &want})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
