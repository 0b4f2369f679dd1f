package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/defectlens/defectlens"
	"github.com/defectlens/defectlens/application/service"
	"github.com/defectlens/defectlens/domain/task"
	"github.com/defectlens/defectlens/infrastructure/api/middleware"
	"github.com/defectlens/defectlens/infrastructure/api/v1/dto"
)

// QueueRouter exposes the pending task queue, read-only.
type QueueRouter struct {
	client *defectlens.Client
	logger *slog.Logger
}

// NewQueueRouter creates a new QueueRouter.
func NewQueueRouter(client *defectlens.Client) *QueueRouter {
	return &QueueRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for queue endpoints.
func (r *QueueRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)

	return router
}

// List handles GET /api/v1/queue.
func (r *QueueRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	tasks, err := r.client.Tasks.List(ctx, &service.TaskListParams{
		Limit:  pagination.Limit(),
		Offset: pagination.Offset(),
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Tasks.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.ListResponse[dto.Task]{
		Data: tasksToDTO(tasks),
		Meta: PaginationMeta(pagination, total),
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

func tasksToDTO(tasks []task.Task) []dto.Task {
	out := make([]dto.Task, len(tasks))
	for i, t := range tasks {
		out[i] = dto.Task{
			ID:        t.ID(),
			Operation: t.Operation().String(),
			Priority:  t.Priority(),
			CreatedAt: t.CreatedAt(),
		}
	}
	return out
}
