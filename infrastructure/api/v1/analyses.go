package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/defectlens/defectlens"
	"github.com/defectlens/defectlens/application/service"
	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/infrastructure/api/middleware"
	"github.com/defectlens/defectlens/infrastructure/api/v1/dto"
	"github.com/defectlens/defectlens/infrastructure/notify"
)

// AnalysesRouter handles analysis submission, job reads and the live
// job event stream.
type AnalysesRouter struct {
	client   *defectlens.Client
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewAnalysesRouter creates a new AnalysesRouter.
func NewAnalysesRouter(client *defectlens.Client) *AnalysesRouter {
	return &AnalysesRouter{
		client:   client,
		notifier: client.Notifier(),
		logger:   client.Logger(),
	}
}

// Routes returns the chi router for analysis endpoints.
func (r *AnalysesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Submit)
	router.Get("/{id}", r.Get)
	router.Get("/{id}/events", r.Events)

	return router
}

// Submit handles POST /api/v1/analyses.
func (r *AnalysesRouter) Submit(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.SubmitAnalysisRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: decode body: %v", middleware.ErrBadRequest, err), r.logger)
		return
	}
	if body.UserID == "" || body.RepositoryURL == "" {
		middleware.WriteError(w, req,
			fmt.Errorf("%w: userId and repositoryUrl are required", middleware.ErrBadRequest), r.logger)
		return
	}

	result, err := r.client.Analyses.Submit(ctx, service.SubmitParams{
		UserID:        body.UserID,
		RepositoryURL: body.RepositoryURL,
		Branch:        body.Branch,
		Token:         body.Token,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.SubmitAnalysisResponse{
		Success: true,
		JobID:   result.JobID,
	}
	if result.ExistingRepo {
		response.ExistingRepoLink = fmt.Sprintf("/api/v1/repositories/%d", result.RepositoryID)
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/analyses/{id}.
func (r *AnalysesRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	job, err := r.client.Analyses.Job(ctx, chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jobToDTO(job))
}

// Events handles GET /api/v1/analyses/{id}/events.
//
// The response is a text/event-stream. The current job state is emitted
// as the first frame, followed by live transitions; the stream closes
// after a terminal frame or when the client disconnects.
func (r *AnalysesRouter) Events(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	jobID := chi.URLParam(req, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.WriteError(w, req, fmt.Errorf("streaming unsupported"), r.logger)
		return
	}

	// Subscribe before reading the row so no transition between the
	// snapshot and the first live event is lost.
	sub := r.notifier.Subscribe(jobID)
	defer sub.Cancel()

	job, err := r.client.Analyses.Job(ctx, jobID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEventFrame(w, flusher, job.Event())
	if job.Status().IsTerminal() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.C():
			if !ok {
				return
			}
			if event.JobID() != jobID {
				continue
			}
			writeEventFrame(w, flusher, event)
			if event.Terminal() {
				return
			}
		}
	}
}

func writeEventFrame(w http.ResponseWriter, flusher http.Flusher, event analysis.JobEvent) {
	payload, err := json.Marshal(dto.JobEvent{
		ID:     event.JobID(),
		Status: event.Status().String(),
		Step:   event.Step(),
		Error:  event.Error(),
	})
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}

func jobToDTO(job analysis.Job) dto.Job {
	return dto.Job{
		ID:           job.ID(),
		UserID:       job.UserID(),
		RepositoryID: job.RepositoryID(),
		Status:       job.Status().String(),
		Step:         job.Step(),
		Log:          job.Log(),
		Error:        job.Error(),
		CreatedAt:    job.CreatedAt(),
		UpdatedAt:    job.UpdatedAt(),
	}
}
