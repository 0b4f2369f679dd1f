package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/defectlens/defectlens"
	"github.com/defectlens/defectlens/application/service"
	"github.com/defectlens/defectlens/domain/analysis"
	"github.com/defectlens/defectlens/infrastructure/api/middleware"
	"github.com/defectlens/defectlens/infrastructure/api/v1/dto"
)

// RepositoriesRouter handles the read-side repository endpoints.
type RepositoriesRouter struct {
	client *defectlens.Client
	logger *slog.Logger
}

// NewRepositoriesRouter creates a new RepositoriesRouter.
func NewRepositoriesRouter(client *defectlens.Client) *RepositoriesRouter {
	return &RepositoriesRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for repository endpoints.
func (r *RepositoriesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{id}", r.Get)
	router.Get("/{id}/commits", r.ListCommits)
	router.Get("/{id}/metrics", r.ListMetrics)

	return router
}

// List handles GET /api/v1/repositories.
func (r *RepositoriesRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	repos, err := r.client.Repositories.List(ctx, pagination.Options()...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Repositories.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.ListResponse[dto.Repository]{
		Data: reposToDTO(repos),
		Meta: PaginationMeta(pagination, total),
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/repositories/{id}.
func (r *RepositoriesRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := parseID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	repo, err := r.client.Repositories.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, repoToDTO(repo))
}

// ListCommits handles GET /api/v1/repositories/{id}/commits.
// Supports an optional classification filter and a contains_bug flag.
func (r *RepositoriesRouter) ListCommits(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := parseID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if _, err := r.client.Repositories.Get(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	params := &service.CommitListParams{
		Classification: req.URL.Query().Get("classification"),
		OnlyBuggy:      req.URL.Query().Get("contains_bug") == "true",
		Limit:          pagination.Limit(),
		Offset:         pagination.Offset(),
	}

	commits, err := r.client.Commits.ListForRepository(ctx, id, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Commits.CountForRepository(ctx, id, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.ListResponse[dto.Commit]{
		Data: commitsToDTO(commits),
		Meta: PaginationMeta(pagination, total),
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// ListMetrics handles GET /api/v1/repositories/{id}/metrics.
func (r *RepositoriesRouter) ListMetrics(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := parseID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if _, err := r.client.Repositories.Get(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	rows, err := r.client.Metrics.ListForRepository(ctx, id, pagination.Options()...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.ListResponse[dto.Metric]{
		Data: metricsToDTO(rows),
		Meta: Meta{"page": pagination.Page(), "page_size": pagination.PageSize()},
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

func parseID(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid repository id", middleware.ErrBadRequest)
	}
	return id, nil
}

func repoToDTO(repo analysis.Repository) dto.Repository {
	d := dto.Repository{
		ID:        repo.ID(),
		UserID:    repo.UserID(),
		Name:      repo.Name(),
		URL:       repo.URL(),
		IsPublic:  repo.IsPublic(),
		CreatedAt: repo.CreatedAt(),
	}
	if repo.Ingested() {
		t := repo.IngestedAt()
		d.IngestedAt = &t
	}
	return d
}

func reposToDTO(repos []analysis.Repository) []dto.Repository {
	out := make([]dto.Repository, len(repos))
	for i, repo := range repos {
		out[i] = repoToDTO(repo)
	}
	return out
}

func commitsToDTO(commits []analysis.Commit) []dto.Commit {
	out := make([]dto.Commit, len(commits))
	for i, c := range commits {
		out[i] = dto.Commit{
			ID:             c.ID(),
			RepositoryID:   c.RepoID(),
			Hash:           c.Hash(),
			AuthorName:     c.AuthorName(),
			AuthorEmail:    c.AuthorEmail(),
			AuthoredDate:   c.AuthoredAt(),
			CommitterName:  c.CommitterName(),
			CommitterEmail: c.CommitterEmail(),
			CommittedDate:  c.CommittedAt(),
			Message:        c.Message(),
			Classification: c.Classification(),
			IsMerged:       c.IsMerge(),
			ContainsBug:    c.ContainsBug(),
			IsLinked:       c.IsLinked(),
			Fixes:          c.Fixes(),
			ParentHashes:   c.ParentHashes(),
		}
	}
	return out
}

func metricsToDTO(rows []analysis.CommitMetric) []dto.Metric {
	out := make([]dto.Metric, len(rows))
	for i, row := range rows {
		values := row.Metric.Values()
		out[i] = dto.Metric{
			CommitHash: row.CommitHash,
			NS:         values.NS,
			ND:         values.ND,
			NF:         values.NF,
			Entropy:    values.Entropy,
			LA:         values.LA,
			LD:         values.LD,
			LT:         values.LT,
			NDev:       values.NDev,
			Age:        values.Age,
			NUC:        values.NUC,
			Exp:        values.Exp,
			RExp:       values.RExp,
			SExp:       values.SExp,
			ComputedAt: row.Metric.ComputedAt(),
		}
	}
	return out
}
