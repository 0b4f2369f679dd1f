package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/defectlens/defectlens"
	apimiddleware "github.com/defectlens/defectlens/infrastructure/api/middleware"
	v1 "github.com/defectlens/defectlens/infrastructure/api/v1"
)

// APIServer provides an HTTP API backed by a defectlens Client.
type APIServer struct {
	client       *defectlens.Client
	corsOrigins  []string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given defectlens
// Client. corsOrigins lists the browser origins allowed to call the
// API; empty means no CORS headers are emitted.
func NewAPIServer(client *defectlens.Client, corsOrigins []string) *APIServer {
	return &APIServer{
		client:      client,
		corsOrigins: corsOrigins,
		logger:      client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call
// MountRoutes(). If not called, ListenAndServe creates a default router
// with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all v1 API routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	if len(a.corsOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	router.Use(apimiddleware.Logging(a.logger))

	analysesRouter := v1.NewAnalysesRouter(c)
	reposRouter := v1.NewRepositoriesRouter(c)
	queueRouter := v1.NewQueueRouter(c)

	router.Route("/api/v1", func(r chi.Router) {
		// The analyses group carries the event stream, which is
		// incompatible with chi's Timeout middleware.
		r.Mount("/analyses", analysesRouter.Routes())

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(60 * time.Second))
			r.Mount("/repositories", reposRouter.Routes())
			r.Mount("/queue", queueRouter.Routes())
		})
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
