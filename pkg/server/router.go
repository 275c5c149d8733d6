package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/augustcaio/portfolio-gateway/pkg/gateway"
	"github.com/augustcaio/portfolio-gateway/pkg/logging"
	"github.com/augustcaio/portfolio-gateway/pkg/mailer"
	"github.com/augustcaio/portfolio-gateway/pkg/metrics"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// ProjectsRefresher re-reads a repository listing past its snapshot
type ProjectsRefresher interface {
	RefreshRepositories(ctx context.Context, limit int) gateway.Result[[]types.Repository]
}

// Mailer delivers contact messages
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// Deps are the services behind the routes. Refresher, Mailer and Metrics
// are optional.
type Deps struct {
	Reader    gateway.Reader
	Refresher ProjectsRefresher
	Mailer    Mailer
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewRouter wires the routes and middleware of the service.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(RecoveryMiddleware(deps.Logger))
	r.Use(MetricsMiddleware(deps.Metrics))

	h := &Handlers{deps: deps}

	r.Get("/health", HealthHandler)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/github-user", h.GetProfile)
		r.Get("/github-stats", h.GetStats)
		r.Get("/projects", h.GetProjects)
		r.Post("/projects/refresh", h.RefreshProjects)
		r.Post("/send-email", h.SendEmail)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Err: errNotFound})
	})

	return r
}
