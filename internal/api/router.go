package api

import (
	"daily-routine-service/internal/api/handlers"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/metrics"
	"daily-routine-service/internal/ports"
	"database/sql"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	// DB is only pinged by the health check; nil skips the ping.
	DB         *sql.DB
	Categories ports.CategoryRepository
	Routines   ports.RoutineRepository
	Planner    handlers.RoutinePlanner
	Seed       func() ([]domain.Category, error)
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{DB: d.DB}
	categoryHandler := &handlers.CategoryHandler{
		Repo:     d.Categories,
		Validate: validator.New(),
		Seed:     d.Seed,
	}
	routineHandler := &handlers.RoutineHandler{
		Planner:  d.Planner,
		Routines: d.Routines,
	}

	mux.HandleFunc("/health", healthHandler.Health)

	mux.HandleFunc("GET /categories", categoryHandler.List)
	mux.HandleFunc("POST /categories", categoryHandler.Create)
	mux.HandleFunc("POST /categories/reset", categoryHandler.Reset)
	mux.HandleFunc("PUT /categories/{id}", categoryHandler.Update)
	mux.HandleFunc("DELETE /categories/{id}", categoryHandler.Delete)

	mux.HandleFunc("POST /routines", routineHandler.Plan)
	mux.HandleFunc("GET /routines/{id}", routineHandler.Get)
	mux.HandleFunc("POST /routines/{id}/activities/{index}/complete", routineHandler.Complete)
	mux.HandleFunc("POST /routines/{id}/activities/{index}/skip", routineHandler.Skip)
	mux.HandleFunc("GET /routines/{id}/route", routineHandler.Route)
	mux.HandleFunc("GET /routines/{id}/next", routineHandler.Next)

	mux.Handle("GET /metrics", d.Metrics.Handler())

	logger := d.Logger
	if logger == nil {
		logger = zap.L()
	}
	return requestMiddleware(mux, logger, d.Metrics)
}
