package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"todo/internal/model"
	"todo/internal/service"
)

// TaskService is the subset of the service layer the HTTP API calls.
type TaskService interface {
	ListAll(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	ListCompleted(ctx context.Context) ([]model.Task, error)
	ListIncomplete(ctx context.Context) ([]model.Task, error)
	ListByDay(ctx context.Context, day string) ([]model.Task, error)
	ListByDayAndCompleted(ctx context.Context, day string, completed bool) ([]model.Task, error)
	Create(ctx context.Context, description, dayOfWeek string) (*model.Task, error)
	UpdateDescription(ctx context.Context, id uint, description string) (*model.Task, error)
	Complete(ctx context.Context, id uint) error
	Uncomplete(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	DeleteAllCompleted(ctx context.Context) (int, error)
	Statistics(ctx context.Context) (service.Statistics, error)
}

// Server is the HTTP API server.
type Server struct {
	tasks   TaskService
	db      Pinger
	log     *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server. db backs the readiness probe.
func New(tasks TaskService, db Pinger, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		tasks: tasks,
		db:    db,
		log:   log,
		mux:   http.NewServeMux(),
	}
	s.routes()
	s.handler = WithRequestID(Logging(log)(s.mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Tasks
	s.mux.HandleFunc("GET /tasks", s.handleTaskList)
	s.mux.HandleFunc("POST /tasks", s.handleTaskCreate)
	s.mux.HandleFunc("GET /tasks/completed", s.handleTaskListCompleted)
	s.mux.HandleFunc("DELETE /tasks/completed", s.handleTaskDeleteCompleted)
	s.mux.HandleFunc("GET /tasks/incomplete", s.handleTaskListIncomplete)
	s.mux.HandleFunc("GET /tasks/statistics", s.handleTaskStatistics)
	s.mux.HandleFunc("GET /tasks/day/{day}", s.handleTaskListByDay)
	s.mux.HandleFunc("GET /tasks/{id}", s.handleTaskGet)
	s.mux.HandleFunc("DELETE /tasks/{id}", s.handleTaskDelete)
	s.mux.HandleFunc("PATCH /tasks/{id}/description", s.handleTaskUpdateDescription)
	s.mux.HandleFunc("PATCH /tasks/{id}/complete", s.handleTaskComplete)
	s.mux.HandleFunc("PATCH /tasks/{id}/uncomplete", s.handleTaskUncomplete)

	// System
	s.mux.HandleFunc("GET /healthz", handleHealth)
	s.mux.HandleFunc("GET /readyz", ReadyzHandler(s.db))
}
