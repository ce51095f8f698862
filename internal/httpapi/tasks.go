package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"todo/internal/model"
)

type createTaskRequest struct {
	Description string `json:"description" validate:"required"`
	DayOfWeek   string `json:"dayOfWeek"`
}

type updateDescriptionRequest struct {
	Description string `json:"description" validate:"required"`
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListAll(r.Context())
	s.writeList(w, r, tasks, err)
}

func (s *Server) handleTaskListCompleted(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListCompleted(r.Context())
	s.writeList(w, r, tasks, err)
}

func (s *Server) handleTaskListIncomplete(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListIncomplete(r.Context())
	s.writeList(w, r, tasks, err)
}

// handleTaskListByDay accepts an optional ?completed=true|false narrowing.
func (s *Server) handleTaskListByDay(w http.ResponseWriter, r *http.Request) {
	day := r.PathValue("day")

	raw := r.URL.Query().Get("completed")
	if raw == "" {
		tasks, err := s.tasks.ListByDay(r.Context(), day)
		s.writeList(w, r, tasks, err)
		return
	}

	var completed bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		completed = true
	case "false":
		completed = false
	default:
		writeError(w, http.StatusBadRequest, "completed must be true or false")
		return
	}
	tasks, err := s.tasks.ListByDayAndCompleted(r.Context(), day, completed)
	s.writeList(w, r, tasks, err)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.tasks.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.tasks.Create(r.Context(), req.Description, strings.TrimSpace(req.DayOfWeek))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleTaskUpdateDescription(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateDescriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.tasks.UpdateDescription(r.Context(), id, req.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.tasks.Complete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskUncomplete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.tasks.Uncomplete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskDeleteCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := s.tasks.DeleteAllCompleted(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleTaskStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tasks.Statistics(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeList(w http.ResponseWriter, r *http.Request, tasks []model.Task, err error) {
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// writeServiceError maps model.ErrNotFound to 404 and hides everything else
// behind a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.log.ErrorContext(r.Context(), "request failed",
		"rid", RequestIDFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
