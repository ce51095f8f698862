package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"todo/internal/model"
)

// TaskStore is the persistence contract the service relies on.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	FindAll(ctx context.Context) ([]model.Task, error)
	FindByCompleted(ctx context.Context, completed bool) ([]model.Task, error)
	FindByDayOfWeek(ctx context.Context, day string) ([]model.Task, error)
	FindByDayOfWeekAndCompleted(ctx context.Context, day string, completed bool) ([]model.Task, error)
	Count(ctx context.Context) (int64, error)
	CountByCompleted(ctx context.Context, completed bool) (int64, error)
	Save(ctx context.Context, task *model.Task) error
	DeleteByID(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context, tasks []model.Task) (int64, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

// Statistics is a point-in-time summary built from independent counts, so
// Total may disagree with Completed+Incomplete while writes are in flight.
type Statistics struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	Incomplete int64 `json:"incomplete"`
}

// TaskService wraps task lifecycle rules.
type TaskService struct {
	store TaskStore
	log   *slog.Logger
	now   func() time.Time
}

func NewTaskService(store TaskStore, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		store: store,
		log:   log.With("component", "task_service"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskService) ListAll(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "tasks listed", "op", "list_all", "count", len(tasks))
	return tasks, nil
}

// GetByID returns model.ErrNotFound when the id is unknown.
func (s *TaskService) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logMiss(ctx, "get", id, err)
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListCompleted(ctx context.Context) ([]model.Task, error) {
	return s.listByCompleted(ctx, true)
}

func (s *TaskService) ListIncomplete(ctx context.Context) ([]model.Task, error) {
	return s.listByCompleted(ctx, false)
}

func (s *TaskService) listByCompleted(ctx context.Context, completed bool) ([]model.Task, error) {
	tasks, err := s.store.FindByCompleted(ctx, completed)
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "tasks listed", "op", "list_by_completed", "completed", completed, "count", len(tasks))
	return tasks, nil
}

func (s *TaskService) ListByDay(ctx context.Context, day string) ([]model.Task, error) {
	tasks, err := s.store.FindByDayOfWeek(ctx, day)
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "tasks listed", "op", "list_by_day", "day", day, "count", len(tasks))
	return tasks, nil
}

func (s *TaskService) ListByDayAndCompleted(ctx context.Context, day string, completed bool) ([]model.Task, error) {
	tasks, err := s.store.FindByDayOfWeekAndCompleted(ctx, day, completed)
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "tasks listed", "op", "list_by_day", "day", day, "completed", completed, "count", len(tasks))
	return tasks, nil
}

// Create stores a new incomplete task.
func (s *TaskService) Create(ctx context.Context, description, dayOfWeek string) (*model.Task, error) {
	task := model.Task{
		Description: description,
		DayOfWeek:   dayOfWeek,
		Completed:   false,
		CreatedAt:   s.now(),
	}
	if err := s.store.Create(ctx, &task); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "task created", "op", "create", "task_id", task.ID, "day", dayOfWeek)
	return &task, nil
}

func (s *TaskService) UpdateDescription(ctx context.Context, id uint, description string) (*model.Task, error) {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logMiss(ctx, "update_description", id, err)
		return nil, err
	}

	now := s.now()
	task.Description = description
	task.UpdatedAt = &now
	if err := s.store.Save(ctx, task); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "task description updated", "op", "update_description", "task_id", id)
	return task, nil
}

// Complete marks the task done. Completing a done task changes nothing and
// only emits a warning.
func (s *TaskService) Complete(ctx context.Context, id uint) error {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logMiss(ctx, "complete", id, err)
		return err
	}
	if task.Completed {
		s.log.WarnContext(ctx, "task already completed", "op", "complete", "task_id", id)
		return nil
	}

	now := s.now()
	task.Completed = true
	task.CompletedAt = &now
	task.UpdatedAt = &now
	if err := s.store.Save(ctx, task); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "task completed", "op", "complete", "task_id", id)
	return nil
}

// Uncomplete reverts Complete. Uncompleting an open task changes nothing and
// only emits a warning.
func (s *TaskService) Uncomplete(ctx context.Context, id uint) error {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logMiss(ctx, "uncomplete", id, err)
		return err
	}
	if !task.Completed {
		s.log.WarnContext(ctx, "task already incomplete", "op", "uncomplete", "task_id", id)
		return nil
	}

	now := s.now()
	task.Completed = false
	task.CompletedAt = nil
	task.UpdatedAt = &now
	if err := s.store.Save(ctx, task); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "task reopened", "op", "uncomplete", "task_id", id)
	return nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	ok, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		err := fmt.Errorf("task %d: %w", id, model.ErrNotFound)
		s.logMiss(ctx, "delete", id, err)
		return err
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "task deleted", "op", "delete", "task_id", id)
	return nil
}

// DeleteAllCompleted deletes the tasks that were completed when it read them
// and returns how many that was. Tasks completed after the read survive.
func (s *TaskService) DeleteAllCompleted(ctx context.Context) (int, error) {
	done, err := s.store.FindByCompleted(ctx, true)
	if err != nil {
		return 0, err
	}
	if _, err := s.store.DeleteAll(ctx, done); err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "completed tasks deleted", "op", "delete_completed", "count", len(done))
	return len(done), nil
}

func (s *TaskService) Statistics(ctx context.Context) (Statistics, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return Statistics{}, err
	}
	completed, err := s.store.CountByCompleted(ctx, true)
	if err != nil {
		return Statistics{}, err
	}
	incomplete, err := s.store.CountByCompleted(ctx, false)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{Total: total, Completed: completed, Incomplete: incomplete}
	s.log.DebugContext(ctx, "statistics computed", "op", "statistics",
		"total", total, "completed", completed, "incomplete", incomplete)
	return stats, nil
}

func (s *TaskService) logMiss(ctx context.Context, op string, id uint, err error) {
	if errors.Is(err, model.ErrNotFound) {
		s.log.WarnContext(ctx, "task not found", "op", op, "task_id", id)
	}
}
