package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo/internal/model"
)

// TaskRepository handles persistence for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts the task and fills in its ID.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID returns model.ErrNotFound when no row has the given id.
func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	default:
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
}

func (r *TaskRepository) FindAll(ctx context.Context) ([]model.Task, error) {
	return r.find(ctx, "list tasks", nil)
}

// FindByCompleted matches completed = ?.
func (r *TaskRepository) FindByCompleted(ctx context.Context, completed bool) ([]model.Task, error) {
	return r.find(ctx, "list tasks by completed", func(db *gorm.DB) *gorm.DB {
		return db.Where("completed = ?", completed)
	})
}

// FindByDayOfWeek matches day_of_week = ? exactly, case included.
func (r *TaskRepository) FindByDayOfWeek(ctx context.Context, day string) ([]model.Task, error) {
	return r.find(ctx, "list tasks by day", func(db *gorm.DB) *gorm.DB {
		return db.Where("day_of_week = ?", day)
	})
}

func (r *TaskRepository) FindByDayOfWeekAndCompleted(ctx context.Context, day string, completed bool) ([]model.Task, error) {
	return r.find(ctx, "list tasks by day and completed", func(db *gorm.DB) *gorm.DB {
		return db.Where("day_of_week = ? AND completed = ?", day, completed)
	})
}

func (r *TaskRepository) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]model.Task, error) {
	db := r.db.WithContext(ctx)
	if scope != nil {
		db = scope(db)
	}
	tasks := []model.Task{}
	if err := db.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) CountByCompleted(ctx context.Context, completed bool) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("completed = ?", completed).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks by completed: %w", err)
	}
	return n, nil
}

// Save writes every column of the task, inserting it if the id is new.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task %d: %w", task.ID, err)
	}
	return nil
}

func (r *TaskRepository) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, id).Error; err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes the given tasks by id and reports how many rows went away.
func (r *TaskRepository) DeleteAll(ctx context.Context, tasks []model.Task) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}
	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TaskRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check task %d: %w", id, err)
	}
	return n > 0, nil
}

// Ping checks that the underlying connection pool is reachable.
func (r *TaskRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
