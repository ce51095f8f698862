package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todo/internal/model"
	"todo/internal/repository"
)

type fixture struct {
	svc  *TaskService
	logs *bytes.Buffer
	now  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logs := &bytes.Buffer{}
	log := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "tasks.db"), log)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := &fixture{
		svc:  NewTaskService(repository.NewTaskRepository(db), log),
		logs: logs,
		now:  time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) tick() { f.now = f.now.Add(time.Minute) }

func (f *fixture) create(t *testing.T, description, day string) *model.Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), description, day)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return task
}

func TestCreateThenGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.create(t, "Buy milk", "Monday")
	if created.ID == 0 {
		t.Fatalf("expected id")
	}

	got, err := f.svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Completed {
		t.Fatalf("new task must be incomplete")
	}
	if got.Description != "Buy milk" || got.DayOfWeek != "Monday" {
		t.Fatalf("got %+v", got)
	}
	if !got.CreatedAt.Equal(f.now) {
		t.Fatalf("created_at=%v want %v", got.CreatedAt, f.now)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByID(context.Background(), 99)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestUpdateDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "draft", "Friday")

	f.tick()
	updated, err := f.svc.UpdateDescription(ctx, task.ID, "final")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "final" {
		t.Fatalf("description=%q", updated.Description)
	}
	if updated.UpdatedAt == nil || !updated.UpdatedAt.Equal(f.now) {
		t.Fatalf("updated_at=%v want %v", updated.UpdatedAt, f.now)
	}

	got, err := f.svc.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "final" || got.DayOfWeek != "Friday" {
		t.Fatalf("got %+v", got)
	}

	if _, err := f.svc.UpdateDescription(ctx, 12345, "x"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestCompleteThenUncomplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "Write tests", "")

	f.tick()
	if err := f.svc.Complete(ctx, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err := f.svc.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Completed || got.CompletedAt == nil || !got.CompletedAt.Equal(f.now) {
		t.Fatalf("after complete got %+v", got)
	}

	f.tick()
	if err := f.svc.Uncomplete(ctx, task.ID); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	got, err = f.svc.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Completed || got.CompletedAt != nil {
		t.Fatalf("after uncomplete got %+v", got)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(f.now) {
		t.Fatalf("updated_at=%v want %v", got.UpdatedAt, f.now)
	}
}

func TestComplete_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "Once", "")

	if err := f.svc.Complete(ctx, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	firstDone := f.now

	f.tick()
	if err := f.svc.Complete(ctx, task.ID); err != nil {
		t.Fatalf("second complete: %v", err)
	}

	got, err := f.svc.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Completed {
		t.Fatalf("expected still completed")
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(firstDone) {
		t.Fatalf("completed_at=%v want %v", got.CompletedAt, firstDone)
	}
	if !strings.Contains(f.logs.String(), `"msg":"task already completed"`) {
		t.Fatalf("expected warning in logs, got:\n%s", f.logs.String())
	}
}

func TestUncomplete_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "Open", "")

	if err := f.svc.Uncomplete(ctx, task.ID); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	got, err := f.svc.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Completed || got.UpdatedAt != nil {
		t.Fatalf("expected untouched task, got %+v", got)
	}
	if !strings.Contains(f.logs.String(), `"msg":"task already incomplete"`) {
		t.Fatalf("expected warning in logs, got:\n%s", f.logs.String())
	}
}

func TestCompleteUncomplete_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Complete(ctx, 7); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("complete err=%v", err)
	}
	if err := f.svc.Uncomplete(ctx, 7); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("uncomplete err=%v", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.create(t, "keep", "")
	drop := f.create(t, "drop", "")

	if err := f.svc.Delete(ctx, drop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Delete(ctx, drop.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second delete err=%v want ErrNotFound", err)
	}

	all, err := f.svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID != keep.ID {
		t.Fatalf("list after delete=%+v", all)
	}
}

func TestCompletedIncompletePartition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var created []*model.Task
	for _, d := range []string{"a", "b", "c", "d", "e"} {
		created = append(created, f.create(t, d, ""))
	}
	for _, i := range []int{1, 3} {
		if err := f.svc.Complete(ctx, created[i].ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	all, err := f.svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	done, err := f.svc.ListCompleted(ctx)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	open, err := f.svc.ListIncomplete(ctx)
	if err != nil {
		t.Fatalf("list incomplete: %v", err)
	}

	seen := map[uint]int{}
	for _, task := range done {
		if !task.Completed {
			t.Fatalf("incomplete task %d in completed list", task.ID)
		}
		seen[task.ID]++
	}
	for _, task := range open {
		if task.Completed {
			t.Fatalf("completed task %d in incomplete list", task.ID)
		}
		seen[task.ID]++
	}
	if len(seen) != len(all) {
		t.Fatalf("partition covers %d tasks, all has %d", len(seen), len(all))
	}
	for _, task := range all {
		if seen[task.ID] != 1 {
			t.Fatalf("task %d seen %d times", task.ID, seen[task.ID])
		}
	}
}

func TestListByDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mon := f.create(t, "gym", "Monday")
	monDone := f.create(t, "report", "Monday")
	f.create(t, "rest", "Sunday")
	if err := f.svc.Complete(ctx, monDone.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	tasks, err := f.svc.ListByDay(ctx, "Monday")
	if err != nil {
		t.Fatalf("by day: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("monday tasks=%d want 2", len(tasks))
	}

	open, err := f.svc.ListByDayAndCompleted(ctx, "Monday", false)
	if err != nil {
		t.Fatalf("by day and completed: %v", err)
	}
	if len(open) != 1 || open[0].ID != mon.ID {
		t.Fatalf("open monday tasks=%+v", open)
	}
}

func TestDeleteAllCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, d := range []string{"a", "b", "c", "d"} {
		task := f.create(t, d, "")
		if i%2 == 0 {
			if err := f.svc.Complete(ctx, task.ID); err != nil {
				t.Fatalf("complete: %v", err)
			}
		}
	}

	n, err := f.svc.DeleteAllCompleted(ctx)
	if err != nil {
		t.Fatalf("delete completed: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted=%d want 2", n)
	}

	done, err := f.svc.ListCompleted(ctx)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(done) != 0 {
		t.Fatalf("completed after purge=%d", len(done))
	}

	n, err = f.svc.DeleteAllCompleted(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second purge n=%d err=%v", n, err)
	}
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stats, err := f.svc.Statistics(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats != (Statistics{}) {
		t.Fatalf("empty stats=%+v", stats)
	}

	for i, d := range []string{"a", "b", "c"} {
		task := f.create(t, d, "")
		if i == 0 {
			if err := f.svc.Complete(ctx, task.ID); err != nil {
				t.Fatalf("complete: %v", err)
			}
		}
	}

	stats, err = f.svc.Statistics(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Statistics{Total: 3, Completed: 1, Incomplete: 2}
	if stats != want {
		t.Fatalf("stats=%+v want %+v", stats, want)
	}
	if stats.Total != stats.Completed+stats.Incomplete {
		t.Fatalf("total does not add up: %+v", stats)
	}
}

var errStoreDown = errors.New("store down")

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Create(context.Context, *model.Task) error { return errStoreDown }
func (brokenStore) FindByID(context.Context, uint) (*model.Task, error) {
	return nil, errStoreDown
}
func (brokenStore) FindAll(context.Context) ([]model.Task, error) { return nil, errStoreDown }
func (brokenStore) FindByCompleted(context.Context, bool) ([]model.Task, error) {
	return nil, errStoreDown
}
func (brokenStore) FindByDayOfWeek(context.Context, string) ([]model.Task, error) {
	return nil, errStoreDown
}
func (brokenStore) FindByDayOfWeekAndCompleted(context.Context, string, bool) ([]model.Task, error) {
	return nil, errStoreDown
}
func (brokenStore) Count(context.Context) (int64, error) { return 0, errStoreDown }
func (brokenStore) CountByCompleted(context.Context, bool) (int64, error) { return 0, errStoreDown }
func (brokenStore) Save(context.Context, *model.Task) error { return errStoreDown }
func (brokenStore) DeleteByID(context.Context, uint) error { return errStoreDown }
func (brokenStore) DeleteAll(context.Context, []model.Task) (int64, error) {
	return 0, errStoreDown
}
func (brokenStore) ExistsByID(context.Context, uint) (bool, error) { return false, errStoreDown }

func TestStoreFailurePropagates(t *testing.T) {
	svc := NewTaskService(brokenStore{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["list_all"] = svc.ListAll(ctx)
	_, checks["get"] = svc.GetByID(ctx, 1)
	_, checks["completed"] = svc.ListCompleted(ctx)
	_, checks["by_day"] = svc.ListByDay(ctx, "Monday")
	_, checks["create"] = svc.Create(ctx, "x", "")
	_, checks["update"] = svc.UpdateDescription(ctx, 1, "x")
	checks["complete"] = svc.Complete(ctx, 1)
	checks["uncomplete"] = svc.Uncomplete(ctx, 1)
	checks["delete"] = svc.Delete(ctx, 1)
	_, checks["delete_completed"] = svc.DeleteAllCompleted(ctx)
	_, checks["statistics"] = svc.Statistics(ctx)

	for op, err := range checks {
		if !errors.Is(err, errStoreDown) {
			t.Errorf("%s: err=%v want store failure", op, err)
		}
		if errors.Is(err, model.ErrNotFound) {
			t.Errorf("%s: store failure reported as not found", op)
		}
	}
}
