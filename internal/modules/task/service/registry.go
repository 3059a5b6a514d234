package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/reshetovitsme/media-relay-bot/internal/modules/task/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Operation is the body of a tracked task. It must return once ctx is done.
type Operation func(ctx context.Context) error

// Registry tracks in-flight operations so they can be cancelled in bulk.
type Registry struct {
	root context.Context

	mu    sync.Mutex
	tasks map[string]*domain.Task
	wg    sync.WaitGroup
}

// NewRegistry creates a registry whose tasks derive from root.
func NewRegistry(root context.Context) *Registry {
	return &Registry{
		root:  root,
		tasks: make(map[string]*domain.Task),
	}
}

// Track starts op concurrently and registers it until it returns. The task
// is inserted before op starts and removed exactly once after it finished.
func (r *Registry) Track(label string, chatID int64, op Operation) *domain.Task {
	ctx, cancel := context.WithCancel(r.root)
	task := domain.NewTask(uuid.NewString(), label, chatID, cancel)

	r.mu.Lock()
	r.tasks[task.ID] = task
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(ctx, task, op)

	return task
}

func (r *Registry) run(ctx context.Context, task *domain.Task, op Operation) {
	state := domain.StateFailed
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Tracked task panicked",
				"task_id", task.ID,
				"label", task.Label,
				"error", oops.With("panic", fmt.Sprint(rec)).Errorf("panic in tracked task"))
		}

		r.mu.Lock()
		delete(r.tasks, task.ID)
		r.mu.Unlock()

		task.Finish(state)
		r.wg.Done()

		slog.Debug("Tracked task finished", "task_id", task.ID, "label", task.Label, "state", task.State())
	}()

	err := op(ctx)
	switch {
	case err == nil:
		state = domain.StateDone
	case ctx.Err() != nil:
		state = domain.StateCancelled
	default:
		slog.Error("Tracked task failed", "task_id", task.ID, "label", task.Label, "error", err)
	}
}

// CancelAll signals every registered task and returns how many had not
// finished at call time, including tasks still winding down after an
// earlier cancel.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	snapshot := lo.Values(r.tasks)
	r.mu.Unlock()

	cancelled := lo.CountBy(snapshot, func(task *domain.Task) bool {
		return task.Cancel()
	})
	if cancelled > 0 {
		slog.Info("Cancelled tracked tasks", "count", cancelled)
	}
	return cancelled
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Tasks returns a snapshot of the registered tasks, oldest first.
func (r *Registry) Tasks() []domain.Snapshot {
	r.mu.Lock()
	tasks := lo.Values(r.tasks)
	r.mu.Unlock()

	snapshots := lo.Map(tasks, func(task *domain.Task, _ int) domain.Snapshot {
		return task.Snapshot()
	})
	slices.SortFunc(snapshots, func(a, b domain.Snapshot) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return snapshots
}

// Shutdown cancels all tasks and waits for them to return or ctx to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.CancelAll()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return oops.With("remaining", r.Len()).Wrapf(ctx.Err(), "waiting for tracked tasks")
	}
}
