package domain

import (
	"context"
	"sync"
	"time"
)

// Task is a cancellable unit of user-initiated work.
type Task struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	ChatID    int64     `json:"chat_id"`
	StartedAt time.Time `json:"started_at"`

	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
}

// NewTask creates a running task whose work is stopped by cancel.
func NewTask(id, label string, chatID int64, cancel context.CancelFunc) *Task {
	return &Task{
		ID:        id,
		Label:     label,
		ChatID:    chatID,
		StartedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StateRunning,
	}
}

// Cancel requests cancellation. It returns false once the task finished;
// a task already cancelled but still winding down is signalled again and
// counted.
func (t *Task) Cancel() bool {
	select {
	case <-t.done:
		return false
	default:
	}

	t.mu.Lock()
	if t.state == StateRunning {
		t.state = StateCancelled
	}
	t.mu.Unlock()

	t.cancel()
	return true
}

// Finish records the final state and releases waiters. A cancelled task
// stays cancelled whatever its work returned.
func (t *Task) Finish(state State) {
	t.mu.Lock()
	if t.state == StateRunning {
		t.state = state
	}
	t.mu.Unlock()

	t.cancel()
	close(t.done)
}

// Done is closed once the task finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Snapshot is a point-in-time view of a task.
type Snapshot struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	ChatID    int64         `json:"chat_id"`
	State     State         `json:"state"`
	StartedAt time.Time     `json:"started_at"`
	Age       time.Duration `json:"age"`
}

func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:        t.ID,
		Label:     t.Label,
		ChatID:    t.ChatID,
		State:     t.State(),
		StartedAt: t.StartedAt,
		Age:       time.Since(t.StartedAt),
	}
}
