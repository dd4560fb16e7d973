package generation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the live generation tasks. Finished tasks are removed a
// fixed delay after they reach a terminal state.
type Registry struct {
	mu       sync.Mutex
	tasks    map[string]*Task
	order    []string
	timers   map[string]*time.Timer
	delay    time.Duration
	closed   bool
	now      func() time.Time
	onChange func(Snapshot)
	onFinal  func(*Task)
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. cleanupDelay is how long a finished
// task stays retrievable; zero removes it immediately.
func NewRegistry(cleanupDelay time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tasks:  make(map[string]*Task),
		timers: make(map[string]*time.Timer),
		delay:  cleanupDelay,
		now:    time.Now,
		logger: logger.With("component", "task_registry"),
	}
}

// OnChange registers a hook receiving every state change of every task
// created afterwards. It runs while the task is locked and must not block.
func (r *Registry) OnChange(hook func(Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = hook
}

// OnFinal registers a hook run once for every task that reaches a terminal
// state, before its removal is scheduled.
func (r *Registry) OnFinal(hook func(*Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFinal = hook
}

// Create stores a new pending task for req under a fresh id.
func (r *Registry) Create(req Request) *Task {
	r.mu.Lock()
	t := newTask(uuid.NewString(), req, r.now(), r.onChange)
	r.tasks[t.id] = t
	r.order = append(r.order, t.id)
	size := len(r.tasks)
	r.mu.Unlock()

	r.logger.Debug("task created", "task_id", t.id, "total_count", req.Count, "live_tasks", size)
	return t
}

// Get returns the task with id or ErrTaskNotFound.
func (r *Registry) Get(id string) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

// List returns the live tasks in submission order.
func (r *Registry) List() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id])
	}
	return out
}

// Len returns the number of live tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Cancel flags the task for cancellation and aborts its in-flight call. It
// returns false for unknown ids and is safe to repeat.
func (r *Registry) Cancel(id string) bool {
	t, err := r.Get(id)
	if err != nil {
		return false
	}
	if t.requestCancel() {
		r.Finish(t)
	}
	r.logger.Info("task cancellation requested", "task_id", id)
	return true
}

// Finish runs the final hook for a terminal task and schedules its removal.
func (r *Registry) Finish(t *Task) {
	r.mu.Lock()
	hook := r.onFinal
	r.mu.Unlock()

	if hook != nil {
		hook(t)
	}
	r.scheduleRemoval(t.id)
}

func (r *Registry) scheduleRemoval(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if _, ok := r.tasks[id]; !ok {
		return
	}
	if r.delay <= 0 {
		r.removeLocked(id)
		return
	}
	if _, scheduled := r.timers[id]; scheduled {
		return
	}
	r.timers[id] = time.AfterFunc(r.delay, func() { r.Remove(id) })
}

// Remove deletes the task and stops its pending removal timer.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

func (r *Registry) removeLocked(id string) {
	if timer, ok := r.timers[id]; ok {
		timer.Stop()
		delete(r.timers, id)
	}
	if _, ok := r.tasks[id]; !ok {
		return
	}
	delete(r.tasks, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debug("task removed", "task_id", id, "live_tasks", len(r.tasks))
}

// Close stops every pending removal timer. Tasks stay readable.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, timer := range r.timers {
		timer.Stop()
		delete(r.timers, id)
	}
}
