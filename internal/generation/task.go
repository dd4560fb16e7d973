package generation

import (
	"context"
	"sync"
	"time"
)

// Task is one generation run. Its fields are mutated only by its generator
// and by cancellation, always while holding mu; readers get copies.
type Task struct {
	id        string
	req       Request
	createdAt time.Time
	notify    func(Snapshot)

	mu           sync.Mutex
	status       Status
	currentCount int
	progress     int
	texts        []GeneratedText
	errMsg       *string
	cancelled    bool
	cancelCall   context.CancelFunc
}

func newTask(id string, req Request, now time.Time, notify func(Snapshot)) *Task {
	return &Task{
		id:        id,
		req:       req,
		createdAt: now,
		notify:    notify,
		status:    StatusPending,
	}
}

// ID returns the task id.
func (t *Task) ID() string { return t.id }

// CreatedAt returns when the task was submitted.
func (t *Task) CreatedAt() time.Time { return t.createdAt }

// TotalCount returns the number of items requested.
func (t *Task) TotalCount() int { return t.req.Count }

// Status returns the current state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Snapshot returns a copy of the task's progress.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(nil)
}

// Results returns a copy of the produced texts.
func (t *Task) Results() Results {
	t.mu.Lock()
	defer t.mu.Unlock()

	texts := make([]GeneratedText, len(t.texts))
	copy(texts, t.texts)
	return Results{
		TaskID:         t.id,
		Status:         t.status,
		GeneratedCount: len(texts),
		Texts:          texts,
	}
}

func (t *Task) snapshotLocked(latest *GeneratedText) Snapshot {
	snap := Snapshot{
		TaskID:       t.id,
		Status:       t.status,
		Progress:     t.progress,
		CurrentCount: t.currentCount,
		TotalCount:   t.req.Count,
		Message:      progressMessage(t.currentCount, t.req.Count),
		LatestText:   latest,
	}
	if t.errMsg != nil {
		msg := *t.errMsg
		snap.Error = &msg
	}
	return snap
}

// notifyLocked reports the current state while mu is held, so observers see
// changes in the order they happened.
func (t *Task) notifyLocked(latest *GeneratedText) {
	if t.notify != nil {
		t.notify(t.snapshotLocked(latest))
	}
}

// claim moves a pending task to generating. Only one caller ever succeeds.
func (t *Task) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusPending {
		return false
	}
	t.status = StatusGenerating
	return true
}

// unclaim returns a claimed task to pending when its generator could not be
// scheduled. A task cancelled in the meantime ends cancelled instead, and the
// return value reports that.
func (t *Task) unclaim() (finalized bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusGenerating || t.cancelCall != nil {
		return false
	}
	if t.cancelled {
		t.status = StatusCancelled
		t.notifyLocked(nil)
		return true
	}
	t.status = StatusPending
	return false
}

// attachCancel records the cancel func of the running generator and
// announces the start. When the task was cancelled before the generator got
// a worker, cancel fires at once.
func (t *Task) attachCancel(cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelCall = cancel
	if t.cancelled {
		cancel()
	}
	t.notifyLocked(nil)
}

// addItem records one produced text. It refuses items once the task has left
// generating or has produced everything requested.
func (t *Task) addItem(item GeneratedText) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusGenerating || t.currentCount >= t.req.Count {
		return false
	}
	t.texts = append(t.texts, item)
	t.currentCount++
	t.progress = t.currentCount * 100 / t.req.Count
	t.notifyLocked(&item)
	return true
}

// finish moves the task to a terminal state. Terminal states never change,
// so only the first call has an effect.
func (t *Task) finish(status Status, errMsg string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.IsTerminal() {
		return false
	}
	t.status = status
	if status == StatusCompleted {
		t.progress = 100
	}
	if errMsg != "" {
		t.errMsg = &errMsg
	}
	t.notifyLocked(nil)
	return true
}

// requestCancel sets the cancellation flag and aborts the in-flight call.
// A task nobody has started yet is finalized directly; the return value
// reports whether that happened.
func (t *Task) requestCancel() (finalized bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.IsTerminal() {
		return false
	}
	t.cancelled = true
	if t.cancelCall != nil {
		t.cancelCall()
	}
	if t.status == StatusPending {
		t.status = StatusCancelled
		t.notifyLocked(nil)
		return true
	}
	return false
}

func (t *Task) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}
