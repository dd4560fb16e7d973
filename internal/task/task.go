package task

import "context"

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() string

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic. The context is cancelled when the runner
	// stops; implementations should return promptly once it is done.
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}
