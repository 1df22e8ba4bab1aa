package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrDrainConflict is returned when Drain is asked to keep accepting
	// new tasks while also abandoning pending work or terminating workers
	ErrDrainConflict = errors.New("allowNew is incompatible with abandonPending and terminate")

	// ErrIntakeClosed is returned when a task is submitted while the pool
	// is not accepting new tasks
	ErrIntakeClosed = errors.New("pool is not accepting new tasks")

	// ErrPoolTerminated is returned when an operation is invoked on a pool
	// whose workers have been terminated
	ErrPoolTerminated = errors.New("pool is terminated")

	// ErrPoolAlive is returned by Respawn when the pool still has live workers
	ErrPoolAlive = errors.New("pool workers are still alive")

	// ErrNilTask is returned when a nil task is submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrInvalidConfig is returned when pool configuration is invalid
	ErrInvalidConfig = errors.New("invalid pool configuration")
)

// TaskError wraps a fault raised by a task body. Faults are contained at
// the worker boundary: they are logged (and handed to the configured
// ErrorHandler) but never propagated to the pool or to other tasks.
type TaskError struct {
	TaskID   string
	WorkerID int
	Err      error
	Stack    string // Stack trace if the task panicked
}

func (e *TaskError) Error() string {
	if e.Stack != "" {
		return fmt.Sprintf("worker %d: task %s panicked: %v\n%s", e.WorkerID, e.TaskID, e.Err, e.Stack)
	}
	return fmt.Sprintf("worker %d: task %s failed: %v", e.WorkerID, e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
