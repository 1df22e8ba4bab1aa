package pool

import (
	"github.com/google/uuid"
)

// Task represents a unit of work that can be executed by the pool.
// Tasks are fire-and-forget: the returned error is diagnostic only, it is
// logged by the executing worker and never delivered to the submitter.
type Task interface {
	// Execute performs the task work
	Execute() error

	// Name returns a human-readable name for the task (for logging/debugging)
	Name() string
}

// TaskFunc is a function type that implements Task
// Allows functions to be used as tasks without creating a struct
type TaskFunc func() error

// Execute implements Task interface for TaskFunc
func (f TaskFunc) Execute() error {
	return f()
}

// Name returns a default name for TaskFunc
func (f TaskFunc) Name() string {
	return "TaskFunc"
}

// NamedTask wraps a Task with a custom name
type NamedTask struct {
	name string
	task Task
}

// NewNamedTask creates a new NamedTask
func NewNamedTask(name string, task Task) *NamedTask {
	return &NamedTask{
		name: name,
		task: task,
	}
}

// Execute implements Task interface
func (nt *NamedTask) Execute() error {
	return nt.task.Execute()
}

// Name returns the task name
func (nt *NamedTask) Name() string {
	return nt.name
}

// named gives anonymous tasks a unique identity so diagnostics can refer
// to them. Tasks that already carry a name are returned unchanged.
func named(t Task) Task {
	if _, anon := t.(TaskFunc); anon {
		return NewNamedTask("task-"+uuid.NewString(), t)
	}
	return t
}
