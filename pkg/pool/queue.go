package pool

import (
	"sync"
)

// taskQueue is the unbounded FIFO of pending tasks shared by all producers
// and all workers. The mutex is supplied by the owning pool so that queue
// contents and the pool lifecycle flags live under a single lock; the wake
// signal for idle workers is built over that same mutex.
//
// enqueue, dequeue, empty, length and clear must be called with the shared
// mutex held. wait, signal and broadcast operate on the wake signal.
type taskQueue struct {
	wake  *sync.Cond
	tasks []Task
}

func newTaskQueue(mu *sync.Mutex) *taskQueue {
	return &taskQueue{
		wake: sync.NewCond(mu),
	}
}

// enqueue appends t to the tail. The queue is unbounded, so this never
// fails and never blocks.
func (q *taskQueue) enqueue(t Task) {
	q.tasks = append(q.tasks, t)
}

// dequeue removes and returns the head. Exclusive hand-off is guaranteed
// by the shared mutex: no task is ever observed by two workers.
func (q *taskQueue) dequeue() (Task, bool) {
	if len(q.tasks) == 0 {
		return nil, false
	}
	t := q.tasks[0]
	q.tasks[0] = nil // release the reference, the queue owns tasks until hand-off
	q.tasks = q.tasks[1:]
	if len(q.tasks) == 0 {
		q.tasks = nil // let the backing array go once drained
	}
	return t, true
}

// empty reports whether no tasks are pending.
func (q *taskQueue) empty() bool {
	return len(q.tasks) == 0
}

// length returns the number of pending tasks.
func (q *taskQueue) length() int {
	return len(q.tasks)
}

// clear discards every pending task without executing it and returns how
// many were dropped. Tasks already handed off to a worker are unaffected.
func (q *taskQueue) clear() int {
	n := len(q.tasks)
	q.tasks = nil
	return n
}

// wait blocks the calling worker on the wake signal, releasing the shared
// mutex while suspended.
func (q *taskQueue) wait() {
	q.wake.Wait()
}

// signal wakes one waiting worker.
func (q *taskQueue) signal() {
	q.wake.Signal()
}

// broadcast wakes every waiting worker.
func (q *taskQueue) broadcast() {
	q.wake.Broadcast()
}
