package pool

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// workerSlot is the per-worker record. busy is written only by the owning
// worker and read lock-free by Drain's idle waits. The worker raises busy
// before releasing the pool mutex after a dequeue, so a drain that has
// observed the queue empty can never miss a just-dequeued task.
type workerSlot struct {
	id   int
	busy atomic.Bool
}

// Pool is a fixed-size worker pool: a bounded set of persistent worker
// goroutines consuming tasks from a shared, unbounded FIFO queue.
//
// The pool moves through four lifecycle states, all driven by Drain:
// accepting (intake open, the normal state), draining (intake closed,
// backlog running down), abandoning (intake closed, backlog discarded)
// and terminated (workers exited and joined; the pool is unusable until
// Respawn). Queue contents and the lifecycle flags share one mutex; the
// wake signal for idle workers is a condition variable over that mutex.
type Pool struct {
	cfg    Config
	logger Logger
	stats  *statsCollector

	mu         sync.Mutex // guards queue contents and the lifecycle flags
	queue      *taskQueue
	accepting  bool
	terminate  bool
	terminated bool

	slots []*workerSlot // replaced only by Respawn, read under mu
	wg    sync.WaitGroup

	drainMu sync.Mutex // serializes lifecycle operations
}

// New creates a pool and starts its workers immediately.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	p := &Pool{
		cfg:       cfg,
		logger:    cfg.Logger,
		stats:     newStatsCollector(),
		accepting: true,
	}
	p.queue = newTaskQueue(&p.mu)
	p.spawnWorkers()

	return p, nil
}

// spawnWorkers builds a fresh slot vector and starts one goroutine per slot.
func (p *Pool) spawnWorkers() {
	p.slots = make([]*workerSlot, p.cfg.Workers)
	for i := range p.slots {
		slot := &workerSlot{id: i}
		p.slots[i] = slot
		p.wg.Add(1)
		go p.worker(slot)
	}
}

// Submit enqueues a task and wakes one idle worker. It never blocks on
// queue capacity. While intake is closed the task is dropped: the drop is
// logged and reported as ErrIntakeClosed so callers can detect it.
func (p *Pool) Submit(t Task) error {
	if t == nil {
		return ErrNilTask
	}
	t = named(t)
	if p.cfg.Wrap != nil {
		t = p.cfg.Wrap(t)
	}

	p.mu.Lock()
	if p.terminated || !p.accepting {
		p.mu.Unlock()
		p.stats.rejected.Add(1)
		p.logger.Errorf("submit: task %s rejected, pool is not accepting new tasks", t.Name())
		return ErrIntakeClosed
	}
	p.queue.enqueue(t)
	p.mu.Unlock()

	p.queue.signal()
	p.stats.submitted.Add(1)
	return nil
}

// worker is the loop run by every worker goroutine. It suspends on the
// wake signal while the queue is empty, exits permanently once terminate
// is requested and the queue is drained, and otherwise executes one task
// at a time outside the pool mutex.
func (p *Pool) worker(slot *workerSlot) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.queue.empty() && !p.terminate {
			p.queue.wait()
		}
		if p.terminate && p.queue.empty() {
			p.mu.Unlock()
			return
		}
		t, _ := p.queue.dequeue()
		slot.busy.Store(true)
		p.mu.Unlock()

		p.execute(slot, t)
		slot.busy.Store(false)
	}
}

// execute runs a single task with fault containment: a returned error or
// a panic aborts only that execution, never the worker.
func (p *Pool) execute(slot *workerSlot, t Task) {
	defer p.stats.completed.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.report(&TaskError{
				TaskID:   t.Name(),
				WorkerID: slot.id,
				Err:      fmt.Errorf("panic: %v", r),
				Stack:    string(debug.Stack()),
			})
		}
	}()

	if err := t.Execute(); err != nil {
		p.report(&TaskError{
			TaskID:   t.Name(),
			WorkerID: slot.id,
			Err:      err,
		})
	}
}

func (p *Pool) report(te *TaskError) {
	p.stats.faults.Add(1)
	p.logger.Errorf("%v", te)
	if p.cfg.ErrorHandler != nil {
		p.cfg.ErrorHandler(te)
	}
}

// Drain is the single lifecycle operation. Its three axes are independent
// concerns: allowNew controls intake, abandonPending chooses between
// discarding and running down the backlog, terminate chooses between
// killing the workers and keeping the pool alive.
//
// Effects, in order:
//  1. Intake is set to allowNew, visible to submitters immediately.
//  2. With abandonPending, every pending task is discarded unexecuted;
//     in-flight tasks keep running. Otherwise Drain polls until the queue
//     is observed empty and closes intake in that same critical section.
//  3. With terminate, every worker is woken, runs the loop to its exit and
//     is joined; the pool then rejects all operations until Respawn.
//     Otherwise Drain polls until no worker is busy and reopens intake.
//
// allowNew combined with abandonPending or terminate is a usage error:
// Drain returns ErrDrainConflict without touching any state.
func (p *Pool) Drain(allowNew, abandonPending, terminate bool) error {
	if allowNew && (abandonPending || terminate) {
		return ErrDrainConflict
	}

	p.drainMu.Lock()
	defer p.drainMu.Unlock()

	p.mu.Lock()
	if p.terminated {
		p.mu.Unlock()
		return ErrPoolTerminated
	}
	p.accepting = allowNew
	p.mu.Unlock()

	if abandonPending {
		p.mu.Lock()
		p.queue.clear()
		p.mu.Unlock()
	} else {
		for {
			p.mu.Lock()
			if p.queue.empty() {
				// Close intake at the instant the queue is certified
				// drained so no submission sneaks in behind the check.
				p.accepting = false
				p.mu.Unlock()
				break
			}
			p.mu.Unlock()
			time.Sleep(p.cfg.PollInterval)
		}
	}

	if terminate {
		p.mu.Lock()
		p.terminate = true
		p.mu.Unlock()
		p.queue.broadcast()
		p.wg.Wait()
		p.mu.Lock()
		p.terminated = true
		p.mu.Unlock()
		return nil
	}

	for p.anyBusy() {
		time.Sleep(p.cfg.PollInterval)
	}
	p.mu.Lock()
	p.accepting = true
	p.mu.Unlock()
	return nil
}

// Wait runs every pending and in-flight task to completion, then reopens
// intake. Equivalent to Drain(false, false, false).
func (p *Pool) Wait() error {
	return p.Drain(false, false, false)
}

// Shutdown runs every pending task to completion, then terminates the
// workers. Equivalent to Drain(false, false, true).
func (p *Pool) Shutdown() error {
	return p.Drain(false, false, true)
}

// Close abandons pending work and terminates the workers. Safe to defer:
// closing an already-terminated pool is a no-op.
func (p *Pool) Close() error {
	err := p.Drain(false, true, true)
	if errors.Is(err, ErrPoolTerminated) {
		return nil
	}
	return err
}

// Reset discards all pending work, waits for in-flight tasks to finish
// and reopens intake on a live pool.
func (p *Pool) Reset() error {
	return p.Drain(false, true, false)
}

// Respawn recreates the worker goroutines of a terminated pool and
// reopens intake, restoring the pool to a usable state.
func (p *Pool) Respawn() error {
	p.drainMu.Lock()
	defer p.drainMu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.terminated {
		return ErrPoolAlive
	}
	p.terminated = false
	p.terminate = false
	p.accepting = true
	p.spawnWorkers()
	return nil
}

// anyBusy reports whether any worker is currently executing a task.
func (p *Pool) anyBusy() bool {
	p.mu.Lock()
	slots := p.slots
	p.mu.Unlock()
	for _, s := range slots {
		if s.busy.Load() {
			return true
		}
	}
	return false
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.cfg.Workers
}

// Accepting reports whether the pool currently accepts submissions.
func (p *Pool) Accepting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accepting && !p.terminated
}

// Terminated reports whether the workers have exited and been joined.
func (p *Pool) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

// Stats returns a snapshot of pool activity. Safe for concurrent use.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	depth := p.queue.length()
	slots := p.slots
	p.mu.Unlock()

	busy := 0
	for _, s := range slots {
		if s.busy.Load() {
			busy++
		}
	}
	return p.stats.snapshot(p.cfg.Workers, busy, depth)
}
