package pool

import (
	"sync/atomic"
)

// Stats is a point-in-time snapshot of pool activity.
// Safe to read from any goroutine via Pool.Stats.
type Stats struct {
	Workers     int   `json:"workers"`      // Configured worker count
	BusyWorkers int   `json:"busy_workers"` // Workers currently executing a task
	QueueDepth  int   `json:"queue_depth"`  // Tasks pending in the queue
	Submitted   int64 `json:"submitted"`    // Tasks accepted by Submit
	Rejected    int64 `json:"rejected"`     // Submissions rejected while intake was closed
	Completed   int64 `json:"completed"`    // Task executions finished (including faulted ones)
	Faults      int64 `json:"faults"`       // Task executions that returned an error or panicked
}

// statsCollector accumulates counters with atomics so workers never
// contend on the pool mutex for bookkeeping.
type statsCollector struct {
	submitted atomic.Int64
	rejected  atomic.Int64
	completed atomic.Int64
	faults    atomic.Int64
}

func newStatsCollector() *statsCollector {
	return &statsCollector{}
}

func (s *statsCollector) snapshot(workers, busy, depth int) Stats {
	return Stats{
		Workers:     workers,
		BusyWorkers: busy,
		QueueDepth:  depth,
		Submitted:   s.submitted.Load(),
		Rejected:    s.rejected.Load(),
		Completed:   s.completed.Load(),
		Faults:      s.faults.Load(),
	}
}
