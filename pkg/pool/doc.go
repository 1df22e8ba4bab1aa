// Package pool provides a fixed-size worker pool with explicit lifecycle
// control over intake, draining and termination.
//
// A Pool owns N persistent worker goroutines and one unbounded FIFO task
// queue. Tasks are fire-and-forget: they carry no result channel, and a
// fault raised by a task body is contained at the worker boundary and
// logged, never propagated.
//
// # Basic Usage
//
//	p, err := pool.New(pool.Config{Workers: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	p.Submit(pool.TaskFunc(func() error {
//	    // Do work
//	    return nil
//	}))
//
//	// Run the backlog down, then keep using the pool.
//	p.Wait()
//
// # Lifecycle
//
// Every shutdown and completion-barrier mode is a combination of the three
// Drain axes:
//
//	p.Drain(false, false, false) // run to completion, reuse (Wait)
//	p.Drain(false, false, true)  // run to completion, retire (Shutdown)
//	p.Drain(false, true, false)  // abandon backlog, reuse (Reset)
//	p.Drain(false, true, true)   // abandon backlog, retire (Close)
//
// A terminated pool rejects all operations until Respawn recreates its
// workers.
package pool
