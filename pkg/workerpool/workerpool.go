// Package workerpool bounds concurrent goroutines with backpressure.
// Submit never blocks: when every worker is busy and the queue is full it
// returns ErrPoolFull and the caller picks a fallback.
package workerpool

import (
	"errors"
	"sync"
)

// ErrPoolFull means all workers are busy and the task queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed means Shutdown has already been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool runs submitted tasks on a fixed set of worker goroutines.
// Submitters hold mu for reading while they touch the task channel, so
// Shutdown's close cannot interleave with a send.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// New starts a pool with n workers. The task queue buffers 2n tasks so
// short bursts absorb without rejection.
func New(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{tasks: make(chan func(), n*2)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking. Returns ErrPoolFull when the
// queue is saturated, ErrPoolClosed after Shutdown.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until a queue slot frees up. Returns ErrPoolClosed
// once Shutdown has been called.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	// Workers drain independently, so this send always completes and the
	// read lock never stalls Shutdown forever.
	p.tasks <- task
	return nil
}

// Shutdown stops intake, drains in-flight tasks, and releases the
// workers. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		runRecovered(task)
	}
}

// runRecovered keeps a panicking task from taking its worker down.
func runRecovered(task func()) {
	defer func() { recover() }() //nolint:errcheck
	task()
}
