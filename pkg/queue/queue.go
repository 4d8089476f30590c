// Package queue runs background jobs: download-log writes, receipt emails.
// Both are best-effort side effects; failure never rolls back the request
// that dispatched them.
//
//	type ReceiptJob struct{ OrderID string }
//	func (ReceiptJob) Name() string { return "receipt" }
//	func (j ReceiptJob) Handle(ctx context.Context) error { ... }
//
//	queue.Register("receipt", func() Job { return &ReceiptJob{} })
//	queue.Dispatch(ReceiptJob{OrderID: id})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/kalakriti/pkg/logger"
	"github.com/shashiranjanraj/kalakriti/pkg/metrics"
)

// Job is a unit of background work. Name identifies the job type on the
// wire so workers can rebuild it from the registry.
type Job interface {
	Name() string
	Handle(ctx context.Context) error
}

// Driver is the queue transport.
type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Manager owns the driver, the job registry, and failure bookkeeping.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	maxRetry int
}

var defaultManager = &Manager{
	driver:   NewMemoryDriver(),
	registry: map[string]func() Job{},
	maxRetry: 3,
}

// SetDriver swaps the transport. Call before StartWorkers.
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defaultManager.driver = d
	defaultManager.mu.Unlock()
}

// SetMaxRetry sets per-job retry attempts.
func SetMaxRetry(n int) { defaultManager.maxRetry = n }

// Register maps a job name to a constructor for deserialization.
// Call once per job type at boot.
func Register(name string, factory func() Job) {
	defaultManager.mu.Lock()
	defaultManager.registry[name] = factory
	defaultManager.mu.Unlock()
}

// Dispatch pushes the job for the next available worker.
func Dispatch(job Job) error { return defaultManager.push(job) }

// DispatchAfter pushes the job after a delay. With the memory driver this
// is goroutine-based; the Redis driver schedules via its delayed set when
// used directly.
func DispatchAfter(job Job, delay time.Duration) {
	go func() {
		time.Sleep(delay)
		if err := Dispatch(job); err != nil {
			logger.Error("queue: delayed dispatch failed", "job", job.Name(), "error", err)
		}
	}()
}

func (m *Manager) push(job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal %s: %w", job.Name(), err)
	}
	env, err := json.Marshal(envelope{Type: job.Name(), Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()
	return d.Push(env)
}

// StartWorkers runs n workers until ctx is cancelled.
func StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go defaultManager.work(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		m.process(ctx, raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(ctx, job)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job) {
	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= m.maxRetry; attempt++ {
		if err := job.Handle(ctx); err != nil {
			lastErr = err
			logger.Warn("queue: job failed, retrying",
				"type", job.Name(), "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			continue
		}
		metrics.RecordQueueJob(job.Name(), "success", start)
		return
	}

	metrics.RecordQueueJob(job.Name(), "failed", start)
	m.persistFailed(job, lastErr, m.maxRetry)
	logger.Error("queue: job exhausted retries", "type", job.Name(), "error", lastErr)
}
