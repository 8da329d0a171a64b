// Package queue runs background jobs. Jobs are JSON encoded into an
// envelope, pushed through a Driver and decoded again by a registered
// factory on the worker side, so the same job can run in-process or on a
// separate `queue:work` host.
//
//	queue.Register("send_order_confirmation", func() queue.Job { return &jobs.SendOrderConfirmation{} })
//	queue.Dispatch(ctx, &jobs.SendOrderConfirmation{OrderID: 42})
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle(ctx context.Context) error
}

// Named lets a job choose its registry name. Without it the Go type name
// is used.
type Named interface {
	JobName() string
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue transport.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is available. A nil payload with a nil
	// error means the wait timed out and the caller should poll again.
	Pop(ctx context.Context) ([]byte, error)
	Close() error
}

// ErrUnknownJob is returned for an envelope whose type was never registered.
var ErrUnknownJob = errors.New("queue: unregistered job type")

// Manager is the central queue hub.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	backoff  time.Duration
}

var defaultManager = NewManager(NewMemoryDriver(0))

func NewManager(d Driver) *Manager {
	return &Manager{
		driver:   d,
		registry: map[string]func() Job{},
		maxRetry: 3,
		backoff:  time.Second,
	}
}

// SetDriver swaps the transport of the default manager and closes the old one.
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	old := defaultManager.driver
	defaultManager.driver = d
	defaultManager.mu.Unlock()
	if old != nil && old != d {
		_ = old.Close()
	}
}

// SetMaxRetry sets how many attempts a failing job gets.
func SetMaxRetry(n int) {
	defaultManager.mu.Lock()
	defaultManager.maxRetry = n
	defaultManager.mu.Unlock()
}

// SetBackoff sets the base delay between attempts. Attempt n waits n*d.
func SetBackoff(d time.Duration) {
	defaultManager.mu.Lock()
	defaultManager.backoff = d
	defaultManager.mu.Unlock()
}

// Register makes a job type available for decoding by name.
func Register(name string, factory func() Job) { defaultManager.Register(name, factory) }

func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

type envelope struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"queued_at"`
}

func typeName(job Job) string {
	if n, ok := job.(Named); ok {
		return n.JobName()
	}
	return fmt.Sprintf("%T", job)
}

// Dispatch pushes job onto the default queue.
func Dispatch(ctx context.Context, job Job) error { return defaultManager.Dispatch(ctx, job) }

func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	name := typeName(job)

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", name, err)
	}
	env, err := json.Marshal(envelope{Type: name, Payload: payload, QueuedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	if err := d.Push(ctx, env); err != nil {
		return fmt.Errorf("queue: push %s: %w", name, err)
	}
	return nil
}

// StartWorkers launches n workers on the default manager. They run until
// ctx is cancelled; the returned WaitGroup is done once all have stopped.
func StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	return defaultManager.StartWorkers(ctx, n)
}

func (m *Manager) StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	return &wg
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}

		if err := m.process(ctx, raw); err != nil {
			logger.Error("queue: dropped message", "error", err)
		}
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("queue: bad envelope: %w", err)
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, env.Type)
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		return fmt.Errorf("queue: unmarshal %s: %w", env.Type, err)
	}

	m.runWithRetry(ctx, job, env.Type, env.Payload)
	return nil
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, name string, payload []byte) {
	m.mu.RLock()
	maxRetry, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()
	if maxRetry < 1 {
		maxRetry = 1
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= maxRetry; attempt++ {
		lastErr = job.Handle(ctx)
		if lastErr == nil {
			metrics.RecordQueueJob(name, "ok", start)
			logger.Info("queue: job processed", "type", name, "attempt", attempt)
			return
		}
		logger.Warn("queue: job failed", "type", name, "attempt", attempt, "error", lastErr)
		if attempt < maxRetry && !sleep(ctx, time.Duration(attempt)*backoff) {
			break
		}
	}

	metrics.RecordQueueJob(name, "failed", start)
	m.persistFailed(name, payload, lastErr, maxRetry)
	logger.Error("queue: job exhausted retries", "type", name, "error", lastErr)
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// FailedJobs returns a snapshot of the failures seen by this process.
func FailedJobs() []FailedJob { return defaultManager.FailedJobs() }

func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out
}

// Close closes the default manager's driver.
func Close() error {
	defaultManager.mu.RLock()
	d := defaultManager.driver
	defaultManager.mu.RUnlock()
	return d.Close()
}
