// Package schedule runs housekeeping tasks on fixed intervals.
//
// Usage:
//
//	s := schedule.New()
//	s.Every(time.Hour).Name("carts:prune").WithoutOverlapping().Run(pruneCarts)
//	s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Task is one unit of scheduled work. ctx is cancelled on shutdown.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler dispatches registered entries from a single ticker.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	wg      sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{tick: time.Second}
}

// Builder configures one entry before Run registers it.
type Builder struct {
	s *Scheduler
	e *entry
}

// Every starts an entry that runs once at start and then every d.
func (s *Scheduler) Every(d time.Duration) *Builder {
	return &Builder{s: s, e: &entry{interval: d}}
}

func (b *Builder) Name(id string) *Builder {
	b.e.id = id
	return b
}

// WithoutOverlapping skips a run while the previous one is still going.
func (b *Builder) WithoutOverlapping() *Builder {
	b.e.noOverlap = true
	return b
}

func (b *Builder) Run(fn Task) {
	b.e.task = fn
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.id == "" {
		b.e.id = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
}

// Start runs the dispatch loop in the background until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	logger.Info("schedule: scheduler started", "entries", len(s.List()))
}

// Wait blocks until the loop and any in-flight tasks have returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.dispatchDue(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			s.dispatchDue(ctx, now)
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	current := make([]*entry, len(s.entries))
	copy(current, s.entries)
	s.mu.Unlock()

	for _, e := range current {
		if e.due(now) {
			s.dispatch(ctx, e, now)
		}
	}
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "id", e.id, "error", err)
			return
		}
		logger.Debug("schedule: task finished", "id", e.id, "took", time.Since(start).String())
	}()
}

// List describes the registered entries, for the CLI.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [every %s]", e.id, e.interval))
	}
	return out
}
