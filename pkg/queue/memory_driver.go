package queue

import (
	"context"
	"errors"
	"sync"
)

var errDriverClosed = errors.New("queue: driver closed")

const defaultMemoryBuffer = 1000

// MemoryDriver hands payloads between goroutines of one process over a
// buffered channel. Anything still buffered is lost on exit.
type MemoryDriver struct {
	ch   chan []byte
	done chan struct{}
	once sync.Once
}

// NewMemoryDriver buffers up to size payloads; Push blocks beyond that.
func NewMemoryDriver(size int) *MemoryDriver {
	if size <= 0 {
		size = defaultMemoryBuffer
	}
	return &MemoryDriver{ch: make(chan []byte, size), done: make(chan struct{})}
}

func (d *MemoryDriver) Push(ctx context.Context, payload []byte) error {
	select {
	case <-d.done:
		return errDriverClosed
	default:
	}
	select {
	case d.ch <- payload:
		return nil
	case <-d.done:
		return errDriverClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-d.ch:
		return payload, nil
	case <-d.done:
		return nil, errDriverClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len is the number of payloads waiting.
func (d *MemoryDriver) Len() int { return len(d.ch) }

func (d *MemoryDriver) Close() error {
	d.once.Do(func() { close(d.done) })
	return nil
}
