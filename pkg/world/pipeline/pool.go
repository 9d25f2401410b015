package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is reported by futures for tasks submitted after Close.
var ErrPoolClosed = errors.New("pipeline: pool closed")

// Executor runs stage tasks asynchronously.
type Executor interface {
	Submit(task func() error) *Future
}

// Future is the pending result of a submitted task.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Done is closed once the task has finished.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the task finishes or ctx is done. A cancelled wait does
// not stop the task.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pool is a fixed set of worker goroutines shared by every chunk.
type Pool struct {
	tasks chan poolTask
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type poolTask struct {
	run func() error
	fut *Future
}

// NewPool starts workers goroutines. workers < 1 means 1.
func NewPool(workers int) *Pool {
	workers = max(workers, 1)
	p := &Pool{tasks: make(chan poolTask, workers*4)}
	p.wg.Add(workers)
	for range workers {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for t := range p.tasks {
		t.fut.complete(runTask(t.run))
	}
}

func runTask(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline: task panicked: %v", r)
		}
	}()
	return task()
}

// Submit queues task and returns its future. It blocks while the queue is
// full.
func (p *Pool) Submit(task func() error) *Future {
	fut := newFuture()
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		fut.complete(ErrPoolClosed)
		return fut
	}
	p.tasks <- poolTask{run: task, fut: fut}
	return fut
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
