// Package worker processes queued review jobs one at a time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultQueueSize is used when New is given a non-positive size
const DefaultQueueSize = 16

var (
	// ErrQueueFull is returned by Submit when the queue has no free slot
	ErrQueueFull = errors.New("worker: queue is full")
	// ErrStopped is returned by Submit after Run has returned
	ErrStopped = errors.New("worker: stopped")
)

// Job is one contract submitted for asynchronous review
type Job struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Text     string `json:"text"`
	Header   string `json:"header,omitempty"`
}

// Handler processes a job. A returned error is logged; the worker keeps running.
type Handler func(ctx context.Context, job Job) error

// Stats counts processed jobs
type Stats struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// Worker is a bounded job queue drained by a single consumer
type Worker struct {
	queue   chan Job
	handler Handler

	mu        sync.Mutex
	stopped   bool
	processed int
	failed    int
}

// New creates a Worker with a queue of the given size
func New(size int, handler Handler) *Worker {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Worker{
		queue:   make(chan Job, size),
		handler: handler,
	}
}

// Submit enqueues a job without blocking
func (w *Worker) Submit(job Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}

	select {
	case w.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run consumes jobs until ctx is done. Jobs still queued at that point are dropped.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("[WORKER] started (queue size %d)", cap(w.queue))
	defer func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
		log.Printf("[WORKER] stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-w.queue:
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	start := time.Now()
	err := w.safeHandle(ctx, job)

	w.mu.Lock()
	w.processed++
	if err != nil {
		w.failed++
	}
	w.mu.Unlock()

	if err != nil {
		log.Printf("[WORKER] job %s failed after %v: %v", job.ID, time.Since(start), err)
		return
	}
	log.Printf("[WORKER] job %s done in %v", job.ID, time.Since(start))
}

func (w *Worker) safeHandle(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.handler(ctx, job)
}

// Stats returns the job counters
func (w *Worker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{Processed: w.processed, Failed: w.failed, Pending: len(w.queue)}
}
