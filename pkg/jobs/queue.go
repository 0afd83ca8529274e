package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotStarted = errors.New("queue not started")
	ErrStopped    = errors.New("queue stopped")
)

const maxBackoff = time.Minute

// Job is one unit of background work. Attempt is 1 on the first run.
type Job struct {
	ID       string
	Type     string
	Attempt  int
	Enqueued time.Time
}

type Handler func(context.Context, Job) error

// Observer sees every handler run, failed or not.
type Observer func(job Job, err error, elapsed time.Duration)

type QueueConfig struct {
	Workers     int
	BufferSize  int
	MaxAttempts int
	// RetryDelay is the wait before the second attempt; it doubles per attempt up to a minute.
	RetryDelay time.Duration
	Observer   Observer
	Logger     *zap.Logger
}

// Queue runs jobs on a fixed pool of goroutines, retrying failures with
// exponential backoff until MaxAttempts runs have failed.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger
	jobs    chan Job

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Workers exit when ctx ends or Stop is called.
// Calling Start twice has no effect.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ctx != nil {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers), zap.Int("max_attempts", q.cfg.MaxAttempts))
}

// Stop cancels the workers and pending retries and waits for them. Jobs still
// buffered are dropped; callers persist enough state to replay them.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.ctx == nil {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped", zap.Int("dropped", len(q.jobs)))
}

// Pending is the number of buffered jobs.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// Enqueue buffers job, waiting for room until ctx ends or the queue stops.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	qctx := q.ctx
	q.mu.Unlock()
	if qctx == nil {
		return fmt.Errorf("%s: %w", q.name, ErrNotStarted)
	}
	if qctx.Err() != nil {
		return fmt.Errorf("%s: %w", q.name, ErrStopped)
	}
	if job.Attempt < 1 {
		job.Attempt = 1
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	case <-qctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrStopped)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			start := time.Now()
			err := q.run(job)
			if q.cfg.Observer != nil {
				q.cfg.Observer(job, err, time.Since(start))
			}
			if err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return q.handler(q.ctx, job)
}

func (q *Queue) retry(job Job, cause error) {
	log := q.logger.With(zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(cause))
	if job.Attempt >= q.cfg.MaxAttempts {
		log.Error("job gave up")
		return
	}
	delay := backoff(q.cfg.RetryDelay, job.Attempt)
	log.Warn("job failed, retrying", zap.Duration("delay", delay))

	job.Attempt++
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(q.ctx, job); err != nil {
				q.logger.Warn("requeue failed", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
	}()
}

// backoff returns base doubled once per finished attempt after the first.
func backoff(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}
