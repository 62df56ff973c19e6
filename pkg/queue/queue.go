// Package queue serializes outbound requests: one task runs at a time, in
// FIFO order, spaced by a rate limiter. A failed task goes back to the tail
// after an exponential backoff delay until it succeeds or runs out of
// attempts, at which point it is dead-lettered.
package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"golang.org/x/time/rate"
)

type Task func(ctx context.Context) error

type Job struct {
	ID       string
	Name     string
	Attempts int
	LastErr  error

	task    Task
	readyAt time.Time
	backoff backoff.BackOff
	done    chan error
}

// Kind is the part of the name before the first colon, "publish:3" is of
// kind "publish".
func (j *Job) Kind() string {
	kind, _, _ := strings.Cut(j.Name, ":")
	return kind
}

type DeadLetterFunc func(ctx context.Context, job *Job)

type Options struct {
	// MinInterval is the minimum spacing between two task starts.
	MinInterval     time.Duration
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	DeadLetter      DeadLetterFunc
}

type Queue struct {
	mu     sync.Mutex
	jobs   []*Job
	wakeup chan struct{}

	limiter     *rate.Limiter
	maxAttempts int
	newBackOff  func() backoff.BackOff
	deadLetter  DeadLetterFunc
}

func New(opts Options) *Queue {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Queue{
		wakeup:      make(chan struct{}, 1),
		limiter:     rate.NewLimiter(limit, 1),
		maxAttempts: opts.MaxAttempts,
		deadLetter:  opts.DeadLetter,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			if opts.InitialInterval > 0 {
				b.InitialInterval = opts.InitialInterval
			}
			if opts.MaxInterval > 0 {
				b.MaxInterval = opts.MaxInterval
			}
			// Attempts bound the retries, not the elapsed time.
			b.MaxElapsedTime = 0
			b.Reset()
			return b
		},
	}
}

// Push appends a task to the queue. The returned channel receives the final
// outcome: nil once the task succeeded, or the last error once it has been
// dead-lettered.
func (q *Queue) Push(name string, task Task) <-chan error {
	job := &Job{
		ID:      uuid.NewString(),
		Name:    name,
		task:    task,
		backoff: q.newBackOff(),
		done:    make(chan error, 1),
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	q.notify()
	return job.done
}

// Do pushes a task and waits for its final outcome.
func (q *Queue) Do(ctx context.Context, name string, task Task) error {
	select {
	case err := <-q.Push(name, task):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.jobs)
}

// Run executes tasks until ctx is done.
func (q *Queue) Run(ctx context.Context) {
	for {
		job, wait := q.next(time.Now())
		if job == nil {
			if !q.sleep(ctx, wait) {
				return
			}
			continue
		}

		if err := q.limiter.Wait(ctx); err != nil {
			q.requeue(job)
			return
		}

		q.execute(ctx, job)
	}
}

// next removes and returns the first job which is ready at now. If none is
// ready it returns how long until the earliest one is, or 0 if the queue is
// empty.
func (q *Queue) next(now time.Time) (*Job, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var wait time.Duration
	for i, job := range q.jobs {
		if !job.readyAt.After(now) {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			return job, 0
		}

		if d := job.readyAt.Sub(now); wait == 0 || d < wait {
			wait = d
		}
	}

	return nil, wait
}

func (q *Queue) execute(ctx context.Context, job *Job) {
	job.Attempts++
	start := time.Now()
	err := job.task(ctx)

	status := "ok"
	if err != nil {
		status = "error"
	}
	common.PromHistograms[common.QueueTaskDurationSeconds].
		WithLabelValues(job.Kind(), status).Observe(time.Since(start).Seconds())

	if err == nil {
		job.done <- nil
		return
	}

	job.LastErr = err
	delay := job.backoff.NextBackOff()
	if job.Attempts >= q.maxAttempts || delay == backoff.Stop {
		xcontext.Logger(ctx).Errorf("Task %s (%s) dead-lettered after %d attempts: %v",
			job.Name, job.ID, job.Attempts, err)
		if q.deadLetter != nil {
			q.deadLetter(ctx, job)
		}

		job.done <- errors.Join(errorx.New(errorx.DeadLettered, "task %s gave up", job.Name), err)
		return
	}

	xcontext.Logger(ctx).Warnf("Task %s (%s) failed at attempt %d, retry in %s: %v",
		job.Name, job.ID, job.Attempts, delay, err)
	job.readyAt = time.Now().Add(delay)
	q.requeue(job)
}

func (q *Queue) requeue(job *Job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
}

// sleep blocks until a push, until wait elapses (if positive) or until ctx is
// done, in which case it returns false.
func (q *Queue) sleep(ctx context.Context, wait time.Duration) bool {
	var timeout <-chan time.Time
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return false
	case <-q.wakeup:
	case <-timeout:
	}

	return true
}

func (q *Queue) notify() {
	select {
	case q.wakeup <- struct{}{}:
	default:
	}
}
