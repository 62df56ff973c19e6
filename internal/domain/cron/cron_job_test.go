package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs int32
}

func (j *countingJob) Do(context.Context) {
	atomic.AddInt32(&j.runs, 1)
}

func (j *countingJob) RunNow() bool {
	return true
}

func (j *countingJob) Next() time.Time {
	return time.Now().Add(5 * time.Millisecond)
}

type countingEvaluator struct {
	runs int32
}

func (e *countingEvaluator) Run(context.Context) error {
	atomic.AddInt32(&e.runs, 1)
	return nil
}

func TestCronJobManager(t *testing.T) {
	ctx := testutil.MockContext()
	job := &countingJob{}
	evaluator := &countingEvaluator{}

	m := NewCronJobManager()
	m.Register(job)
	m.Register(NewLifecycleCronJob(evaluator, 5*time.Millisecond))

	stopped := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) >= 3 && atomic.LoadInt32(&evaluator.runs) >= 3
	}, time.Second, time.Millisecond)

	m.Cancel(ctx)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}
