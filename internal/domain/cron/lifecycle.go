package cron

import (
	"context"
	"time"

	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type GameEvaluator interface {
	Run(ctx context.Context) error
}

type LifecycleCronJob struct {
	lifecycle GameEvaluator
	interval  time.Duration
}

func NewLifecycleCronJob(lifecycle GameEvaluator, interval time.Duration) *LifecycleCronJob {
	return &LifecycleCronJob{lifecycle: lifecycle, interval: interval}
}

func (job *LifecycleCronJob) Do(ctx context.Context) {
	start := time.Now()
	if err := job.lifecycle.Run(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot evaluate games: %v", err)
	}

	common.PromHistograms[common.CycleDurationSeconds].
		WithLabelValues("lifecycle").Observe(time.Since(start).Seconds())
}

func (job *LifecycleCronJob) RunNow() bool {
	return true
}

func (job *LifecycleCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
