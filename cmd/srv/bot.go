package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/cron"
	"github.com/questx-lab/raffle/internal/domain/message"
	"github.com/questx-lab/raffle/internal/domain/raffle"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/chain"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/prometheus"
	"github.com/questx-lab/raffle/pkg/queue"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startBot(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	cfg := xcontext.Configs(s.ctx)
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	forumClient := forum.NewClient(cfg.Forum)
	if err := forumClient.Login(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot log in to the forum as %s: %v", cfg.Forum.User, err)
		return err
	}
	xcontext.Logger(ctx).Infof("Logged in to the forum as %s", cfg.Forum.User)

	chainSource, err := chain.New(ctx, cfg.Chain)
	if err != nil {
		return err
	}
	if closer, ok := chainSource.(interface{ Close() }); ok {
		defer closer.Close()
	}

	taskQueue := queue.New(queue.Options{
		MinInterval:     cfg.Queue.MinInterval.Duration,
		MaxAttempts:     cfg.Queue.MaxAttempts,
		InitialInterval: cfg.Queue.InitialInterval.Duration,
		MaxInterval:     cfg.Queue.MaxInterval.Duration,
		DeadLetter:      s.deadLetter,
	})
	go taskQueue.Run(ctx)

	renderer := message.NewRenderer(cfg)
	locks := raffle.NewTopicLocks()
	poster := raffle.NewPoster(s.gameRepo, s.entryRepo, forumClient, taskQueue, renderer)
	validator := raffle.NewEntryValidator(cfg.Forum, s.entryRepo, forumClient)
	router := raffle.NewRouter(cfg, s.gameRepo, validator, poster, locks)
	lifecycle := raffle.NewLifecycle(cfg.Raffle, s.gameRepo, s.entryRepo, chainSource,
		forumClient, forumClient, taskQueue, renderer, poster, locks)

	go func() {
		xcontext.Logger(ctx).Infof("Starting prometheus on port: %s", cfg.PrometheusServer.Port)
		if err := prometheus.Serve(ctx, cfg.PrometheusServer.Address()); err != nil {
			xcontext.Logger(ctx).Errorf("Prometheus server stopped: %v", err)
		}
	}()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewPostIntakeCronJob(
		s.cursorRepo, forum.NewFeed(cfg.Feed), router, cfg.Raffle.IntakeInterval.Duration))
	cronJobManager.Register(cron.NewLifecycleCronJob(lifecycle, cfg.Raffle.LifecycleInterval.Duration))

	go func() {
		<-ctx.Done()
		xcontext.Logger(s.ctx).Infof("Shutting down, %d queued forum requests are dropped", taskQueue.Len())
		cronJobManager.Cancel(s.ctx)
	}()

	cronJobManager.Start(ctx)
	return nil
}

// deadLetter keeps a task which ran out of retries for an operator to
// inspect with the dead-letters command.
func (s *srv) deadLetter(ctx context.Context, job *queue.Job) {
	common.PromCounters[common.QueueDeadLetterTotal].WithLabelValues(job.Kind()).Inc()

	letter := repository.DeadLetter{
		ID:       job.ID,
		Name:     job.Name,
		Attempts: job.Attempts,
		FailedAt: time.Now().UTC(),
	}
	if job.LastErr != nil {
		letter.Error = job.LastErr.Error()
	}

	if err := s.deadLetterRepo.Append(ctx, letter); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store dead letter of task %s: %v", job.Name, err)
	}
}
