package cron

import (
	"context"
	"time"

	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type PostFeed interface {
	FetchRecentPosts(ctx context.Context, sinceID int64) ([]forum.Post, error)
}

type PostHandler interface {
	HandlePosts(ctx context.Context, posts []forum.Post)
}

// PostIntakeCronJob fetches the posts newer than the stored cursor and runs
// their commands. The cursor only moves once the whole batch is handled.
type PostIntakeCronJob struct {
	cursorRepo repository.CursorRepository
	feed       PostFeed
	handler    PostHandler
	interval   time.Duration
}

func NewPostIntakeCronJob(
	cursorRepo repository.CursorRepository,
	feed PostFeed,
	handler PostHandler,
	interval time.Duration,
) *PostIntakeCronJob {
	return &PostIntakeCronJob{
		cursorRepo: cursorRepo,
		feed:       feed,
		handler:    handler,
		interval:   interval,
	}
}

func (job *PostIntakeCronJob) Do(ctx context.Context) {
	start := time.Now()
	defer func() {
		common.PromHistograms[common.CycleDurationSeconds].
			WithLabelValues("post_intake").Observe(time.Since(start).Seconds())
	}()

	lastPostID, err := job.cursorRepo.GetLastPostID(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the post cursor: %v", err)
		return
	}

	posts, err := job.feed.FetchRecentPosts(ctx, lastPostID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot fetch posts after %d: %v", lastPostID, err)
		return
	}

	if len(posts) == 0 {
		return
	}

	job.handler.HandlePosts(ctx, posts)

	maxID := lastPostID
	for _, p := range posts {
		if p.PostID > maxID {
			maxID = p.PostID
		}
	}

	if err := job.cursorRepo.SetLastPostID(ctx, maxID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot move the post cursor to %d: %v", maxID, err)
		return
	}

	xcontext.Logger(ctx).Infof("Handled %d posts, cursor at %d", len(posts), maxID)
}

func (job *PostIntakeCronJob) RunNow() bool {
	return true
}

func (job *PostIntakeCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
