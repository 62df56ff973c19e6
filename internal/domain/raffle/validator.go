package raffle

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

type EntryOutcome string

const (
	EntryAccepted     EntryOutcome = "accepted"
	EntryDuplicate    EntryOutcome = "duplicate"
	EntryNotAuthor    EntryOutcome = "not_author"
	EntryLateTopic    EntryOutcome = "late_topic"
	EntryLookupFailed EntryOutcome = "lookup_failed"
	EntryFailed       EntryOutcome = "failed"
)

// EntryValidator registers the threads a participant submits into a game.
type EntryValidator struct {
	cfg         config.ForumConfigs
	entryRepo   repository.EntryRepository
	topicLookup TopicLookup
}

func NewEntryValidator(
	cfg config.ForumConfigs,
	entryRepo repository.EntryRepository,
	topicLookup TopicLookup,
) *EntryValidator {
	return &EntryValidator{
		cfg:         cfg,
		entryRepo:   entryRepo,
		topicLookup: topicLookup,
	}
}

// CheckPost applies the rules which reject every link of a post at once.
func (v *EntryValidator) CheckPost(game *entity.Game, post forum.Post, now time.Time) error {
	if game.Finished(now) {
		return errorx.New(errorx.GameFinished, "Game #%d is finished", game.ID)
	}

	if post.AuthorUID == v.cfg.BotUserID {
		return errorx.New(errorx.PermissionDenied, "Post %d was written by the bot", post.PostID)
	}

	if slices.Contains(v.cfg.BlacklistedParticipants, post.AuthorUID) {
		return errorx.New(errorx.PermissionDenied, "User %d is not allowed to participate", post.AuthorUID)
	}

	return nil
}

// Submit validates every link of the post concurrently and returns how many
// entries were created. A rejected link never affects the others.
func (v *EntryValidator) Submit(
	ctx context.Context, game *entity.Game, post forum.Post, topicIDs []int64, now time.Time,
) (int, error) {
	if err := v.CheckPost(game, post, now); err != nil {
		return 0, err
	}

	seen := map[int64]bool{}
	var accepted int32
	var g errgroup.Group
	for _, topicID := range topicIDs {
		if seen[topicID] {
			continue
		}
		seen[topicID] = true

		topicID := topicID
		g.Go(func() error {
			outcome, err := v.Register(ctx, game, post, topicID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot register topic %d of post %d: %v", topicID, post.PostID, err)
			}

			common.PromCounters[common.EntryValidationTotal].WithLabelValues(string(outcome)).Inc()
			if outcome == EntryAccepted {
				atomic.AddInt32(&accepted, 1)
			}

			return nil
		})
	}

	g.Wait()
	return int(accepted), nil
}

// Register applies the per link rules and creates the entry when they all
// pass. A rejection is reported through the outcome, err is only set when
// the outcome could not be decided.
func (v *EntryValidator) Register(
	ctx context.Context, game *entity.Game, post forum.Post, topicID int64,
) (EntryOutcome, error) {
	exists, err := v.entryRepo.ExistsByTopicID(ctx, topicID)
	if err != nil {
		return EntryFailed, err
	}

	if exists {
		return EntryDuplicate, nil
	}

	topic, err := v.topicLookup.LookupTopic(ctx, topicID)
	if err != nil {
		return EntryLookupFailed, err
	}

	if topic.AuthorUID != post.AuthorUID {
		return EntryNotAuthor, nil
	}

	if !topic.CreatedAt.Before(game.Deadline) {
		return EntryLateTopic, nil
	}

	entry := &entity.Entry{
		GameID:    game.ID,
		PostID:    post.PostID,
		TopicID:   topicID,
		Author:    post.Author,
		AuthorUID: post.AuthorUID,
	}

	if err := v.entryRepo.Create(ctx, entry); err != nil {
		// The unique index on topic_id rejects a concurrent duplicate.
		if exists, existsErr := v.entryRepo.ExistsByTopicID(ctx, topicID); existsErr == nil && exists {
			return EntryDuplicate, nil
		}

		return EntryFailed, err
	}

	xcontext.Logger(ctx).Infof("Topic %d of %s entered game #%d as entry %d",
		topicID, post.Author, game.ID, entry.ID)
	return EntryAccepted, nil
}
