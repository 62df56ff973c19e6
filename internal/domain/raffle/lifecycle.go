package raffle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/draw"
	"github.com/questx-lab/raffle/internal/domain/message"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/chain"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Lifecycle moves games through open, closed and finalized. Every call to
// Evaluate advances a game by at most one stage.
type Lifecycle struct {
	cfg         config.RaffleConfigs
	gameRepo    repository.GameRepository
	entryRepo   repository.EntryRepository
	chain       chain.Source
	publisher   Publisher
	topicLookup TopicLookup
	queue       TaskQueue
	renderer    *message.Renderer
	poster      *Poster
	locks       *TopicLocks
	now         func() time.Time
}

func NewLifecycle(
	cfg config.RaffleConfigs,
	gameRepo repository.GameRepository,
	entryRepo repository.EntryRepository,
	chainSource chain.Source,
	publisher Publisher,
	topicLookup TopicLookup,
	queue TaskQueue,
	renderer *message.Renderer,
	poster *Poster,
	locks *TopicLocks,
) *Lifecycle {
	return &Lifecycle{
		cfg:         cfg,
		gameRepo:    gameRepo,
		entryRepo:   entryRepo,
		chain:       chainSource,
		publisher:   publisher,
		topicLookup: topicLookup,
		queue:       queue,
		renderer:    renderer,
		poster:      poster,
		locks:       locks,
		now:         time.Now,
	}
}

// Run evaluates every game which is not finalized yet, concurrently.
func (l *Lifecycle) Run(ctx context.Context) error {
	games, err := l.gameRepo.GetUnfinalized(ctx)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for i := range games {
		game := &games[i]
		g.Go(func() error {
			if err := l.Evaluate(ctx, game); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot advance game #%d (%s): %v", game.ID, game.Stage(), err)
			}

			return nil
		})
	}

	return g.Wait()
}

// Evaluate applies the next transition of the game if it is due.
func (l *Lifecycle) Evaluate(ctx context.Context, game *entity.Game) error {
	if !l.locks.TryLock(game.TopicID) {
		xcontext.Logger(ctx).Debugf("Game #%d is being processed, skip", game.ID)
		return nil
	}
	defer l.locks.Unlock(game.TopicID)

	switch game.Stage() {
	case entity.GameStageOpen:
		if game.PostID == 0 {
			xcontext.Logger(ctx).Warnf("Game #%d has no raffle post, publish it again", game.ID)
			return l.poster.PublishRaffle(ctx, game)
		}

		if !game.Finished(l.now()) {
			return nil
		}

		return l.close(ctx, game)

	case entity.GameStageClosed:
		return l.finalize(ctx, game)
	}

	return nil
}

func (l *Lifecycle) close(ctx context.Context, game *entity.Game) error {
	if game.OverviewPostID != 0 {
		return errorx.New(errorx.StageConflict, "Game #%d is already closed", game.ID)
	}

	tip, err := l.chain.CurrentHeight(ctx)
	if err != nil {
		return err
	}
	blockHeight := tip + l.cfg.Confirmations

	entries, err := l.entryRepo.GetByGameID(ctx, game.ID)
	if err != nil {
		return err
	}

	content, err := l.renderer.Closing(game, blockHeight, entries)
	if err != nil {
		return err
	}

	postID, err := l.publish(ctx, fmt.Sprintf("publish_closing:%d", game.ID), game.TopicID, message.ClosingSubject, content)
	if err != nil {
		return err
	}

	if err := l.gameRepo.MarkClosed(ctx, game.ID, blockHeight, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.StageConflict, "Game #%d was closed concurrently", game.ID)
		}

		return err
	}

	game.BlockHeight = blockHeight
	game.OverviewPostID = postID
	common.PromCounters[common.StageTransitionTotal].WithLabelValues(string(entity.GameStageClosed)).Inc()
	xcontext.Logger(ctx).Infof("Game #%d closed with %d entries, draw bound to block %d",
		game.ID, len(entries), blockHeight)
	return nil
}

func (l *Lifecycle) finalize(ctx context.Context, game *entity.Game) error {
	if game.BlockHeight == 0 {
		return errorx.New(errorx.StageConflict, "Game #%d is closed without a block height", game.ID)
	}

	tip, err := l.chain.CurrentHeight(ctx)
	if err != nil {
		return err
	}

	if tip < game.BlockHeight {
		xcontext.Logger(ctx).Debugf("Game #%d waits for block %d, tip is %d", game.ID, game.BlockHeight, tip)
		return nil
	}

	blockHash, err := l.chain.BlockHash(ctx, game.BlockHeight)
	if err != nil {
		return err
	}

	entries, err := l.entryRepo.GetByGameID(ctx, game.ID)
	if err != nil {
		return err
	}

	result, err := draw.Draw(game.Seed, blockHash, draw.FromEntities(entries), game.NumberWinners)
	if err != nil {
		return err
	}

	game.BlockHash = blockHash
	content, err := l.renderer.Result(game, entries, result, l.topMerited(ctx, entries))
	if err != nil {
		return err
	}

	postID, err := l.publish(ctx, fmt.Sprintf("publish_result:%d", game.ID), game.TopicID, message.ResultSubject, content)
	if err != nil {
		return err
	}

	final := repository.FinalizeGame{
		WinnerPostID: postID,
		BlockHash:    blockHash,
		TicketsDrawn: result.Tickets,
	}
	for _, w := range result.Winners {
		final.WinnerEntryIDs = append(final.WinnerEntryIDs, w.EntryID)
		final.WinnerAuthors = append(final.WinnerAuthors, w.Author)
	}

	if err := l.gameRepo.MarkFinalized(ctx, game.ID, final); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.StageConflict, "Game #%d was finalized concurrently", game.ID)
		}

		return err
	}

	game.WinnerPostID = postID
	common.PromCounters[common.StageTransitionTotal].WithLabelValues(string(entity.GameStageFinalized)).Inc()
	xcontext.Logger(ctx).Infof("Game #%d finalized, winners %v", game.ID, final.WinnerAuthors)
	return nil
}

// topMerited looks up every entered topic and returns the one with the most
// merits. Topics which cannot be looked up are skipped.
func (l *Lifecycle) topMerited(ctx context.Context, entries []entity.Entry) *message.TopMerited {
	var top *message.TopMerited
	for _, entry := range entries {
		topic, err := l.topicLookup.LookupTopic(ctx, entry.TopicID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot look up topic %d for merits: %v", entry.TopicID, err)
			continue
		}

		if top == nil || topic.Merits > top.Merits {
			top = &message.TopMerited{
				TopicID: entry.TopicID,
				Title:   topic.Title,
				Merits:  topic.Merits,
				Author:  entry.Author,
			}
		}
	}

	return top
}

func (l *Lifecycle) publish(ctx context.Context, name string, topicID int64, subject, content string) (int64, error) {
	var postID int64
	err := l.queue.Do(ctx, name, func(ctx context.Context) error {
		var err error
		postID, err = l.publisher.PublishPost(ctx, forum.PostRequest{
			TopicID: topicID,
			Subject: subject,
			Message: content,
		})
		return err
	})

	return postID, err
}
