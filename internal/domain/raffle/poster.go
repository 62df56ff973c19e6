package raffle

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/raffle/internal/domain/message"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm"
)

// Poster publishes and refreshes the main raffle post of a game. Every forum
// write goes through the queue.
type Poster struct {
	gameRepo  repository.GameRepository
	entryRepo repository.EntryRepository
	publisher Publisher
	queue     TaskQueue
	renderer  *message.Renderer

	pendingRefresh *xsync.MapOf[string, struct{}]
}

func NewPoster(
	gameRepo repository.GameRepository,
	entryRepo repository.EntryRepository,
	publisher Publisher,
	queue TaskQueue,
	renderer *message.Renderer,
) *Poster {
	return &Poster{
		gameRepo:       gameRepo,
		entryRepo:      entryRepo,
		publisher:      publisher,
		queue:          queue,
		renderer:       renderer,
		pendingRefresh: xsync.NewMapOf[struct{}](),
	}
}

// PublishRaffle posts the raffle of a game which has no post yet and records
// the post id. It waits until the queue ran the request.
func (p *Poster) PublishRaffle(ctx context.Context, game *entity.Game) error {
	entries, err := p.entryRepo.GetByGameID(ctx, game.ID)
	if err != nil {
		return err
	}

	content, err := p.renderer.Raffle(game, entries)
	if err != nil {
		return err
	}

	var postID int64
	err = p.queue.Do(ctx, fmt.Sprintf("publish_raffle:%d", game.ID), func(ctx context.Context) error {
		var err error
		postID, err = p.publisher.PublishPost(ctx, forum.PostRequest{
			TopicID: game.TopicID,
			Subject: message.RaffleSubject(game.ID),
			Message: content,
		})
		return err
	})
	if err != nil {
		return err
	}

	if err := p.gameRepo.SetPost(ctx, game.ID, postID, content); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.StageConflict, "Game #%d already has a raffle post", game.ID)
		}

		return err
	}

	game.PostID = postID
	game.PostContent = content
	xcontext.Logger(ctx).Infof("Raffle post of game #%d is %d", game.ID, postID)
	return nil
}

// ScheduleRefresh queues an edit of the raffle post with the state of the
// game at the time the edit runs. A refresh which is already waiting in the
// queue covers later calls.
func (p *Poster) ScheduleRefresh(gameID int64) {
	key := strconv.FormatInt(gameID, 10)
	if _, loaded := p.pendingRefresh.LoadOrStore(key, struct{}{}); loaded {
		return
	}

	p.queue.Push(fmt.Sprintf("refresh_raffle:%d", gameID), func(ctx context.Context) error {
		p.pendingRefresh.Delete(key)
		return p.refresh(ctx, gameID)
	})
}

func (p *Poster) refresh(ctx context.Context, gameID int64) error {
	game, err := p.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return err
	}

	// The lifecycle publishes the post with the current state later.
	if game.PostID == 0 {
		return nil
	}

	entries, err := p.entryRepo.GetByGameID(ctx, game.ID)
	if err != nil {
		return err
	}

	content, err := p.renderer.Raffle(game, entries)
	if err != nil {
		return err
	}

	_, err = p.publisher.EditPost(ctx, forum.EditRequest{
		PostID:  game.PostID,
		TopicID: game.TopicID,
		Subject: message.OpenRaffleSubject(game.ID),
		Message: content,
	})
	if err != nil {
		return err
	}

	return p.gameRepo.UpdatePostContent(ctx, game.ID, content)
}
