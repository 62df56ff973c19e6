package raffle

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/crypto"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Router runs the commands found in forum posts.
type Router struct {
	cfg       config.Configs
	commands  []Command
	gameRepo  repository.GameRepository
	validator *EntryValidator
	poster    *Poster
	locks     *TopicLocks
	now       func() time.Time
}

func NewRouter(
	cfg config.Configs,
	gameRepo repository.GameRepository,
	validator *EntryValidator,
	poster *Poster,
	locks *TopicLocks,
) *Router {
	r := &Router{
		cfg:       cfg,
		gameRepo:  gameRepo,
		validator: validator,
		poster:    poster,
		locks:     locks,
		now:       time.Now,
	}

	r.commands = []Command{
		{
			Kind:     StartGame,
			Pattern:  regexp.MustCompile(`(?i)\+\s?sorteio\b([^\n]*)`),
			Validate: r.validateStartGame,
			Apply:    r.applyStartGame,
		},
		{
			Kind: SubmitEntry,
			Pattern: regexp.MustCompile(`(?i)\+\s?entrada .*?` +
				regexp.QuoteMeta(cfg.Forum.Host) + `/index\.php\?topic=(\d+)`),
			Repeat:   true,
			Validate: r.validateSubmitEntry,
			Apply:    r.applySubmitEntry,
		},
		{
			Kind:     SetWinnerCount,
			Pattern:  regexp.MustCompile(`(?i)\+\s?definir vencedores (\d+)`),
			Validate: r.validateSetWinnerCount,
			Apply:    r.applySettings,
		},
		{
			Kind:     SetDeadline,
			Pattern:  regexp.MustCompile(`(?i)\+\s?definir data (\d{4}/\d{2}/\d{2})`),
			Validate: r.validateSetDeadline,
			Apply:    r.applySettings,
		},
	}

	return r
}

func (r *Router) Commands() []Command {
	return r.commands
}

// HandlePosts runs every command of every post concurrently and returns when
// all of them are done. Failures are logged per post and command.
func (r *Router) HandlePosts(ctx context.Context, posts []forum.Post) {
	now := r.now()

	var g errgroup.Group
	for _, post := range posts {
		body, text, err := stripQuotes(post.Content)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot parse content of post %d: %v", post.PostID, err)
			continue
		}

		for _, cmd := range r.commands {
			matches := cmd.Match(text)
			if matches == nil {
				continue
			}

			inv := &Invocation{Post: post, Body: body, Matches: matches, Now: now}
			cmd := cmd
			g.Go(func() error {
				r.dispatch(ctx, cmd, inv)
				return nil
			})
		}
	}

	g.Wait()
}

func (r *Router) dispatch(ctx context.Context, cmd Command, inv *Invocation) {
	outcome := "applied"
	defer func() {
		common.PromCounters[common.CommandTotal].WithLabelValues(string(cmd.Kind), outcome).Inc()
	}()

	if err := cmd.Validate(ctx, inv); err != nil {
		if errors.Is(err, errIgnored) {
			outcome = "ignored"
			xcontext.Logger(ctx).Debugf("Command %s of post %d ignored: %v", cmd.Kind, inv.Post.PostID, err)
			return
		}

		outcome = "rejected"
		xcontext.Logger(ctx).Warnf("Command %s of post %d rejected: %v", cmd.Kind, inv.Post.PostID, err)
		return
	}

	if err := cmd.Apply(ctx, inv); err != nil {
		if errors.Is(err, errIgnored) {
			outcome = "ignored"
			xcontext.Logger(ctx).Debugf("Command %s of post %d ignored: %v", cmd.Kind, inv.Post.PostID, err)
			return
		}

		outcome = "failed"
		xcontext.Logger(ctx).Errorf("Command %s of post %d failed: %v", cmd.Kind, inv.Post.PostID, err)
		return
	}
}

func (r *Router) validateStartGame(ctx context.Context, inv *Invocation) error {
	creators := r.cfg.Forum.WhitelistedCreators
	if len(creators) > 0 && !slices.Contains(creators, inv.Post.AuthorUID) {
		return errorx.New(errorx.PermissionDenied, "User %d is not allowed to start a game", inv.Post.AuthorUID)
	}

	if _, err := r.gameRepo.GetByTopicID(ctx, inv.Post.TopicID); err == nil {
		return ignored("topic %d already has a game", inv.Post.TopicID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var winners int
	var deadline time.Time
	var err error
	if r.cfg.Raffle.StartSyntax == config.StartSyntaxInline {
		winners, deadline, err = parseInlineStart(inv.Matches[0][1])
	} else {
		winners, deadline, err = parseCodeBlockStart(inv.Body)
	}
	if err != nil {
		return err
	}

	inv.game = &entity.Game{
		GameAdmin:     inv.Post.AuthorUID,
		TopicID:       inv.Post.TopicID,
		Deadline:      deadline,
		NumberWinners: winners,
		Seed:          crypto.SHA256Hex([]byte(strconv.FormatInt(inv.Now.Unix(), 10))),
	}

	return nil
}

func (r *Router) applyStartGame(ctx context.Context, inv *Invocation) error {
	if !r.locks.TryLock(inv.Post.TopicID) {
		return ignored("topic %d is being processed", inv.Post.TopicID)
	}
	defer r.locks.Unlock(inv.Post.TopicID)

	if err := r.gameRepo.Create(ctx, inv.game); err != nil {
		if _, getErr := r.gameRepo.GetByTopicID(ctx, inv.Post.TopicID); getErr == nil {
			return ignored("topic %d already has a game", inv.Post.TopicID)
		}

		return err
	}

	xcontext.Logger(ctx).Infof("Game #%d started in topic %d by %s, deadline %s, %d winners",
		inv.game.ID, inv.game.TopicID, inv.Post.Author, inv.game.Deadline.Format(dateLayout), inv.game.NumberWinners)

	return r.poster.PublishRaffle(ctx, inv.game)
}

func (r *Router) validateSubmitEntry(ctx context.Context, inv *Invocation) error {
	game, err := r.gameRepo.GetByTopicID(ctx, inv.Post.TopicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ignored("topic %d has no game", inv.Post.TopicID)
		}

		return err
	}

	if err := r.validator.CheckPost(game, inv.Post, inv.Now); err != nil {
		return err
	}

	for _, m := range inv.Matches {
		topicID, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}

		inv.topicIDs = append(inv.topicIDs, topicID)
	}

	inv.game = game
	return nil
}

func (r *Router) applySubmitEntry(ctx context.Context, inv *Invocation) error {
	accepted, err := r.validator.Submit(ctx, inv.game, inv.Post, inv.topicIDs, inv.Now)
	if err != nil {
		return err
	}

	if accepted > 0 {
		r.poster.ScheduleRefresh(inv.game.ID)
	}

	return nil
}

// adminGame returns the game of the post's thread if the poster may still
// reconfigure it.
func (r *Router) adminGame(ctx context.Context, inv *Invocation) (*entity.Game, error) {
	game, err := r.gameRepo.GetByTopicID(ctx, inv.Post.TopicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Topic %d has no game", inv.Post.TopicID)
		}

		return nil, err
	}

	if game.GameAdmin != inv.Post.AuthorUID {
		return nil, errorx.New(errorx.PermissionDenied, "User %d is not the admin of game #%d",
			inv.Post.AuthorUID, game.ID)
	}

	if game.Finished(inv.Now) {
		return nil, errorx.New(errorx.GameFinished, "Game #%d is finished", game.ID)
	}

	return game, nil
}

func (r *Router) validateSetWinnerCount(ctx context.Context, inv *Invocation) error {
	game, err := r.adminGame(ctx, inv)
	if err != nil {
		return err
	}

	winners, err := parseWinners(inv.Matches[0][1])
	if err != nil {
		return err
	}

	inv.game = game
	inv.settings = repository.GameSettings{NumberWinners: &winners}
	return nil
}

func (r *Router) validateSetDeadline(ctx context.Context, inv *Invocation) error {
	game, err := r.adminGame(ctx, inv)
	if err != nil {
		return err
	}

	deadline, err := parseDate(inv.Matches[0][1])
	if err != nil {
		return err
	}

	inv.game = game
	inv.settings = repository.GameSettings{Deadline: &deadline}
	return nil
}

func (r *Router) applySettings(ctx context.Context, inv *Invocation) error {
	err := r.gameRepo.UpdateSettings(ctx, inv.game.ID, inv.Post.AuthorUID, inv.Now, inv.settings)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.StageConflict, "Game #%d cannot be changed anymore", inv.game.ID)
		}

		return err
	}

	xcontext.Logger(ctx).Infof("Game #%d reconfigured by post %d", inv.game.ID, inv.Post.PostID)
	r.poster.ScheduleRefresh(inv.game.ID)
	return nil
}
