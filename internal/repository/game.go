package repository

import (
	"context"
	"time"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm"
)

type GameSettings struct {
	NumberWinners *int
	Deadline      *time.Time
}

type FinalizeGame struct {
	WinnerPostID   int64
	BlockHash      string
	TicketsDrawn   []int
	WinnerEntryIDs []int64
	WinnerAuthors  []string
}

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id int64) (*entity.Game, error)
	GetByTopicID(ctx context.Context, topicID int64) (*entity.Game, error)
	GetUnfinalized(ctx context.Context) ([]entity.Game, error)

	// SetPost records the raffle post of a game which has none yet.
	SetPost(ctx context.Context, id, postID int64, content string) error
	UpdatePostContent(ctx context.Context, id int64, content string) error

	// UpdateSettings changes the game only if admin owns it and the deadline
	// is still after now.
	UpdateSettings(ctx context.Context, id, admin int64, now time.Time, settings GameSettings) error

	MarkClosed(ctx context.Context, id, blockHeight, overviewPostID int64) error
	MarkFinalized(ctx context.Context, id int64, result FinalizeGame) error
}

type gameRepository struct{}

func NewGameRepository() *gameRepository {
	return &gameRepository{}
}

func (r *gameRepository) Create(ctx context.Context, game *entity.Game) error {
	return xcontext.DB(ctx).Create(game).Error
}

func (r *gameRepository) GetByID(ctx context.Context, id int64) (*entity.Game, error) {
	var result entity.Game
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *gameRepository) GetByTopicID(ctx context.Context, topicID int64) (*entity.Game, error) {
	var result entity.Game
	if err := xcontext.DB(ctx).Take(&result, "topic_id=?", topicID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *gameRepository) GetUnfinalized(ctx context.Context) ([]entity.Game, error) {
	var result []entity.Game
	err := xcontext.DB(ctx).Where("winner_post_id=?", 0).Order("id ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *gameRepository) SetPost(ctx context.Context, id, postID int64, content string) error {
	tx := xcontext.DB(ctx).Model(&entity.Game{}).
		Where("id=? AND post_id=?", id, 0).
		Updates(map[string]any{"post_id": postID, "post_content": content})
	return checkAffected(tx)
}

func (r *gameRepository) UpdatePostContent(ctx context.Context, id int64, content string) error {
	tx := xcontext.DB(ctx).Model(&entity.Game{}).
		Where("id=?", id).
		Update("post_content", content)
	return checkAffected(tx)
}

func (r *gameRepository) UpdateSettings(
	ctx context.Context, id, admin int64, now time.Time, settings GameSettings,
) error {
	updates := map[string]any{}
	if settings.NumberWinners != nil {
		updates["number_winners"] = *settings.NumberWinners
	}

	if settings.Deadline != nil {
		updates["deadline"] = *settings.Deadline
	}

	if len(updates) == 0 {
		return nil
	}

	tx := xcontext.DB(ctx).Model(&entity.Game{}).
		Where("id=? AND game_admin=? AND deadline>?", id, admin, now).
		Updates(updates)
	return checkAffected(tx)
}

func (r *gameRepository) MarkClosed(ctx context.Context, id, blockHeight, overviewPostID int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Game{}).
		Where("id=? AND overview_post_id=? AND block_height=?", id, 0, 0).
		Updates(map[string]any{
			"block_height":     blockHeight,
			"overview_post_id": overviewPostID,
		})
	return checkAffected(tx)
}

func (r *gameRepository) MarkFinalized(ctx context.Context, id int64, result FinalizeGame) error {
	tx := xcontext.DB(ctx).Model(&entity.Game{}).
		Where("id=? AND overview_post_id<>? AND winner_post_id=?", id, 0, 0).
		Updates(map[string]any{
			"winner_post_id":   result.WinnerPostID,
			"block_hash":       result.BlockHash,
			"tickets_drawn":    entity.Array[int](result.TicketsDrawn),
			"winner_entry_ids": entity.Array[int64](result.WinnerEntryIDs),
			"winner_authors":   entity.Array[string](result.WinnerAuthors),
		})
	return checkAffected(tx)
}

// checkAffected turns a conditional update that matched no row into
// gorm.ErrRecordNotFound.
func checkAffected(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
