package repository

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type EntryRepository interface {
	Create(ctx context.Context, entry *entity.Entry) error
	GetByTopicID(ctx context.Context, topicID int64) (*entity.Entry, error)
	ExistsByTopicID(ctx context.Context, topicID int64) (bool, error)
	// GetByGameID returns the entries of a game in insertion order.
	GetByGameID(ctx context.Context, gameID int64) ([]entity.Entry, error)
}

type entryRepository struct{}

func NewEntryRepository() *entryRepository {
	return &entryRepository{}
}

func (r *entryRepository) Create(ctx context.Context, entry *entity.Entry) error {
	return xcontext.DB(ctx).Create(entry).Error
}

func (r *entryRepository) GetByTopicID(ctx context.Context, topicID int64) (*entity.Entry, error) {
	var result entity.Entry
	if err := xcontext.DB(ctx).Take(&result, "topic_id=?", topicID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entryRepository) ExistsByTopicID(ctx context.Context, topicID int64) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Entry{}).Where("topic_id=?", topicID).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *entryRepository) GetByGameID(ctx context.Context, gameID int64) ([]entity.Entry, error) {
	var result []entity.Entry
	err := xcontext.DB(ctx).Where("game_id=?", gameID).Order("id ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
