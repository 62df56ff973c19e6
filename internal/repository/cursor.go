package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

// CursorRepository remembers the last forum post the bot has processed.
type CursorRepository interface {
	GetLastPostID(ctx context.Context) (int64, error)
	SetLastPostID(ctx context.Context, postID int64) error
}

type cursorRepository struct {
	redisClient xredis.Client
}

func NewCursorRepository(redisClient xredis.Client) *cursorRepository {
	return &cursorRepository{redisClient: redisClient}
}

func (r *cursorRepository) GetLastPostID(ctx context.Context) (int64, error) {
	value, err := r.redisClient.Get(ctx, common.RedisKeyLastPostID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, err
	}

	return strconv.ParseInt(value, 10, 64)
}

func (r *cursorRepository) SetLastPostID(ctx context.Context, postID int64) error {
	return r.redisClient.Set(ctx, common.RedisKeyLastPostID, strconv.FormatInt(postID, 10))
}
