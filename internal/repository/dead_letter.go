package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
)

type DeadLetter struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Attempts int       `json:"attempts"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

type DeadLetterRepository interface {
	Append(ctx context.Context, letter DeadLetter) error
	GetAll(ctx context.Context) ([]DeadLetter, error)
}

type deadLetterRepository struct {
	redisClient xredis.Client
}

func NewDeadLetterRepository(redisClient xredis.Client) *deadLetterRepository {
	return &deadLetterRepository{redisClient: redisClient}
}

func (r *deadLetterRepository) Append(ctx context.Context, letter DeadLetter) error {
	b, err := json.Marshal(letter)
	if err != nil {
		return err
	}

	return r.redisClient.RPush(ctx, common.RedisKeyDeadLetters, string(b))
}

func (r *deadLetterRepository) GetAll(ctx context.Context) ([]DeadLetter, error) {
	values, err := r.redisClient.LRange(ctx, common.RedisKeyDeadLetters, 0, -1)
	if err != nil {
		return nil, err
	}

	letters := make([]DeadLetter, 0, len(values))
	for _, v := range values {
		var letter DeadLetter
		if err := json.Unmarshal([]byte(v), &letter); err != nil {
			xcontext.Logger(ctx).Warnf("Invalid dead letter %q: %v", v, err)
			continue
		}

		letters = append(letters, letter)
	}

	return letters, nil
}
