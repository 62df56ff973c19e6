package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

const (
	GameTopicID = int64(5000000)
	GameSeed    = "4fa8e5b9a1b37c81a7e2f5f3f2a0f7b0f43e3b0e46a4f8b1f94c2e83c2b64f22"
)

// GameDeadline is the deadline of the fixture game.
var GameDeadline = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

// InsertGame creates an open game in GameTopicID owned by AdminUserID. The
// raffle post is set to postID unless it is zero.
func InsertGame(ctx context.Context, postID int64) *entity.Game {
	game := &entity.Game{
		GameAdmin:     AdminUserID,
		TopicID:       GameTopicID,
		Deadline:      GameDeadline,
		NumberWinners: 2,
		Seed:          GameSeed,
		PostID:        postID,
	}

	if err := xcontext.DB(ctx).Create(game).Error; err != nil {
		panic(err)
	}

	return game
}

// InsertEntries creates one entry per author, in order, with topic ids
// starting at 100.
func InsertEntries(ctx context.Context, gameID int64, authors ...string) []entity.Entry {
	result := []entity.Entry{}
	for i, author := range authors {
		entry := &entity.Entry{
			GameID:    gameID,
			PostID:    int64(200 + i),
			TopicID:   int64(100 + i),
			Author:    author,
			AuthorUID: AuthorUID(author),
		}

		if err := xcontext.DB(ctx).Create(entry).Error; err != nil {
			panic(err)
		}

		result = append(result, *entry)
	}

	return result
}

// AuthorUID gives every fixture author name a stable uid.
func AuthorUID(author string) int64 {
	var uid int64 = 1
	for _, c := range author {
		uid = uid*31 + int64(c)
	}

	if uid < 0 {
		uid = -uid
	}

	return uid%1000000 + 1000
}
