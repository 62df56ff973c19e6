package repository

import (
	"testing"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_entryRepository(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewEntryRepository()

	entries := []*entity.Entry{
		{GameID: 1, PostID: 10, TopicID: 100, Author: "alice", AuthorUID: 1},
		{GameID: 1, PostID: 11, TopicID: 101, Author: "bob", AuthorUID: 2},
		{GameID: 2, PostID: 12, TopicID: 102, Author: "alice", AuthorUID: 1},
		{GameID: 1, PostID: 13, TopicID: 103, Author: "alice", AuthorUID: 1},
	}
	for _, e := range entries {
		require.NoError(t, repo.Create(ctx, e))
	}

	// A thread can be used once across all games.
	require.Error(t, repo.Create(ctx, &entity.Entry{GameID: 2, PostID: 14, TopicID: 100, Author: "carol", AuthorUID: 3}))

	exists, err := repo.ExistsByTopicID(ctx, 100)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByTopicID(ctx, 999)
	require.NoError(t, err)
	require.False(t, exists)

	got, err := repo.GetByGameID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []int64{100, 101, 103}, []int64{got[0].TopicID, got[1].TopicID, got[2].TopicID})

	entry, err := repo.GetByTopicID(ctx, 102)
	require.NoError(t, err)
	require.Equal(t, int64(2), entry.GameID)
}
