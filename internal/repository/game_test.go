package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var deadline = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

func newGame(topicID int64) *entity.Game {
	return &entity.Game{
		GameAdmin:     testutil.AdminUserID,
		TopicID:       topicID,
		Deadline:      deadline,
		NumberWinners: 2,
		Seed:          "seed",
	}
}

func Test_gameRepository_Create(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewGameRepository()

	first := newGame(10)
	require.NoError(t, repo.Create(ctx, first))
	require.Equal(t, int64(1), first.ID)

	second := newGame(11)
	require.NoError(t, repo.Create(ctx, second))
	require.Equal(t, int64(2), second.ID)

	// One game per topic.
	require.Error(t, repo.Create(ctx, newGame(10)))

	got, err := repo.GetByTopicID(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)
	require.Equal(t, "seed", got.Seed)

	_, err = repo.GetByTopicID(ctx, 12)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func Test_gameRepository_SetPost(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewGameRepository()

	game := newGame(10)
	require.NoError(t, repo.Create(ctx, game))

	require.NoError(t, repo.SetPost(ctx, game.ID, 500, "content"))
	err := repo.SetPost(ctx, game.ID, 501, "other")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	got, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, int64(500), got.PostID)
	require.Equal(t, "content", got.PostContent)
}

func Test_gameRepository_UpdateSettings(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewGameRepository()

	game := newGame(10)
	require.NoError(t, repo.Create(ctx, game))

	winners := 5
	newDeadline := deadline.AddDate(0, 0, 7)
	before := deadline.Add(-time.Hour)

	tests := []struct {
		name    string
		admin   int64
		now     time.Time
		wantErr error
	}{
		{name: "not admin", admin: 1, now: before, wantErr: gorm.ErrRecordNotFound},
		{name: "finished", admin: testutil.AdminUserID, now: deadline.Add(time.Hour), wantErr: gorm.ErrRecordNotFound},
		{name: "happy case", admin: testutil.AdminUserID, now: before},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateSettings(ctx, game.ID, tt.admin, tt.now, GameSettings{
				NumberWinners: &winners,
				Deadline:      &newDeadline,
			})
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))

				got, err := repo.GetByID(ctx, game.ID)
				require.NoError(t, err)
				require.Equal(t, 2, got.NumberWinners)
				require.True(t, got.Deadline.Equal(deadline))
				return
			}

			require.NoError(t, err)
			got, err := repo.GetByID(ctx, game.ID)
			require.NoError(t, err)
			require.Equal(t, 5, got.NumberWinners)
			require.True(t, got.Deadline.Equal(newDeadline))
		})
	}
}

func Test_gameRepository_Stages(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewGameRepository()

	game := newGame(10)
	require.NoError(t, repo.Create(ctx, game))

	// Cannot finalize before closing.
	err := repo.MarkFinalized(ctx, game.ID, FinalizeGame{WinnerPostID: 9})
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.MarkClosed(ctx, game.ID, 800006, 600))
	err = repo.MarkClosed(ctx, game.ID, 800010, 601)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	unfinalized, err := repo.GetUnfinalized(ctx)
	require.NoError(t, err)
	require.Len(t, unfinalized, 1)
	require.Equal(t, entity.GameStageClosed, unfinalized[0].Stage())

	require.NoError(t, repo.MarkFinalized(ctx, game.ID, FinalizeGame{
		WinnerPostID:   700,
		BlockHash:      "00ab",
		TicketsDrawn:   []int{2, 1},
		WinnerEntryIDs: []int64{2, 1},
		WinnerAuthors:  []string{"bob", "alice"},
	}))
	err = repo.MarkFinalized(ctx, game.ID, FinalizeGame{WinnerPostID: 701})
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	got, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, int64(800006), got.BlockHeight)
	require.Equal(t, int64(600), got.OverviewPostID)
	require.Equal(t, int64(700), got.WinnerPostID)
	require.Equal(t, entity.Array[int]{2, 1}, got.TicketsDrawn)
	require.Equal(t, entity.Array[string]{"bob", "alice"}, got.WinnerAuthors)
	require.Equal(t, entity.GameStageFinalized, got.Stage())

	unfinalized, err = repo.GetUnfinalized(ctx)
	require.NoError(t, err)
	require.Empty(t, unfinalized)
}
