package raffle

import (
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestEntryValidator_Register(t *testing.T) {
	late := ownTopic(103, "alice", 0)
	late.CreatedAt = testutil.GameDeadline

	s := newSuite(t, testutil.MockConfigs(),
		ownTopic(101, "alice", 0),
		ownTopic(102, "bob", 0),
		late,
	)
	game := testutil.InsertGame(s.ctx, 1)
	post := postBy(10, "alice", "")

	testCases := []struct {
		name    string
		topicID int64
		want    EntryOutcome
		wantErr bool
	}{
		{name: "accepted", topicID: 101, want: EntryAccepted},
		{name: "duplicate", topicID: 101, want: EntryDuplicate},
		{name: "other author", topicID: 102, want: EntryNotAuthor},
		{name: "created at deadline", topicID: 103, want: EntryLateTopic},
		{name: "unknown topic", topicID: 104, want: EntryLookupFailed, wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := s.validator.Register(s.ctx, game, post, tt.topicID)
			require.Equal(t, tt.want, outcome)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	entries, err := s.entryRepo.GetByGameID(s.ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(101), entries[0].TopicID)
	require.Equal(t, "alice", entries[0].Author)
	require.Equal(t, post.PostID, entries[0].PostID)
}

func TestEntryValidator_CheckPost(t *testing.T) {
	s := newSuite(t, testutil.MockConfigs())
	game := testutil.InsertGame(s.ctx, 1)

	testCases := []struct {
		name string
		post forum.Post
		now  time.Time
		code errorx.Code
	}{
		{
			name: "finished game",
			post: postBy(1, "alice", ""),
			now:  testutil.GameDeadline,
			code: errorx.GameFinished,
		},
		{
			name: "bot",
			post: forum.Post{PostID: 2, AuthorUID: testutil.BotUserID},
			now:  beforeDeadline,
			code: errorx.PermissionDenied,
		},
		{
			name: "blacklisted",
			post: forum.Post{PostID: 3, AuthorUID: 666},
			now:  beforeDeadline,
			code: errorx.PermissionDenied,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validator.CheckPost(game, tt.post, tt.now)
			require.True(t, errors.Is(err, errorx.Error{Code: tt.code}), err)
		})
	}

	require.NoError(t, s.validator.CheckPost(game, postBy(4, "alice", ""), beforeDeadline))
}

func TestEntryValidator_SubmitDeduplicatesLinks(t *testing.T) {
	s := newSuite(t, testutil.MockConfigs(),
		ownTopic(101, "alice", 0),
		ownTopic(102, "alice", 0),
		ownTopic(103, "bob", 0),
	)
	game := testutil.InsertGame(s.ctx, 1)

	accepted, err := s.validator.Submit(s.ctx, game, postBy(10, "alice", ""),
		[]int64{101, 102, 101, 103}, beforeDeadline)
	require.NoError(t, err)
	require.Equal(t, 2, accepted)
	require.Equal(t, 3, s.topics.Calls())

	_, err = s.validator.Submit(s.ctx, game, postBy(11, "alice", ""), []int64{101}, afterDeadline)
	require.True(t, errors.Is(err, errorx.Error{Code: errorx.GameFinished}))
}
