package forum

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/questx-lab/raffle/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestFeed_FetchRecentPosts(t *testing.T) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

	var gotQuery api.Parameter
	generator := &api.MockAPIGenerator{
		MockClient: api.MockAPIClient{
			GETFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
				return &api.Response{
					Code: http.StatusOK,
					Body: api.JSON{"data": map[string]any{"posts": []any{
						map[string]any{"post_id": float64(12), "topic_id": float64(7), "author": "bob", "author_uid": float64(2), "content": "<b>+entrada</b>"},
						map[string]any{"post_id": float64(11), "topic_id": float64(7), "author": "alice", "author_uid": float64(1), "content": "+sorteio"},
					}}},
				}, nil
			},
		},
	}
	generator.MockClient.QueryFunc = func(query api.Parameter) api.Client {
		gotQuery = query
		return &generator.MockClient
	}

	feed := &Feed{apiGenerator: generator, lookback: 24 * time.Hour, now: func() time.Time { return now }}

	posts, err := feed.FetchRecentPosts(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, []string{"/posts"}, generator.Paths())
	require.Equal(t, api.Parameter{"after": "10", "after_date": "2024-01-19T12:00:00Z"}, gotQuery)
	require.Equal(t, []Post{
		{PostID: 11, TopicID: 7, Author: "alice", AuthorUID: 1, Content: "+sorteio"},
		{PostID: 12, TopicID: 7, Author: "bob", AuthorUID: 2, Content: "<b>+entrada</b>"},
	}, posts)
}

func TestFeed_Unavailable(t *testing.T) {
	feed := &Feed{
		apiGenerator: &api.MockAPIGenerator{
			MockClient: api.MockAPIClient{
				GETFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
					return &api.Response{Code: http.StatusBadGateway}, nil
				},
			},
		},
		now: time.Now,
	}

	_, err := feed.FetchRecentPosts(context.Background(), 0)
	require.Error(t, err)
}
