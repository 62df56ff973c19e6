package forum

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/pkg/api"
	"github.com/questx-lab/raffle/pkg/errorx"
	"golang.org/x/exp/slices"
)

// Feed reads recent board posts from a posts indexing API.
type Feed struct {
	apiGenerator api.Generator
	lookback     time.Duration
	now          func() time.Time
}

func NewFeed(cfg config.FeedConfigs) *Feed {
	return &Feed{
		apiGenerator: api.NewGenerator(cfg.Endpoint),
		lookback:     cfg.Lookback.Duration,
		now:          time.Now,
	}
}

// FetchRecentPosts returns the posts with an id greater than sinceID, oldest
// first.
func (f *Feed) FetchRecentPosts(ctx context.Context, sinceID int64) ([]Post, error) {
	resp, err := f.apiGenerator.New("/posts").
		Query(api.Parameter{
			"after_date": f.now().Add(-f.lookback).UTC().Format(time.RFC3339),
			"after":      strconv.FormatInt(sinceID, 10),
		}).
		GET(ctx)
	if err != nil {
		return nil, errorx.New(errorx.Unavailable, "Posts feed is unreachable: %v", err)
	}

	if resp.Code != http.StatusOK {
		return nil, errorx.New(errorx.Unavailable, "Posts feed answered %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, errors.New("invalid response")
	}

	raw, err := body.GetArray("data.posts")
	if err != nil {
		return nil, errorx.New(errorx.BadResponse, "Invalid posts feed response: %v", err)
	}

	var posts []Post
	if err := mapstructure.Decode(raw, &posts); err != nil {
		return nil, errorx.New(errorx.BadResponse, "Cannot decode posts: %v", err)
	}

	slices.SortFunc(posts, func(a, b Post) bool { return a.PostID < b.PostID })

	return posts, nil
}
