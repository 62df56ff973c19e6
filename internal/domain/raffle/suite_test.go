package raffle

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/internal/domain/message"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/queue"
	"github.com/questx-lab/raffle/pkg/testutil"
)

var (
	beforeDeadline = testutil.GameDeadline.Add(-15 * 24 * time.Hour)
	afterDeadline  = testutil.GameDeadline.Add(time.Hour)
)

type raffleSuite struct {
	ctx       context.Context
	cfg       config.Configs
	gameRepo  repository.GameRepository
	entryRepo repository.EntryRepository
	publisher *testutil.MockPublisher
	topics    *testutil.MockTopicLookup
	chain     *testutil.MockChain
	queue     *queue.Queue
	locks     *TopicLocks
	poster    *Poster
	validator *EntryValidator
	router    *Router
	lifecycle *Lifecycle
}

func newSuite(t *testing.T, cfg config.Configs, topics ...forum.Topic) *raffleSuite {
	ctx, cancel := context.WithCancel(testutil.MockContextWithConfigs(cfg))
	t.Cleanup(cancel)

	s := &raffleSuite{
		ctx:       ctx,
		cfg:       cfg,
		gameRepo:  repository.NewGameRepository(),
		entryRepo: repository.NewEntryRepository(),
		publisher: &testutil.MockPublisher{},
		topics:    testutil.NewMockTopicLookup(topics...),
		chain:     testutil.NewMockChain(800000),
		locks:     NewTopicLocks(),
		queue: queue.New(queue.Options{
			MinInterval:     cfg.Queue.MinInterval.Duration,
			MaxAttempts:     cfg.Queue.MaxAttempts,
			InitialInterval: cfg.Queue.InitialInterval.Duration,
			MaxInterval:     cfg.Queue.MaxInterval.Duration,
		}),
	}
	go s.queue.Run(ctx)

	renderer := message.NewRenderer(cfg)
	s.poster = NewPoster(s.gameRepo, s.entryRepo, s.publisher, s.queue, renderer)
	s.validator = NewEntryValidator(cfg.Forum, s.entryRepo, s.topics)
	s.router = NewRouter(cfg, s.gameRepo, s.validator, s.poster, s.locks)
	s.router.now = func() time.Time { return beforeDeadline }
	s.lifecycle = NewLifecycle(cfg.Raffle, s.gameRepo, s.entryRepo, s.chain,
		s.publisher, s.topics, s.queue, renderer, s.poster, s.locks)
	s.lifecycle.now = func() time.Time { return beforeDeadline }

	return s
}

// ownTopic is a topic written by author well before the fixture deadline.
func ownTopic(topicID int64, author string, merits int) forum.Topic {
	return forum.Topic{
		TopicID:   topicID,
		AuthorUID: testutil.AuthorUID(author),
		CreatedAt: testutil.GameDeadline.Add(-30 * 24 * time.Hour),
		Title:     "Topic of " + author,
		Merits:    merits,
	}
}

func postBy(postID int64, author, content string) forum.Post {
	return forum.Post{
		PostID:    postID,
		TopicID:   testutil.GameTopicID,
		Author:    author,
		AuthorUID: testutil.AuthorUID(author),
		Content:   content,
	}
}
