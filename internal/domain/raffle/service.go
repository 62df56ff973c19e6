package raffle

import (
	"context"
	"strconv"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/raffle/pkg/forum"
	"github.com/questx-lab/raffle/pkg/queue"
)

type Publisher interface {
	PublishPost(ctx context.Context, req forum.PostRequest) (int64, error)
	EditPost(ctx context.Context, req forum.EditRequest) (int64, error)
}

type TopicLookup interface {
	LookupTopic(ctx context.Context, topicID int64) (*forum.Topic, error)
}

type TaskQueue interface {
	Push(name string, task queue.Task) <-chan error
	Do(ctx context.Context, name string, task queue.Task) error
}

// TopicLocks marks the threads whose game is being worked on in this
// process. The router and the lifecycle share one instance so they never
// publish for the same game at the same time.
type TopicLocks struct {
	m *xsync.MapOf[string, struct{}]
}

func NewTopicLocks() *TopicLocks {
	return &TopicLocks{m: xsync.NewMapOf[struct{}]()}
}

func (l *TopicLocks) TryLock(topicID int64) bool {
	_, loaded := l.m.LoadOrStore(strconv.FormatInt(topicID, 10), struct{}{})
	return !loaded
}

func (l *TopicLocks) Unlock(topicID int64) {
	l.m.Delete(strconv.FormatInt(topicID, 10))
}
