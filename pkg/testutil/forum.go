package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/raffle/pkg/forum"
)

// MockPublisher records every post and edit. Published posts get increasing
// ids starting at 1000 unless PublishPostFunc is set.
type MockPublisher struct {
	PublishPostFunc func(ctx context.Context, req forum.PostRequest) (int64, error)
	EditPostFunc    func(ctx context.Context, req forum.EditRequest) (int64, error)

	mu        sync.Mutex
	published []forum.PostRequest
	edited    []forum.EditRequest
}

func (m *MockPublisher) PublishPost(ctx context.Context, req forum.PostRequest) (int64, error) {
	m.mu.Lock()
	m.published = append(m.published, req)
	id := int64(1000 + len(m.published) - 1)
	m.mu.Unlock()

	if m.PublishPostFunc != nil {
		return m.PublishPostFunc(ctx, req)
	}

	return id, nil
}

func (m *MockPublisher) EditPost(ctx context.Context, req forum.EditRequest) (int64, error) {
	m.mu.Lock()
	m.edited = append(m.edited, req)
	m.mu.Unlock()

	if m.EditPostFunc != nil {
		return m.EditPostFunc(ctx, req)
	}

	return req.PostID, nil
}

func (m *MockPublisher) Published() []forum.PostRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]forum.PostRequest{}, m.published...)
}

func (m *MockPublisher) Edited() []forum.EditRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]forum.EditRequest{}, m.edited...)
}

// MockTopicLookup serves topics from a map. A missing topic is an error.
type MockTopicLookup struct {
	mu     sync.Mutex
	topics map[int64]forum.Topic
	calls  int
}

func NewMockTopicLookup(topics ...forum.Topic) *MockTopicLookup {
	m := &MockTopicLookup{topics: map[int64]forum.Topic{}}
	for _, t := range topics {
		m.topics[t.TopicID] = t
	}

	return m
}

func (m *MockTopicLookup) LookupTopic(ctx context.Context, topicID int64) (*forum.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	topic, ok := m.topics[topicID]
	if !ok {
		return nil, ErrMock
	}

	return &topic, nil
}

func (m *MockTopicLookup) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}
