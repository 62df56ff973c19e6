package testutil

import (
	"context"
)

type MockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value string) error
	RPushFunc  func(ctx context.Context, key string, values ...string) error
	LRangeFunc func(ctx context.Context, key string, start, stop int64) ([]string, error)
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	return "", nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}

	return nil
}

func (m *MockRedisClient) RPush(ctx context.Context, key string, values ...string) error {
	if m.RPushFunc != nil {
		return m.RPushFunc(ctx, key, values...)
	}

	return nil
}

func (m *MockRedisClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.LRangeFunc != nil {
		return m.LRangeFunc(ctx, key, start, stop)
	}

	return nil, nil
}
