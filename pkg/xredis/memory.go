package xredis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// memoryClient keeps keys in process memory. It is used when no redis
// address is configured, so the state is lost on restart.
type memoryClient struct {
	mu     sync.Mutex
	values map[string]string
	lists  map[string][]string
}

func NewMemoryClient() *memoryClient {
	return &memoryClient{
		values: make(map[string]string),
		lists:  make(map[string][]string),
	}
}

func (c *memoryClient) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.values[key]
	if !ok {
		return "", redis.Nil
	}

	return v, nil
}

func (c *memoryClient) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	return nil
}

func (c *memoryClient) RPush(ctx context.Context, key string, values ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lists[key] = append(c.lists[key], values...)
	return nil
}

// LRange follows redis semantics: negative indexes count from the end and
// stop is inclusive.
func (c *memoryClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.lists[key]
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return []string{}, nil
	}

	return append([]string(nil), list[start:stop+1]...), nil
}
