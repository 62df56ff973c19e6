package api

import (
	"context"
	"fmt"
	"sync"
)

type MockAPIGenerator struct {
	MockClient MockAPIClient

	mu    sync.Mutex
	paths []string
}

func (m *MockAPIGenerator) New(path string, args ...any) Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paths = append(m.paths, fmt.Sprintf(path, args...))
	return &m.MockClient
}

// Paths returns every path requested through New.
func (m *MockAPIGenerator) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.paths...)
}

type MockAPIClient struct {
	HeaderFunc func(name, value string) Client
	QueryFunc  func(query Parameter) Client
	BodyFunc   func(body Body) Client
	POSTFunc   func(ctx context.Context, opts ...Opt) (*Response, error)
	GETFunc    func(ctx context.Context, opts ...Opt) (*Response, error)
}

func (c *MockAPIClient) Header(name, value string) Client {
	if c.HeaderFunc != nil {
		return c.HeaderFunc(name, value)
	}

	return c
}

func (c *MockAPIClient) Query(query Parameter) Client {
	if c.QueryFunc != nil {
		return c.QueryFunc(query)
	}

	return c
}

func (c *MockAPIClient) Body(body Body) Client {
	if c.BodyFunc != nil {
		return c.BodyFunc(body)
	}

	return c
}

func (c *MockAPIClient) POST(ctx context.Context, opts ...Opt) (*Response, error) {
	if c.POSTFunc != nil {
		return c.POSTFunc(ctx, opts...)
	}

	panic("not implemented")
}

func (c *MockAPIClient) GET(ctx context.Context, opts ...Opt) (*Response, error) {
	if c.GETFunc != nil {
		return c.GETFunc(ctx, opts...)
	}

	panic("not implemented")
}
