package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrMock = errors.New("mock error")

// MockChain is a chain whose tip can be moved by tests. Block hashes are
// derived from the height unless set explicitly.
type MockChain struct {
	mu     sync.Mutex
	height int64
	hashes map[int64]string
	Err    error
}

func NewMockChain(height int64) *MockChain {
	return &MockChain{height: height, hashes: map[int64]string{}}
}

func (m *MockChain) SetHeight(height int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.height = height
}

func (m *MockChain) SetHash(height int64, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hashes[height] = hash
}

func (m *MockChain) CurrentHeight(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}

	return m.height, nil
}

func (m *MockChain) BlockHash(ctx context.Context, height int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	if height > m.height {
		return "", fmt.Errorf("block %d is not mined yet", height)
	}

	if hash, ok := m.hashes[height]; ok {
		return hash, nil
	}

	return fmt.Sprintf("%064x", height), nil
}
