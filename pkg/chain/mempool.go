package chain

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/questx-lab/raffle/pkg/api"
	"github.com/questx-lab/raffle/pkg/errorx"
)

// Mempool reads the Bitcoin chain through a mempool.space compatible REST API.
type Mempool struct {
	apiGenerator api.Generator
}

func NewMempool(endpoints ...string) *Mempool {
	return &Mempool{apiGenerator: api.NewGenerator(endpoints...)}
}

func (m *Mempool) CurrentHeight(ctx context.Context) (int64, error) {
	body, err := m.get(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, errorx.New(errorx.BadResponse, "Invalid tip height %q", body)
	}

	return height, nil
}

func (m *Mempool) BlockHash(ctx context.Context, height int64) (string, error) {
	body, err := m.get(ctx, "/block-height/%d", height)
	if err != nil {
		return "", err
	}

	if len(body) != 64 {
		return "", errorx.New(errorx.BadResponse, "Invalid hash of block %d: %q", height, body)
	}

	return body, nil
}

func (m *Mempool) get(ctx context.Context, path string, args ...any) (string, error) {
	resp, err := m.apiGenerator.New(path, args...).GET(ctx)
	if err != nil {
		return "", errorx.New(errorx.Unavailable, "Chain explorer is unreachable: %v", err)
	}

	if resp.Code != http.StatusOK {
		return "", errorx.New(errorx.Unavailable, "Chain explorer answered %d: %s", resp.Code, resp.RawBody)
	}

	return strings.TrimSpace(string(resp.RawBody)), nil
}
