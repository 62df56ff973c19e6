package chain

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// Eth reads an EVM chain through JSON-RPC. Since public RPCs are often
// unstable, every call is tried on the clients in a random order.
type Eth struct {
	rpcs    []string
	clients []*ethclient.Client
}

func NewEth(ctx context.Context, rpcs ...string) (*Eth, error) {
	e := &Eth{}
	for _, rpc := range rpcs {
		client, err := ethclient.DialContext(ctx, rpc)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot dial rpc %s: %v", rpc, err)
			continue
		}

		e.rpcs = append(e.rpcs, rpc)
		e.clients = append(e.clients, client)
	}

	if len(e.clients) == 0 {
		return nil, fmt.Errorf("no rpc could be dialed")
	}

	return e, nil
}

func (e *Eth) CurrentHeight(ctx context.Context) (int64, error) {
	var height uint64
	err := e.execute(ctx, func(client *ethclient.Client) error {
		var err error
		height, err = client.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	return int64(height), nil
}

func (e *Eth) BlockHash(ctx context.Context, height int64) (string, error) {
	var hash string
	err := e.execute(ctx, func(client *ethclient.Client) error {
		header, err := client.HeaderByNumber(ctx, big.NewInt(height))
		if err != nil {
			return err
		}

		hash = header.Hash().Hex()
		return nil
	})

	return hash, err
}

func (e *Eth) Close() {
	for _, client := range e.clients {
		client.Close()
	}
}

func (e *Eth) execute(ctx context.Context, f func(client *ethclient.Client) error) error {
	var lastErr error
	for _, i := range rand.Perm(len(e.clients)) {
		if err := f(e.clients[i]); err != nil {
			xcontext.Logger(ctx).Warnf("Call to rpc %s failed: %v", e.rpcs[i], err)
			lastErr = err
			continue
		}

		return nil
	}

	return errorx.New(errorx.Unavailable, "All rpcs failed: %v", lastErr)
}
