// Package chain reads block heights and hashes from a public blockchain. The
// raffle binds its draw to a block mined after entries are closed.
package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/questx-lab/raffle/config"
)

type Source interface {
	CurrentHeight(ctx context.Context) (int64, error)
	BlockHash(ctx context.Context, height int64) (string, error)
}

// New returns the source configured by cfg.Kind. Endpoint may list several
// comma separated URLs, they are used as fallbacks of each other.
func New(ctx context.Context, cfg config.ChainConfigs) (Source, error) {
	endpoints := splitEndpoints(cfg.Endpoint)
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no endpoint for chain %s", cfg.Kind)
	}

	switch cfg.Kind {
	case config.ChainMempool:
		return NewMempool(endpoints...), nil
	case config.ChainEth:
		return NewEth(ctx, endpoints...)
	}

	return nil, fmt.Errorf("unsupported chain kind %q", cfg.Kind)
}

func splitEndpoints(s string) []string {
	var endpoints []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, strings.TrimSuffix(e, "/"))
		}
	}

	return endpoints
}
