package chain

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/stretchr/testify/require"
)

const blockHash = "00000000000000000002a7c4c1e48d76c5a37902165a270156b7a8d72728a054"

func TestMempool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/blocks/tip/height":
			io.WriteString(w, "840000\n")
		case "/api/block-height/840006":
			io.WriteString(w, blockHash)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, "Block not found")
		}
	}))
	defer srv.Close()

	source, err := New(context.Background(), config.ChainConfigs{Kind: "mempool", Endpoint: srv.URL + "/api/"})
	require.NoError(t, err)

	height, err := source.CurrentHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(840000), height)

	hash, err := source.BlockHash(context.Background(), 840006)
	require.NoError(t, err)
	require.Equal(t, blockHash, hash)

	_, err = source.BlockHash(context.Background(), 840007)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.Unavailable})
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(context.Background(), config.ChainConfigs{Kind: "mempool"})
	require.Error(t, err)

	_, err = New(context.Background(), config.ChainConfigs{Kind: "solana", Endpoint: "http://x"})
	require.Error(t, err)
}

func TestSplitEndpoints(t *testing.T) {
	require.Equal(t,
		[]string{"https://mempool.space/api", "https://blockstream.info/api"},
		splitEndpoints(" https://mempool.space/api/, https://blockstream.info/api ,"))
}
