package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSHA256Hex(t *testing.T) {
	require.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		SHA256Hex(nil))
	require.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		SHA256Hex([]byte("abc")))
}

func TestHexPrefixUint(t *testing.T) {
	v, err := HexPrefixUint("ba7816bf8f01cfea", 10)
	require.NoError(t, err)
	require.Equal(t, uint64(0xba7816bf8f), v)

	_, err = HexPrefixUint("abc", 10)
	require.Error(t, err)

	_, err = HexPrefixUint("zzzzzzzzzzzz", 10)
	require.Error(t, err)

	_, err = HexPrefixUint("ab", 17)
	require.Error(t, err)
}
