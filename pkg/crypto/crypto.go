package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// SHA256Hex returns the lowercase hex encoding of SHA-256(b).
func SHA256Hex(b []byte) string {
	hashed := sha256.Sum256(b)
	return hex.EncodeToString(hashed[:])
}

// HexPrefixUint parses the first n hex characters of s as an unsigned
// integer. n must not exceed 16.
func HexPrefixUint(s string, n int) (uint64, error) {
	if n <= 0 || n > 16 {
		return 0, fmt.Errorf("invalid hex prefix length %d", n)
	}

	if len(s) < n {
		return 0, fmt.Errorf("hex string %q is shorter than %d", s, n)
	}

	return strconv.ParseUint(s[:n], 16, 64)
}
