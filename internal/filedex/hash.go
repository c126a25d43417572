package filedex

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Sum streams r through a 64-bit xxhash and returns the checksum as 16 hex
// characters together with the number of bytes read. The checksum only
// detects exact re-uploads; it is not collision resistant.
func Sum(r io.Reader) (string, int64, error) {
	d := xxhash.New()
	n, err := io.Copy(d, r)
	if err != nil {
		return "", n, fmt.Errorf("hash content: %w", err)
	}
	return formatHash(d.Sum64()), n, nil
}

// SumBytes is Sum for an in-memory payload.
func SumBytes(b []byte) string {
	return formatHash(xxhash.Sum64(b))
}

func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}
