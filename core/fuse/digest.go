package fuse

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest computes the hex encoded BLAKE3 hash of data.
func Digest(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
