// Package tickerhash derives stable pseudo-random values from a ticker.
//
// Everything keys off SHA-256 of the UTF-8 ticker, so values are identical
// across runs, builds and platforms.
package tickerhash

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// Digest returns SHA-256 of the ticker
func Digest(ticker string) [sha256.Size]byte {
	return sha256.Sum256([]byte(ticker))
}

// Mod interprets the digest as a big-endian unsigned integer and returns it modulo n.
// n must be positive.
func Mod(ticker string, n int) int {
	d := Digest(ticker)
	v := new(big.Int).SetBytes(d[:])
	return int(new(big.Int).Mod(v, big.NewInt(int64(n))).Int64())
}

// Seeds splits the first 16 digest bytes into two generator seeds
func Seeds(ticker string) (uint64, uint64) {
	d := Digest(ticker)
	return binary.BigEndian.Uint64(d[0:8]), binary.BigEndian.Uint64(d[8:16])
}
