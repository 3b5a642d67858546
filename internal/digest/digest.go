// Package digest is the record-fingerprinting registry the CLI draws
// from: each scanned record can be hashed with a pluggable algorithm
// and emitted alongside the capture data.
package digest

import (
	"encoding/hex"
	"hash"

	blake2b "github.com/minio/blake2b-simd"
	sha256 "github.com/minio/sha256-simd"
	"github.com/twmb/murmur3"
	"golang.org/x/crypto/sha3"
)

var AvailableDigesters = map[string]Digester{
	"none": {
		Maker: nil,
	},
	"sha2-256": {
		Maker: sha256.New,
	},
	"sha3-512": {
		Maker: sha3.New512,
	},
	"blake2b-256": {
		Maker: blake2b.New256,
	},
	"murmur3-128": {
		Maker: func() hash.Hash { return murmur3.New128() },
		// non-cryptographic: fine for dedup bookkeeping, nothing else
		Unsafe: true,
	},
}

type Digester struct {
	Maker  func() hash.Hash
	Unsafe bool
}

// Sum hex-encodes one-shot digest output. A nil Maker yields "".
func (d Digester) Sum(b []byte) string {
	if d.Maker == nil {
		return ""
	}
	h := d.Maker()
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}
