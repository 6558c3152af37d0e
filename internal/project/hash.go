package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a sha256 sum; source.File.Hash has the same shape.
type Digest [32]byte

func DigestOf(content []byte) Digest { return sha256.Sum256(content) }

// Combine folds deps into content in order, so the result changes when
// any input or the order changes.
func Combine(content Digest, deps ...Digest) Digest {
	buf := make([]byte, 0, len(content)*(len(deps)+1))
	buf = append(buf, content[:]...)
	for _, d := range deps {
		buf = append(buf, d[:]...)
	}
	return sha256.Sum256(buf)
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func (d Digest) IsZero() bool { return d == Digest{} }
