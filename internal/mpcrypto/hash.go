package mpcrypto

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
)

var hashToScalarPrefix = []byte("MPv1|hash_to_scalar|")

func updateLenBytes(h hash.Hash, b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	h.Write(n[:])
	h.Write(b)
}

// HashToScalar derives a scalar from a domain separator and a sequence of
// length-prefixed messages. Used for deterministic test fixtures and for
// anything that needs a scalar bound to transcript data.
func HashToScalar(domainSep string, msgs ...[]byte) (Scalar, error) {
	h := sha512.New()
	h.Write(hashToScalarPrefix)
	updateLenBytes(h, []byte(domainSep))
	for _, m := range msgs {
		if m == nil {
			return Scalar{}, fmt.Errorf("hashToScalar: nil msg")
		}
		updateLenBytes(h, m)
	}
	digest := h.Sum(nil) // 64 bytes
	return ScalarFromUniformBytes(digest)
}
