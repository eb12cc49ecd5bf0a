package mpcrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
)

// FingerprintBytes is the length of a Secret fingerprint (SHA-256).
const FingerprintBytes = sha256.Size

var fingerprintPrefix = []byte("MPv1|secret_fingerprint|")

// Secret is a player-held scalar in [1, l-1], where l is the ristretto255
// group order. A Secret is used either as a whole-deck shuffle key or as a
// per-position lock key; it must never leave the player except through an
// intentional reveal.
type Secret struct {
	s Scalar
}

// NewSecret draws a uniformly random non-zero secret from crypto/rand.
func NewSecret() (Secret, error) {
	return NewSecretFromRand(rand.Reader)
}

// NewSecretFromRand draws a secret from the given randomness source.
// The source must be cryptographically secure outside of tests.
func NewSecretFromRand(r io.Reader) (Secret, error) {
	for {
		var uni [64]byte
		if _, err := io.ReadFull(r, uni[:]); err != nil {
			return Secret{}, fmt.Errorf("secret: read randomness: %w", err)
		}
		s, err := ScalarFromUniformBytes(uni[:])
		if err != nil {
			return Secret{}, err
		}
		// A uniform scalar is zero with negligible probability; reject it
		// anyway so the inverse always exists.
		if !s.IsZero() {
			return Secret{s: s}, nil
		}
	}
}

// SecretFromScalar wraps an existing scalar. Rejects zero.
func SecretFromScalar(s Scalar) (Secret, error) {
	if s.IsZero() {
		return Secret{}, fmt.Errorf("secret: scalar must be non-zero")
	}
	return Secret{s: s}, nil
}

// SecretFromBytes decodes a revealed secret from its canonical encoding.
func SecretFromBytes(b []byte) (Secret, error) {
	s, err := ScalarFromBytesCanonical(b)
	if err != nil {
		return Secret{}, err
	}
	return SecretFromScalar(s)
}

func (s Secret) Scalar() Scalar {
	return s.s
}

// Bytes returns the canonical 32-byte encoding, used when a secret is
// intentionally revealed.
func (s Secret) Bytes() []byte {
	return s.s.Bytes()
}

func (s Secret) IsZero() bool {
	return s.s.IsZero()
}

// Inverse returns the modular inverse of the secret mod the group order.
func (s Secret) Inverse() (Scalar, error) {
	return ScalarInv(s.s)
}

// Fingerprint returns a deterministic one-way hash of the secret, suitable
// for publishing as a commitment before the secret itself is revealed.
func (s Secret) Fingerprint() []byte {
	h := sha256.New()
	h.Write(fingerprintPrefix)
	h.Write(s.s.Bytes())
	return h.Sum(nil)
}
