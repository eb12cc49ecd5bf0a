// Package deck implements the commutative-encryption deck at the heart of
// the mental poker protocol. A Deck is an immutable ordered sequence of 52
// group elements; every transformation returns a new Deck.
package deck

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/MichaelMaurer/mental-poker/internal/cards"
	"github.com/MichaelMaurer/mental-poker/internal/mpcrypto"
)

// Size is the fixed deck length. Every Deck holds exactly this many points.
const Size = cards.DeckSize

type Deck struct {
	points []mpcrypto.Point
}

// New builds a Deck from exactly Size points. A wrong-length input is a
// contract violation by the caller.
func New(points []mpcrypto.Point) (Deck, error) {
	if len(points) != Size {
		return Deck{}, fmt.Errorf("deck: expected %d points, got %d", Size, len(points))
	}
	cp := make([]mpcrypto.Point, Size)
	copy(cp, points)
	return Deck{points: cp}, nil
}

// Combine sums the players' point contributions position-wise into the
// initial deck. Every contribution must have exactly Size points: a
// malformed contribution aborts construction instead of being papered over
// with fresh randomness, since substitution would let the remaining players
// fix the deck among themselves.
func Combine(contributions ...[]mpcrypto.Point) (Deck, error) {
	if len(contributions) == 0 {
		return Deck{}, fmt.Errorf("deck: no contributions")
	}
	sums := make([]mpcrypto.Point, Size)
	for i := range sums {
		sums[i] = mpcrypto.PointZero()
	}
	for pi, pts := range contributions {
		if len(pts) != Size {
			return Deck{}, fmt.Errorf("deck: contribution %d has %d points, want %d", pi, len(pts), Size)
		}
		for i, pt := range pts {
			sums[i] = mpcrypto.PointAdd(sums[i], pt)
		}
	}
	return Deck{points: sums}, nil
}

// Points returns a copy of the deck's points.
func (d Deck) Points() []mpcrypto.Point {
	cp := make([]mpcrypto.Point, len(d.points))
	copy(cp, d.points)
	return cp
}

// PointAt returns the point at a deck position.
func (d Deck) PointAt(index int) (mpcrypto.Point, error) {
	if index < 0 || index >= len(d.points) {
		return mpcrypto.Point{}, fmt.Errorf("deck: index %d out of range", index)
	}
	return d.points[index], nil
}

func (d Deck) Len() int {
	return len(d.points)
}

// Encrypt multiplies every point by the secret. One shared key masks the
// whole deck during the shuffle phase so the permutation that follows does
// not leak position-to-identity correlation.
func (d Deck) Encrypt(secret mpcrypto.Secret) Deck {
	out := make([]mpcrypto.Point, len(d.points))
	k := secret.Scalar()
	for i, p := range d.points {
		out[i] = mpcrypto.MulPoint(p, k)
	}
	return Deck{points: out}
}

// Decrypt removes a mask previously applied by Encrypt with the same
// secret. With a mismatched secret it silently yields garbage points;
// integrity is established later by sequence verification, not here.
func (d Deck) Decrypt(secret mpcrypto.Secret) (Deck, error) {
	inv, err := secret.Inverse()
	if err != nil {
		return Deck{}, fmt.Errorf("deck: decrypt: %w", err)
	}
	out := make([]mpcrypto.Point, len(d.points))
	for i, p := range d.points {
		out[i] = mpcrypto.MulPoint(p, inv)
	}
	return Deck{points: out}, nil
}

// Shuffle returns a uniformly random permutation of the deck drawn from
// crypto/rand. The unpredictability of the final deck order rests on at
// least one honest player keeping their permutation secret.
func (d Deck) Shuffle() (Deck, error) {
	perm, err := randomPermutation(len(d.points))
	if err != nil {
		return Deck{}, fmt.Errorf("deck: shuffle: %w", err)
	}
	out := make([]mpcrypto.Point, len(d.points))
	for i, j := range perm {
		out[i] = d.points[j]
	}
	return Deck{points: out}, nil
}

// Lock multiplies position i's point by secrets[i]. Unlike Encrypt, each
// position gets an independent key, so revealing one card later costs one
// secret per player instead of the whole shuffle key.
func (d Deck) Lock(secrets []mpcrypto.Secret) (Deck, error) {
	if len(secrets) != len(d.points) {
		return Deck{}, fmt.Errorf("deck: lock: expected %d secrets, got %d", len(d.points), len(secrets))
	}
	out := make([]mpcrypto.Point, len(d.points))
	for i, p := range d.points {
		out[i] = mpcrypto.MulPoint(p, secrets[i].Scalar())
	}
	return Deck{points: out}, nil
}

// UnlockSingle strips the given secrets off the point at index by
// multiplying with each one's modular inverse. Scalar multiplication
// commutes, so the secrets may arrive in any order regardless of the order
// the locks were applied in; that is what lets each player reveal
// independently. The result is only the original identity if every lock
// applied to the position is represented.
func (d Deck) UnlockSingle(index int, secrets []mpcrypto.Secret) (mpcrypto.Point, error) {
	if index < 0 || index >= len(d.points) {
		return mpcrypto.Point{}, fmt.Errorf("deck: unlock: index %d out of range", index)
	}
	p := d.points[index]
	for i, s := range secrets {
		inv, err := s.Inverse()
		if err != nil {
			return mpcrypto.Point{}, fmt.Errorf("deck: unlock: secret %d: %w", i, err)
		}
		p = mpcrypto.MulPoint(p, inv)
	}
	return p, nil
}

// randomPermutation is a Fisher-Yates shuffle with unbiased indices from
// crypto/rand.
func randomPermutation(n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, err
		}
		j := int(jBig.Int64())
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, nil
}
