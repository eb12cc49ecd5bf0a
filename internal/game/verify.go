package game

import (
	"bytes"
	"sort"

	errorsmod "cosmossdk.io/errors"

	"github.com/MichaelMaurer/mental-poker/internal/deck"
	"github.com/MichaelMaurer/mental-poker/internal/mpcrypto"
)

// VerifyDeckSequence replays the recorded deck history against the secrets
// every player has revealed after the hand and returns the ids of players
// whose recorded transformation does not match their claimed one. Findings
// are advisory: applying consequences (Disqualify) stays a caller decision.
//
// The sequence must be complete: entry 0 plus one shuffle and one lock
// entry per player, in player order. Each shuffle turn is checked up to
// permutation (re-encrypting the previous deck must yield the same point
// multiset), each lock turn by exact positional equality.
func (g Game) VerifyDeckSequence(revealed map[string][]mpcrypto.Secret) ([]string, error) {
	n := len(g.players)
	if len(g.deckSequence) != 2*n+1 {
		return nil, errorsmod.Wrapf(ErrProtocolViolation, "deck sequence has %d entries, want %d", len(g.deckSequence), 2*n+1)
	}
	for _, p := range g.players {
		secrets, ok := revealed[p.ID]
		if !ok {
			return nil, errorsmod.Wrapf(ErrMissingSecret, "player %q revealed no secrets", p.ID)
		}
		if len(secrets) != SecretsPerPlayer {
			return nil, errorsmod.Wrapf(ErrProtocolViolation, "player %q revealed %d secrets, want %d", p.ID, len(secrets), SecretsPerPlayer)
		}
	}

	unfair := map[string]struct{}{}
	for i, p := range g.players {
		secrets := revealed[p.ID]
		if !g.verifyPlayerClaims(p, secrets) {
			unfair[p.ID] = struct{}{}
		}
		shuffleKey := secrets[ShuffleSecretIndex]
		if !verifyShuffleStep(g.deckSequence[1+i], g.deckSequence[i], shuffleKey) {
			unfair[p.ID] = struct{}{}
		}
		if !verifyLockStep(g.deckSequence[1+n+i], g.deckSequence[n+i], shuffleKey, secrets[:deck.Size]) {
			unfair[p.ID] = struct{}{}
		}
	}

	out := make([]string, 0, len(unfair))
	for id := range unfair {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// verifyPlayerClaims cross-checks a post-game secret list against what the
// player disclosed during play and, when commitments were published at
// setup, against those fingerprints.
func (g Game) verifyPlayerClaims(p Player, secrets []mpcrypto.Secret) bool {
	for index, disclosed := range p.RevealedSecrets {
		if index < 0 || index >= deck.Size {
			return false
		}
		if !mpcrypto.ScalarEq(disclosed.Scalar(), secrets[index].Scalar()) {
			return false
		}
	}
	if p.Commitments != nil {
		for i, s := range secrets {
			if !bytes.Equal(s.Fingerprint(), p.Commitments[i]) {
				return false
			}
		}
	}
	return true
}

// verifyShuffleStep checks that after is some permutation of before
// re-encrypted with the claimed shuffle key. Shuffling changes order, not
// membership, so the sorted point encodings must agree.
func verifyShuffleStep(after, before deck.Deck, shuffleKey mpcrypto.Secret) bool {
	reenc := before.Encrypt(shuffleKey)
	return sortedPointBytes(reenc).Equal(sortedPointBytes(after))
}

// verifyLockStep checks the exact lock transform: strip the player's own
// shuffle mask, apply their per-position keys, compare position by
// position.
func verifyLockStep(after, before deck.Deck, shuffleKey mpcrypto.Secret, lockKeys []mpcrypto.Secret) bool {
	unmasked, err := before.Decrypt(shuffleKey)
	if err != nil {
		return false
	}
	locked, err := unmasked.Lock(lockKeys)
	if err != nil {
		return false
	}
	a := locked.Points()
	b := after.Points()
	for i := range a {
		if !mpcrypto.PointEq(a[i], b[i]) {
			return false
		}
	}
	return true
}

type pointBytesSet [][]byte

func (s pointBytesSet) Equal(other pointBytesSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !bytes.Equal(s[i], other[i]) {
			return false
		}
	}
	return true
}

func sortedPointBytes(d deck.Deck) pointBytesSet {
	pts := d.Points()
	out := make(pointBytesSet, len(pts))
	for i, p := range pts {
		out[i] = p.Bytes()
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}
