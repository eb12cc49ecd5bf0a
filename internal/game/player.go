package game

import (
	"io"

	errorsmod "cosmossdk.io/errors"

	"github.com/MichaelMaurer/mental-poker/internal/cards"
	"github.com/MichaelMaurer/mental-poker/internal/deck"
	"github.com/MichaelMaurer/mental-poker/internal/mpcrypto"
)

// SecretsPerPlayer is how many secrets each player generates: one lock key
// per deck position plus, in the final slot, the shuffle-phase key.
const SecretsPerPlayer = deck.Size + 1

// ShuffleSecretIndex is the slot of the shuffle-phase key inside a player's
// secret list.
const ShuffleSecretIndex = deck.Size

// Player holds per-participant protocol state. For the local participant
// (IsSelf) Secrets carries all 53 generated secrets; for opponents it stays
// empty and RevealedSecrets fills in as they disclose lock keys for
// individual card draws.
type Player struct {
	ID       string
	IsSelf   bool
	Points   []mpcrypto.Point  // length deck.Size, contributed at setup
	Secrets  []mpcrypto.Secret // length SecretsPerPlayer, self only
	Hand     []cards.Card
	Folded   bool

	// Commitments optionally holds SecretsPerPlayer fingerprints published
	// at setup, checked against revealed secrets during verification.
	Commitments [][]byte

	// RevealedSecrets collects lock keys this player has disclosed, keyed
	// by deck position. Bookkeeping for fairness verification.
	RevealedSecrets map[int]mpcrypto.Secret
}

// GenerateKeys draws a fresh point contribution and secret list from r.
// Points are random group elements; summed across players they form the
// initial deck, so no strict subset of players determines any card's base
// identity.
func GenerateKeys(r io.Reader) ([]mpcrypto.Point, []mpcrypto.Secret, error) {
	points := make([]mpcrypto.Point, deck.Size)
	for i := range points {
		s, err := mpcrypto.NewSecretFromRand(r)
		if err != nil {
			return nil, nil, err
		}
		points[i] = mpcrypto.MulBase(s.Scalar())
	}
	secrets := make([]mpcrypto.Secret, SecretsPerPlayer)
	for i := range secrets {
		s, err := mpcrypto.NewSecretFromRand(r)
		if err != nil {
			return nil, nil, err
		}
		secrets[i] = s
	}
	return points, secrets, nil
}

// NewSelfPlayer builds the local participant with freshly generated keys.
func NewSelfPlayer(id string, r io.Reader) (Player, error) {
	points, secrets, err := GenerateKeys(r)
	if err != nil {
		return Player{}, errorsmod.Wrap(ErrSetup, err.Error())
	}
	return Player{
		ID:              id,
		IsSelf:          true,
		Points:          points,
		Secrets:         secrets,
		RevealedSecrets: map[int]mpcrypto.Secret{},
	}, nil
}

// NewOpponentPlayer builds an opponent record from their published point
// contribution. Their secrets stay with them until revealed.
func NewOpponentPlayer(id string, points []mpcrypto.Point) Player {
	cp := make([]mpcrypto.Point, len(points))
	copy(cp, points)
	return Player{
		ID:              id,
		Points:          cp,
		RevealedSecrets: map[int]mpcrypto.Secret{},
	}
}

// Fingerprints returns the fingerprint of every secret, for publication as
// commitments before play starts.
func (p Player) Fingerprints() [][]byte {
	out := make([][]byte, len(p.Secrets))
	for i, s := range p.Secrets {
		out[i] = s.Fingerprint()
	}
	return out
}

// SecretAt returns the player's own lock key for a deck position. Only
// meaningful for the self player.
func (p Player) SecretAt(index int) (mpcrypto.Secret, error) {
	if index < 0 || index >= len(p.Secrets) {
		return mpcrypto.Secret{}, errorsmod.Wrapf(ErrOutOfRange, "secret index %d", index)
	}
	return p.Secrets[index], nil
}

// ShuffleSecret returns the player's shuffle-phase key.
func (p Player) ShuffleSecret() (mpcrypto.Secret, error) {
	return p.SecretAt(ShuffleSecretIndex)
}

// clone deep-copies the player's reference fields so that derived Game
// values never alias mutable state with their ancestors.
func (p Player) clone() Player {
	out := p
	out.Points = append([]mpcrypto.Point(nil), p.Points...)
	out.Secrets = append([]mpcrypto.Secret(nil), p.Secrets...)
	out.Hand = append([]cards.Card(nil), p.Hand...)
	if p.Commitments != nil {
		out.Commitments = make([][]byte, len(p.Commitments))
		for i, c := range p.Commitments {
			out.Commitments[i] = append([]byte(nil), c...)
		}
	}
	out.RevealedSecrets = make(map[int]mpcrypto.Secret, len(p.RevealedSecrets))
	for k, v := range p.RevealedSecrets {
		out.RevealedSecrets[k] = v
	}
	return out
}
