// Package game orchestrates the mental poker protocol around an immutable
// deck: setup from player contributions, the cascaded shuffle and lock
// phases, card draws and opens, fairness verification, and showdown.
//
// Game is a persistent value type. Every transformation returns a new Game
// and leaves the receiver untouched, so references to earlier states stay
// valid; the deck sequence in particular only ever grows.
package game

import (
	"sort"

	errorsmod "cosmossdk.io/errors"

	"github.com/MichaelMaurer/mental-poker/internal/cards"
	"github.com/MichaelMaurer/mental-poker/internal/deck"
	"github.com/MichaelMaurer/mental-poker/internal/mpcrypto"
)

type Game struct {
	id           string
	players      []Player
	selfIdx      int
	deckSequence []deck.Deck
	unpickable   map[int]struct{}
	community    []cards.Card
	disqualified []string
	winners      []string
}

// New builds a Game from the participant list. Exactly one player must be
// the local participant, ids must be unique, every player must contribute
// exactly deck.Size points, and the self player must hold a full secret
// list. The initial deck (sequence entry 0) is the position-wise sum of all
// contributions.
func New(id string, players []Player) (Game, error) {
	if len(players) == 0 {
		return Game{}, errorsmod.Wrap(ErrSetup, "no players")
	}
	selfIdx := -1
	seen := map[string]struct{}{}
	contributions := make([][]mpcrypto.Point, 0, len(players))
	for i, p := range players {
		if p.ID == "" {
			return Game{}, errorsmod.Wrapf(ErrSetup, "player %d has empty id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return Game{}, errorsmod.Wrapf(ErrSetup, "duplicate player id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.IsSelf {
			if selfIdx >= 0 {
				return Game{}, errorsmod.Wrap(ErrSetup, "more than one self player")
			}
			selfIdx = i
			if len(p.Secrets) != SecretsPerPlayer {
				return Game{}, errorsmod.Wrapf(ErrSetup, "self player %q has %d secrets, want %d", p.ID, len(p.Secrets), SecretsPerPlayer)
			}
		}
		if len(p.Points) != deck.Size {
			return Game{}, errorsmod.Wrapf(ErrSetup, "player %q contributed %d points, want %d", p.ID, len(p.Points), deck.Size)
		}
		if p.Commitments != nil && len(p.Commitments) != SecretsPerPlayer {
			return Game{}, errorsmod.Wrapf(ErrSetup, "player %q published %d commitments, want %d", p.ID, len(p.Commitments), SecretsPerPlayer)
		}
		contributions = append(contributions, p.Points)
	}
	if selfIdx < 0 {
		return Game{}, errorsmod.Wrap(ErrSetup, "no self player")
	}
	initial, err := deck.Combine(contributions...)
	if err != nil {
		return Game{}, errorsmod.Wrap(ErrSetup, err.Error())
	}
	g := Game{
		id:           id,
		selfIdx:      selfIdx,
		deckSequence: []deck.Deck{initial},
		unpickable:   map[int]struct{}{},
	}
	g.players = make([]Player, len(players))
	for i, p := range players {
		g.players[i] = p.clone()
	}
	return g, nil
}

// clone deep-copies the game so derived values never alias their ancestor.
func (g Game) clone() Game {
	out := Game{
		id:           g.id,
		selfIdx:      g.selfIdx,
		deckSequence: append([]deck.Deck(nil), g.deckSequence...),
		community:    append([]cards.Card(nil), g.community...),
		disqualified: append([]string(nil), g.disqualified...),
		winners:      append([]string(nil), g.winners...),
	}
	out.players = make([]Player, len(g.players))
	for i, p := range g.players {
		out.players[i] = p.clone()
	}
	out.unpickable = make(map[int]struct{}, len(g.unpickable))
	for k := range g.unpickable {
		out.unpickable[k] = struct{}{}
	}
	return out
}

func (g Game) ID() string { return g.id }

// Players returns a copy of the participant list.
func (g Game) Players() []Player {
	out := make([]Player, len(g.players))
	for i, p := range g.players {
		out[i] = p.clone()
	}
	return out
}

// Self returns the local participant.
func (g Game) Self() Player {
	return g.players[g.selfIdx].clone()
}

// PlayerByID looks up a participant.
func (g Game) PlayerByID(id string) (Player, error) {
	for _, p := range g.players {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return Player{}, errorsmod.Wrap(ErrUnknownPlayer, id)
}

// DeckSequence returns a copy of the transformation history. Entry 0 is the
// combined initial deck.
func (g Game) DeckSequence() []deck.Deck {
	return append([]deck.Deck(nil), g.deckSequence...)
}

// InitialDeck is the position-wise sum of all player contributions.
func (g Game) InitialDeck() deck.Deck {
	return g.deckSequence[0]
}

// CurrentDeck is the most recently appended deck state.
func (g Game) CurrentDeck() deck.Deck {
	return g.deckSequence[len(g.deckSequence)-1]
}

// AddDeckToSequence appends a transformed deck received from the player
// whose turn it was. The core records history only; invoking shuffle and
// lock turns in the right player order is the caller's protocol duty.
func (g Game) AddDeckToSequence(d deck.Deck) Game {
	out := g.clone()
	out.deckSequence = append(out.deckSequence, d)
	return out
}

// ShuffleTurn performs the self player's shuffle-phase turn: mask the
// current deck with the shuffle key, permute it, append. The transformed
// deck is returned alongside so it can be broadcast to the other players.
func (g Game) ShuffleTurn() (Game, deck.Deck, error) {
	key, err := g.players[g.selfIdx].ShuffleSecret()
	if err != nil {
		return Game{}, deck.Deck{}, err
	}
	shuffled, err := g.CurrentDeck().Encrypt(key).Shuffle()
	if err != nil {
		return Game{}, deck.Deck{}, errorsmod.Wrap(ErrProtocolViolation, err.Error())
	}
	return g.AddDeckToSequence(shuffled), shuffled, nil
}

// LockTurn performs the self player's lock-phase turn: strip the own
// shuffle mask, then lock every position with its independent key, append.
func (g Game) LockTurn() (Game, deck.Deck, error) {
	self := g.players[g.selfIdx]
	key, err := self.ShuffleSecret()
	if err != nil {
		return Game{}, deck.Deck{}, err
	}
	unmasked, err := g.CurrentDeck().Decrypt(key)
	if err != nil {
		return Game{}, deck.Deck{}, errorsmod.Wrap(ErrProtocolViolation, err.Error())
	}
	locked, err := unmasked.Lock(self.Secrets[:deck.Size])
	if err != nil {
		return Game{}, deck.Deck{}, errorsmod.Wrap(ErrProtocolViolation, err.Error())
	}
	return g.AddDeckToSequence(locked), locked, nil
}

// PickableCardIndexes returns, in ascending order, every deck position not
// yet drawn or opened.
func (g Game) PickableCardIndexes() []int {
	out := make([]int, 0, deck.Size-len(g.unpickable))
	for i := 0; i < deck.Size; i++ {
		if _, gone := g.unpickable[i]; !gone {
			out = append(out, i)
		}
	}
	return out
}

// UnpickableCardIndexes returns, in ascending order, every position already
// drawn or opened.
func (g Game) UnpickableCardIndexes() []int {
	out := make([]int, 0, len(g.unpickable))
	for i := range g.unpickable {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// CommunityCards returns the opened community cards in open order.
func (g Game) CommunityCards() []cards.Card {
	return append([]cards.Card(nil), g.community...)
}

func (g Game) Winners() []string {
	return append([]string(nil), g.winners...)
}

func (g Game) Disqualified() []string {
	return append([]string(nil), g.disqualified...)
}

// gatherUnlockSecrets assembles one secret per player for a deck position:
// the self player's own key plus every opponent's revealed key. A missing
// opponent entry is a typed error, not undefined behavior.
func (g Game) gatherUnlockSecrets(index int, opponentSecrets map[string]mpcrypto.Secret) ([]mpcrypto.Secret, error) {
	secrets := make([]mpcrypto.Secret, 0, len(g.players))
	for i, p := range g.players {
		if i == g.selfIdx {
			own, err := p.SecretAt(index)
			if err != nil {
				return nil, err
			}
			secrets = append(secrets, own)
			continue
		}
		s, ok := opponentSecrets[p.ID]
		if !ok || s.IsZero() {
			return nil, errorsmod.Wrapf(ErrMissingSecret, "player %q, card index %d", p.ID, index)
		}
		secrets = append(secrets, s)
	}
	return secrets, nil
}

// PeekCard unlocks the card at index using the opponents' revealed secrets
// plus the self player's own, and recovers its identity by matching the
// bare point against the initial deck. No match means a wrong or missing
// secret: a protocol violation, surfaced as an error rather than swallowed.
func (g Game) PeekCard(index int, opponentSecrets map[string]mpcrypto.Secret) (cards.Card, error) {
	if index < 0 || index >= deck.Size {
		return 0, errorsmod.Wrapf(ErrOutOfRange, "card index %d", index)
	}
	if _, gone := g.unpickable[index]; gone {
		return 0, errorsmod.Wrapf(ErrAlreadyUnpickable, "card index %d", index)
	}
	secrets, err := g.gatherUnlockSecrets(index, opponentSecrets)
	if err != nil {
		return 0, err
	}
	unlocked, err := g.CurrentDeck().UnlockSingle(index, secrets)
	if err != nil {
		return 0, errorsmod.Wrap(ErrProtocolViolation, err.Error())
	}
	for i, p := range g.InitialDeck().Points() {
		if mpcrypto.PointEq(unlocked, p) {
			return cards.Card(i), nil
		}
	}
	return 0, errorsmod.Wrapf(ErrProtocolViolation, "unlocked point at index %d matches no card", index)
}

// recordRevealed books the opponents' disclosed lock keys against their
// player records for later fairness verification.
func (g *Game) recordRevealed(index int, opponentSecrets map[string]mpcrypto.Secret) {
	for i := range g.players {
		if i == g.selfIdx {
			continue
		}
		if s, ok := opponentSecrets[g.players[i].ID]; ok {
			g.players[i].RevealedSecrets[index] = s
		}
	}
}

// DrawCard peeks the card at index, adds it to the self player's hand, and
// retires the position.
func (g Game) DrawCard(index int, opponentSecrets map[string]mpcrypto.Secret) (Game, cards.Card, error) {
	card, err := g.PeekCard(index, opponentSecrets)
	if err != nil {
		return Game{}, 0, err
	}
	out := g.clone()
	out.players[out.selfIdx].Hand = append(out.players[out.selfIdx].Hand, card)
	out.unpickable[index] = struct{}{}
	out.recordRevealed(index, opponentSecrets)
	return out, card, nil
}

// OpenCard peeks the card at index, appends it to the community cards, and
// retires the position.
func (g Game) OpenCard(index int, opponentSecrets map[string]mpcrypto.Secret) (Game, cards.Card, error) {
	card, err := g.PeekCard(index, opponentSecrets)
	if err != nil {
		return Game{}, 0, err
	}
	out := g.clone()
	out.community = append(out.community, card)
	out.unpickable[index] = struct{}{}
	out.recordRevealed(index, opponentSecrets)
	return out, card, nil
}

// NoteCardDrawn records another player's draw: the position is retired and
// the secrets revealed to the drawer (everyone's but the drawer's own) are
// booked, without the card identity ever becoming known here.
func (g Game) NoteCardDrawn(drawerID string, index int, revealedSecrets map[string]mpcrypto.Secret) (Game, error) {
	if index < 0 || index >= deck.Size {
		return Game{}, errorsmod.Wrapf(ErrOutOfRange, "card index %d", index)
	}
	if _, gone := g.unpickable[index]; gone {
		return Game{}, errorsmod.Wrapf(ErrAlreadyUnpickable, "card index %d", index)
	}
	if _, err := g.PlayerByID(drawerID); err != nil {
		return Game{}, err
	}
	out := g.clone()
	out.unpickable[index] = struct{}{}
	for i := range out.players {
		if out.players[i].ID == drawerID {
			continue
		}
		if s, ok := revealedSecrets[out.players[i].ID]; ok {
			out.players[i].RevealedSecrets[index] = s
		}
	}
	return out, nil
}

// Fold marks a player as folded. Folded players are excluded from showdown
// evaluation.
func (g Game) Fold(playerID string) (Game, error) {
	out := g.clone()
	for i := range out.players {
		if out.players[i].ID == playerID {
			out.players[i].Folded = true
			return out, nil
		}
	}
	return Game{}, errorsmod.Wrap(ErrUnknownPlayer, playerID)
}

// RevealHand records a player's disclosed hole cards ahead of showdown.
// The self player's hand accumulates through DrawCard instead.
func (g Game) RevealHand(playerID string, hand []cards.Card) (Game, error) {
	for _, c := range hand {
		if !c.Valid() {
			return Game{}, errorsmod.Wrapf(ErrOutOfRange, "card %d", c)
		}
	}
	out := g.clone()
	for i := range out.players {
		if out.players[i].ID == playerID {
			out.players[i].Hand = append([]cards.Card(nil), hand...)
			return out, nil
		}
	}
	return Game{}, errorsmod.Wrap(ErrUnknownPlayer, playerID)
}

// Disqualify records the caller's decision to act on verification findings.
func (g Game) Disqualify(playerIDs ...string) Game {
	out := g.clone()
	have := map[string]struct{}{}
	for _, id := range out.disqualified {
		have[id] = struct{}{}
	}
	for _, id := range playerIDs {
		if _, dup := have[id]; !dup {
			out.disqualified = append(out.disqualified, id)
			have[id] = struct{}{}
		}
	}
	sort.Strings(out.disqualified)
	return out
}
