package game

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/MichaelMaurer/mental-poker/internal/cards"
)

// HandEvaluator ranks revealed hands and selects winners. Implementations
// live outside this package; the core only forwards card labels and records
// the result.
type HandEvaluator interface {
	// Evaluate receives a game-type tag and, per player id, that player's
	// hole cards followed by the community cards as two-character labels.
	// It returns the winning player ids.
	Evaluate(gameType string, hands map[string][]string) ([]string, error)
}

// EvaluateHands forwards every active (non-folded) player's hand plus the
// community cards to the evaluator and records the returned winner set.
// Every active player must have revealed a hand first.
func (g Game) EvaluateHands(gameType string, eval HandEvaluator) (Game, error) {
	hands := map[string][]string{}
	for _, p := range g.players {
		if p.Folded {
			continue
		}
		if len(p.Hand) == 0 {
			return Game{}, errorsmod.Wrapf(ErrProtocolViolation, "player %q has not revealed a hand", p.ID)
		}
		all := append(append([]cards.Card(nil), p.Hand...), g.community...)
		hands[p.ID] = cards.Labels(all)
	}
	if len(hands) == 0 {
		return Game{}, errorsmod.Wrap(ErrProtocolViolation, "no active players at showdown")
	}
	winners, err := eval.Evaluate(gameType, hands)
	if err != nil {
		return Game{}, err
	}
	out := g.clone()
	out.winners = append([]string(nil), winners...)
	return out, nil
}
