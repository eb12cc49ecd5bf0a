// Package holdem adapts github.com/paulhankin/poker as the hand evaluator
// behind the game core's showdown hookup.
package holdem

import (
	"fmt"
	"sort"

	poker "github.com/paulhankin/poker"

	"github.com/MichaelMaurer/mental-poker/internal/cards"
)

// GameTypeTexas is the only game type this evaluator ranks.
const GameTypeTexas = "texas_holdem"

// Evaluator ranks holdem hands. Scores come from the poker library, where a
// larger value beats a smaller one.
type Evaluator struct{}

func (Evaluator) Evaluate(gameType string, hands map[string][]string) ([]string, error) {
	if gameType != GameTypeTexas {
		return nil, fmt.Errorf("holdem: unsupported game type %q", gameType)
	}
	if len(hands) == 0 {
		return nil, fmt.Errorf("holdem: no hands to evaluate")
	}
	var best int16
	var winners []string
	for id, labels := range hands {
		score, err := scoreLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("holdem: player %q: %w", id, err)
		}
		switch {
		case len(winners) == 0 || score > best:
			best = score
			winners = winners[:0]
			winners = append(winners, id)
		case score == best:
			winners = append(winners, id)
		}
	}
	sort.Strings(winners)
	return winners, nil
}

func scoreLabels(labels []string) (int16, error) {
	pcs := make([]poker.Card, 0, len(labels))
	for _, label := range labels {
		c, err := cards.ParseLabel(label)
		if err != nil {
			return 0, err
		}
		pcs = append(pcs, toPokerCard(c))
	}
	switch len(pcs) {
	case 7:
		var a7 [7]poker.Card
		copy(a7[:], pcs)
		return poker.Eval7(&a7), nil
	case 5:
		var a5 [5]poker.Card
		copy(a5[:], pcs)
		return poker.Eval5(&a5), nil
	case 6:
		return bestFiveOfSix(pcs), nil
	default:
		return 0, fmt.Errorf("expected 5-7 cards, got %d", len(pcs))
	}
}

func toPokerCard(c cards.Card) poker.Card {
	var s poker.Suit
	switch c.Suit() {
	case 0:
		s = poker.Club
	case 1:
		s = poker.Diamond
	case 2:
		s = poker.Heart
	default:
		s = poker.Spade
	}
	// Our ranks run 2..14 (Ace high); the library uses 1..13 with Ace=1.
	r := poker.Rank(c.Rank())
	if c.Rank() == 14 {
		r = poker.Rank(1)
	}
	card, err := poker.MakeCard(s, r)
	if err != nil {
		// All 52 ids convert cleanly; anything else is a bug upstream.
		panic(fmt.Sprintf("holdem: convert card %s: %v", c, err))
	}
	return card
}

func bestFiveOfSix(pcs []poker.Card) int16 {
	var five [5]poker.Card
	var best int16
	for skip := 0; skip < 6; skip++ {
		k := 0
		for i, c := range pcs {
			if i == skip {
				continue
			}
			five[k] = c
			k++
		}
		if score := poker.Eval5(&five); skip == 0 || score > best {
			best = score
		}
	}
	return best
}
