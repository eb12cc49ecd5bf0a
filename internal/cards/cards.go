package cards

import "fmt"

// DeckSize is the number of cards in the protocol deck.
const DeckSize = 52

// Card is a 0..51 id, where:
// - rank = (id % 13) + 2  (2..14)
// - suit = (id / 13)      (0..3, clubs/diamonds/hearts/spades)
type Card uint8

func (c Card) Rank() uint8 { // 2..14
	return uint8(c%13) + 2
}

func (c Card) Suit() uint8 { // 0..3
	return uint8(c / 13)
}

func (c Card) Valid() bool {
	return c < DeckSize
}

// String returns the two-character label, e.g. "As" or "Td".
func (c Card) String() string {
	r := c.Rank()
	var rch byte
	switch r {
	case 14:
		rch = 'A'
	case 13:
		rch = 'K'
	case 12:
		rch = 'Q'
	case 11:
		rch = 'J'
	case 10:
		rch = 'T'
	default:
		rch = byte('0' + r)
	}
	s := c.Suit()
	var sch byte
	switch s {
	case 0:
		sch = 'c'
	case 1:
		sch = 'd'
	case 2:
		sch = 'h'
	case 3:
		sch = 's'
	default:
		sch = '?'
	}
	return string([]byte{rch, sch})
}

// FromIndex converts a raw deck position to a Card.
func FromIndex(i int) (Card, error) {
	if i < 0 || i >= DeckSize {
		return 0, fmt.Errorf("cards: index %d out of range", i)
	}
	return Card(i), nil
}

// ParseLabel is the inverse of String.
func ParseLabel(label string) (Card, error) {
	if len(label) != 2 {
		return 0, fmt.Errorf("cards: label %q must be two characters", label)
	}
	var rank uint8
	switch label[0] {
	case 'A':
		rank = 14
	case 'K':
		rank = 13
	case 'Q':
		rank = 12
	case 'J':
		rank = 11
	case 'T':
		rank = 10
	case '2', '3', '4', '5', '6', '7', '8', '9':
		rank = label[0] - '0'
	default:
		return 0, fmt.Errorf("cards: unknown rank %q", label[0])
	}
	var suit uint8
	switch label[1] {
	case 'c':
		suit = 0
	case 'd':
		suit = 1
	case 'h':
		suit = 2
	case 's':
		suit = 3
	default:
		return 0, fmt.Errorf("cards: unknown suit %q", label[1])
	}
	return Card(uint8(suit)*13 + (rank - 2)), nil
}

// All returns the 52 cards in id order.
func All() []Card {
	out := make([]Card, DeckSize)
	for i := range out {
		out[i] = Card(i)
	}
	return out
}

// Labels converts a card sequence to its two-character labels.
func Labels(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
