package cards

import "testing"

func TestStringParseRoundTrip(t *testing.T) {
	for _, c := range All() {
		got, err := ParseLabel(c.String())
		if err != nil {
			t.Fatalf("parse %q: %v", c.String(), err)
		}
		if got != c {
			t.Fatalf("roundtrip mismatch: %d -> %q -> %d", c, c.String(), got)
		}
	}
}

func TestKnownLabels(t *testing.T) {
	cases := map[Card]string{
		0:  "2c", // lowest club
		12: "Ac",
		13: "2d",
		38: "Ah",
		51: "As",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Fatalf("card %d: got %q, want %q", c, got, want)
		}
	}
}

func TestParseLabelRejectsGarbage(t *testing.T) {
	for _, label := range []string{"", "A", "Asx", "1c", "Ax", "aC"} {
		if _, err := ParseLabel(label); err == nil {
			t.Fatalf("expected error for %q", label)
		}
	}
}

func TestFromIndexBounds(t *testing.T) {
	if _, err := FromIndex(-1); err == nil {
		t.Fatalf("expected error for -1")
	}
	if _, err := FromIndex(DeckSize); err == nil {
		t.Fatalf("expected error for %d", DeckSize)
	}
	c, err := FromIndex(17)
	if err != nil {
		t.Fatalf("fromIndex: %v", err)
	}
	if c != Card(17) {
		t.Fatalf("fromIndex returned %d", c)
	}
}

func TestRankSuitRanges(t *testing.T) {
	for _, c := range All() {
		if r := c.Rank(); r < 2 || r > 14 {
			t.Fatalf("card %d rank %d out of range", c, r)
		}
		if s := c.Suit(); s > 3 {
			t.Fatalf("card %d suit %d out of range", c, s)
		}
		if !c.Valid() {
			t.Fatalf("card %d reported invalid", c)
		}
	}
	if Card(52).Valid() {
		t.Fatalf("card 52 reported valid")
	}
}
