package deck

import (
	"bytes"
	"sort"
	"testing"

	"github.com/MichaelMaurer/mental-poker/internal/mpcrypto"
)

func testSecret(t *testing.T, tag string) mpcrypto.Secret {
	t.Helper()
	s, err := mpcrypto.HashToScalar("mp/test/deck", []byte(tag))
	if err != nil {
		t.Fatalf("hashToScalar(%q): %v", tag, err)
	}
	sec, err := mpcrypto.SecretFromScalar(s)
	if err != nil {
		t.Fatalf("secretFromScalar(%q): %v", tag, err)
	}
	return sec
}

func testSecrets(t *testing.T, tag string, n int) []mpcrypto.Secret {
	t.Helper()
	out := make([]mpcrypto.Secret, n)
	for i := range out {
		out[i] = testSecret(t, tag+string(rune('A'+i%26))+string(rune('a'+(i/26)%26)))
	}
	return out
}

func testPoints(seed uint64) []mpcrypto.Point {
	pts := make([]mpcrypto.Point, Size)
	for i := range pts {
		pts[i] = mpcrypto.MulBase(mpcrypto.ScalarFromUint64(seed + uint64(i+1)))
	}
	return pts
}

func testDeck(t *testing.T) Deck {
	t.Helper()
	d, err := New(testPoints(1000))
	if err != nil {
		t.Fatalf("new deck: %v", err)
	}
	return d
}

func decksEqual(a, b Deck) bool {
	ap, bp := a.Points(), b.Points()
	if len(ap) != len(bp) {
		return false
	}
	for i := range ap {
		if !mpcrypto.PointEq(ap[i], bp[i]) {
			return false
		}
	}
	return true
}

func sortedEncodings(d Deck) [][]byte {
	pts := d.Points()
	out := make([][]byte, len(pts))
	for i, p := range pts {
		out[i] = p.Bytes()
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

func TestNewRejectsWrongLength(t *testing.T) {
	if _, err := New(testPoints(1)[:Size-1]); err == nil {
		t.Fatalf("expected error for short point list")
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil point list")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	d := testDeck(t)
	s := testSecret(t, "roundtrip")
	enc := d.Encrypt(s)
	if decksEqual(enc, d) {
		t.Fatalf("encryption left the deck unchanged")
	}
	dec, err := enc.Decrypt(s)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !decksEqual(dec, d) {
		t.Fatalf("decrypt did not restore the deck")
	}
}

func TestDecryptWithWrongSecretYieldsGarbage(t *testing.T) {
	d := testDeck(t)
	enc := d.Encrypt(testSecret(t, "right"))
	dec, err := enc.Decrypt(testSecret(t, "wrong"))
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	// No integrity check at this layer; the result is just wrong.
	if decksEqual(dec, d) {
		t.Fatalf("wrong secret restored the deck")
	}
}

func TestLockUnlockSingleAnyOrder(t *testing.T) {
	d := testDeck(t)
	keysA := testSecrets(t, "lockA", Size)
	keysB := testSecrets(t, "lockB", Size)

	locked, err := d.Lock(keysA)
	if err != nil {
		t.Fatalf("lock A: %v", err)
	}
	locked, err = locked.Lock(keysB)
	if err != nil {
		t.Fatalf("lock B: %v", err)
	}

	orig := d.Points()
	for _, i := range []int{0, 17, 51} {
		// Supply the unlock secrets in the opposite order of locking.
		got, err := locked.UnlockSingle(i, []mpcrypto.Secret{keysB[i], keysA[i]})
		if err != nil {
			t.Fatalf("unlock %d: %v", i, err)
		}
		if !mpcrypto.PointEq(got, orig[i]) {
			t.Fatalf("unlock %d did not recover the original point", i)
		}
	}
}

func TestUnlockSingleMissingSecretFails(t *testing.T) {
	d := testDeck(t)
	keysA := testSecrets(t, "mA", Size)
	keysB := testSecrets(t, "mB", Size)
	locked, err := d.Lock(keysA)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	locked, err = locked.Lock(keysB)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	got, err := locked.UnlockSingle(3, []mpcrypto.Secret{keysA[3]})
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if mpcrypto.PointEq(got, d.Points()[3]) {
		t.Fatalf("missing key still recovered the original point")
	}
}

func TestUnlockSingleOutOfRange(t *testing.T) {
	d := testDeck(t)
	if _, err := d.UnlockSingle(-1, nil); err == nil {
		t.Fatalf("expected error for negative index")
	}
	if _, err := d.UnlockSingle(Size, nil); err == nil {
		t.Fatalf("expected error for index %d", Size)
	}
}

func TestLockRequiresFullKeyList(t *testing.T) {
	d := testDeck(t)
	if _, err := d.Lock(testSecrets(t, "short", Size-1)); err == nil {
		t.Fatalf("expected error for short key list")
	}
}

func TestShufflePreservesMultiset(t *testing.T) {
	d := testDeck(t)
	shuffled, err := d.Shuffle()
	if err != nil {
		t.Fatalf("shuffle: %v", err)
	}
	want := sortedEncodings(d)
	got := sortedEncodings(shuffled)
	for i := range want {
		if !bytes.Equal(want[i], got[i]) {
			t.Fatalf("shuffle changed the point multiset at %d", i)
		}
	}
}

func TestShuffleSpreadsPositions(t *testing.T) {
	// Not a full uniformity test, but over 200 shuffles the original first
	// point should land on many distinct positions.
	d := testDeck(t)
	first := d.Points()[0]
	seen := map[int]struct{}{}
	for trial := 0; trial < 200; trial++ {
		shuffled, err := d.Shuffle()
		if err != nil {
			t.Fatalf("shuffle: %v", err)
		}
		for i, p := range shuffled.Points() {
			if mpcrypto.PointEq(p, first) {
				seen[i] = struct{}{}
				break
			}
		}
	}
	if len(seen) < 30 {
		t.Fatalf("first point landed on only %d distinct positions in 200 shuffles", len(seen))
	}
}

func TestCombineSumsContributions(t *testing.T) {
	a := testPoints(1)
	b := testPoints(500)
	combined, err := Combine(a, b)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if combined.Len() != Size {
		t.Fatalf("combined deck has %d points, want %d", combined.Len(), Size)
	}
	for i, p := range combined.Points() {
		if !mpcrypto.PointEq(p, mpcrypto.PointAdd(a[i], b[i])) {
			t.Fatalf("combined point %d is not the sum of contributions", i)
		}
	}

	single, err := Combine(a)
	if err != nil {
		t.Fatalf("combine single: %v", err)
	}
	if single.Len() != Size {
		t.Fatalf("single-player deck has %d points", single.Len())
	}
}

func TestCombineRejectsMalformedContribution(t *testing.T) {
	a := testPoints(1)
	if _, err := Combine(a, a[:Size-1]); err == nil {
		t.Fatalf("expected error for short contribution")
	}
	if _, err := Combine(); err == nil {
		t.Fatalf("expected error for no contributions")
	}
}
