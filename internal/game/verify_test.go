package game

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MichaelMaurer/mental-poker/internal/deck"
	"github.com/MichaelMaurer/mental-poker/internal/mpcrypto"
)

func TestVerifyHonestSequenceIsClean(t *testing.T) {
	tb := newTable(t, 3)
	tb.runShuffleLock(t)
	for _, v := range tb.views {
		unfair, err := v.VerifyDeckSequence(tb.revealedAll())
		require.NoError(t, err)
		require.Empty(t, unfair)
	}
}

func TestVerifyRequiresCompleteSequence(t *testing.T) {
	tb := newTable(t, 2)
	_, err := tb.views[0].VerifyDeckSequence(tb.revealedAll())
	require.ErrorIs(t, err, ErrProtocolViolation)

	tb.runShuffleLock(t)
	revealed := tb.revealedAll()
	delete(revealed, tb.ids[1])
	_, err = tb.views[0].VerifyDeckSequence(revealed)
	require.ErrorIs(t, err, ErrMissingSecret)

	revealed = tb.revealedAll()
	revealed[tb.ids[1]] = revealed[tb.ids[1]][:deck.Size]
	_, err = tb.views[0].VerifyDeckSequence(revealed)
	require.ErrorIs(t, err, ErrProtocolViolation)
}

// The cheat tests run both phases on player a's view, supplying player b's
// deck transforms from the outside the way a would receive them over the
// wire.
func TestVerifyFlagsShuffleCheat(t *testing.T) {
	tb := newTable(t, 2)
	g := tb.views[0]

	// a shuffles honestly.
	g, _, err := g.ShuffleTurn()
	require.NoError(t, err)

	// b shuffles with a key other than the one they later reveal.
	cheatKey := testSecret(t, "cheat-shuffle")
	bShuffled, err := g.CurrentDeck().Encrypt(cheatKey).Shuffle()
	require.NoError(t, err)
	g = g.AddDeckToSequence(bShuffled)

	// a locks honestly.
	g, _, err = g.LockTurn()
	require.NoError(t, err)

	// b's lock step is consistent with the tampered deck, so only the
	// shuffle check trips.
	bUnmasked, err := g.CurrentDeck().Decrypt(tb.secrets[1][ShuffleSecretIndex])
	require.NoError(t, err)
	bLocked, err := bUnmasked.Lock(tb.secrets[1][:deck.Size])
	require.NoError(t, err)
	g = g.AddDeckToSequence(bLocked)

	unfair, err := g.VerifyDeckSequence(tb.revealedAll())
	require.NoError(t, err)
	require.Equal(t, []string{tb.ids[1]}, unfair)
}

func TestVerifyFlagsLockCheat(t *testing.T) {
	tb := newTable(t, 2)
	g := tb.views[0]

	g, _, err := g.ShuffleTurn()
	require.NoError(t, err)

	// b shuffles honestly.
	bShuffled, err := g.CurrentDeck().Encrypt(tb.secrets[1][ShuffleSecretIndex]).Shuffle()
	require.NoError(t, err)
	g = g.AddDeckToSequence(bShuffled)

	g, _, err = g.LockTurn()
	require.NoError(t, err)

	// b locks position 7 with a key other than the one they later reveal.
	badKeys := append([]mpcrypto.Secret(nil), tb.secrets[1][:deck.Size]...)
	badKeys[7] = testSecret(t, "cheat-lock")
	bUnmasked, err := g.CurrentDeck().Decrypt(tb.secrets[1][ShuffleSecretIndex])
	require.NoError(t, err)
	bLocked, err := bUnmasked.Lock(badKeys)
	require.NoError(t, err)
	g = g.AddDeckToSequence(bLocked)

	unfair, err := g.VerifyDeckSequence(tb.revealedAll())
	require.NoError(t, err)
	require.Equal(t, []string{tb.ids[1]}, unfair)
}

func TestVerifyChecksCommitments(t *testing.T) {
	tb := newTable(t, 2)

	// Rebuild a's view with commitments recorded for both players, b's
	// deliberately bound to the wrong secrets.
	_, wrongSecrets, err := GenerateKeys(rand.Reader)
	require.NoError(t, err)
	players := []Player{
		{ID: tb.ids[0], IsSelf: true, Points: tb.points[0], Secrets: tb.secrets[0], Commitments: fingerprintsOf(tb.secrets[0])},
		func() Player {
			p := NewOpponentPlayer(tb.ids[1], tb.points[1])
			p.Commitments = fingerprintsOf(wrongSecrets)
			return p
		}(),
	}
	g, err := New("commit-game", players)
	require.NoError(t, err)

	g, _, err = g.ShuffleTurn()
	require.NoError(t, err)
	bShuffled, err := g.CurrentDeck().Encrypt(tb.secrets[1][ShuffleSecretIndex]).Shuffle()
	require.NoError(t, err)
	g = g.AddDeckToSequence(bShuffled)
	g, _, err = g.LockTurn()
	require.NoError(t, err)
	bUnmasked, err := g.CurrentDeck().Decrypt(tb.secrets[1][ShuffleSecretIndex])
	require.NoError(t, err)
	bLocked, err := bUnmasked.Lock(tb.secrets[1][:deck.Size])
	require.NoError(t, err)
	g = g.AddDeckToSequence(bLocked)

	// The deck transforms replay cleanly; only the commitment binding fails.
	unfair, err := g.VerifyDeckSequence(tb.revealedAll())
	require.NoError(t, err)
	require.Equal(t, []string{tb.ids[1]}, unfair)
}

func TestVerifyChecksDisclosedSecrets(t *testing.T) {
	tb := newTable(t, 2)
	tb.runShuffleLock(t)

	// a drew a card, so b's lock key for that position is on record. If b
	// later reveals a different list the discrepancy must flag them even
	// before the deck replay is consulted.
	g, _, err := tb.views[0].DrawCard(5, tb.secretsAt(5, 0))
	require.NoError(t, err)

	revealed := tb.revealedAll()
	forged := append([]mpcrypto.Secret(nil), revealed[tb.ids[1]]...)
	forged[5] = testSecret(t, "forged-reveal")
	revealed[tb.ids[1]] = forged

	unfair, err := g.VerifyDeckSequence(revealed)
	require.NoError(t, err)
	require.Contains(t, unfair, tb.ids[1])
	require.NotContains(t, unfair, tb.ids[0])
}

func fingerprintsOf(secrets []mpcrypto.Secret) [][]byte {
	out := make([][]byte, len(secrets))
	for i, s := range secrets {
		out[i] = s.Fingerprint()
	}
	return out
}
