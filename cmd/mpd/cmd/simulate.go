package cmd

import (
	"crypto/rand"
	"fmt"

	"cosmossdk.io/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MichaelMaurer/mental-poker/internal/deck"
	"github.com/MichaelMaurer/mental-poker/internal/game"
	"github.com/MichaelMaurer/mental-poker/internal/holdem"
	"github.com/MichaelMaurer/mental-poker/internal/mpcrypto"
)

func newSimulateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one honest hand with in-process players",
		Long: "Runs the full protocol locally: key generation, combined deck setup, " +
			"cascaded shuffle and lock, hole card draws, community card opens, " +
			"fairness verification and showdown.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(
				newLogger(v),
				v.GetInt("players"),
				v.GetInt("hole-cards"),
				v.GetInt("community-cards"),
				v.GetString("game-type"),
			)
		},
	}
	cmd.Flags().Int("players", 2, "number of players")
	cmd.Flags().Int("hole-cards", 2, "hole cards dealt to each player")
	cmd.Flags().Int("community-cards", 5, "community cards opened")
	cmd.Flags().String("game-type", holdem.GameTypeTexas, "showdown game type")
	for _, name := range []string{"players", "hole-cards", "community-cards", "game-type"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}

// tableKeys is the simulator's omniscient view of every player's generated
// keys. In a real deployment each player holds only their own.
type tableKeys struct {
	ids     []string
	points  [][]mpcrypto.Point
	secrets [][]mpcrypto.Secret
}

func runSimulate(logger log.Logger, numPlayers, holeCards, communityCards int, gameType string) error {
	if numPlayers < 2 {
		return fmt.Errorf("need at least 2 players, got %d", numPlayers)
	}
	if holeCards < 1 || communityCards < 0 {
		return fmt.Errorf("invalid deal shape: %d hole, %d community", holeCards, communityCards)
	}
	if numPlayers*holeCards+communityCards > deck.Size {
		return fmt.Errorf("deal needs %d cards, deck has %d", numPlayers*holeCards+communityCards, deck.Size)
	}

	gameID := uuid.NewString()
	logger = logger.With("game", gameID)

	keys := tableKeys{
		ids:     make([]string, numPlayers),
		points:  make([][]mpcrypto.Point, numPlayers),
		secrets: make([][]mpcrypto.Secret, numPlayers),
	}
	for i := 0; i < numPlayers; i++ {
		keys.ids[i] = fmt.Sprintf("player-%d", i+1)
		pts, secs, err := game.GenerateKeys(rand.Reader)
		if err != nil {
			return fmt.Errorf("generate keys for %s: %w", keys.ids[i], err)
		}
		keys.points[i] = pts
		keys.secrets[i] = secs
	}

	// One Game value per participant: each player's view of the table.
	views := make([]game.Game, numPlayers)
	for i := 0; i < numPlayers; i++ {
		players := make([]game.Player, numPlayers)
		for j := 0; j < numPlayers; j++ {
			if j == i {
				players[j] = game.Player{
					ID:      keys.ids[j],
					IsSelf:  true,
					Points:  keys.points[j],
					Secrets: keys.secrets[j],
				}
			} else {
				players[j] = game.NewOpponentPlayer(keys.ids[j], keys.points[j])
			}
			players[j].Commitments = fingerprints(keys.secrets[j])
		}
		g, err := game.New(gameID, players)
		if err != nil {
			return fmt.Errorf("set up view for %s: %w", keys.ids[i], err)
		}
		views[i] = g
	}
	logger.Info("table set up", "players", numPlayers)

	// Cascaded shuffle, then cascaded lock, in fixed turn order. The acting
	// player transforms; the rest append the broadcast deck to their ledger.
	for i := 0; i < numPlayers; i++ {
		g, d, err := views[i].ShuffleTurn()
		if err != nil {
			return fmt.Errorf("shuffle turn %s: %w", keys.ids[i], err)
		}
		views[i] = g
		broadcastDeck(views, d, i)
	}
	logger.Info("shuffle phase done")
	for i := 0; i < numPlayers; i++ {
		g, d, err := views[i].LockTurn()
		if err != nil {
			return fmt.Errorf("lock turn %s: %w", keys.ids[i], err)
		}
		views[i] = g
		broadcastDeck(views, d, i)
	}
	logger.Info("lock phase done")

	// Hole cards: the drawer collects everyone else's lock key for the
	// position; the others only learn that the position is gone.
	for h := 0; h < holeCards; h++ {
		for i := 0; i < numPlayers; i++ {
			idx := views[i].PickableCardIndexes()[0]
			reveal := keys.secretsAt(idx, i)
			g, card, err := views[i].DrawCard(idx, reveal)
			if err != nil {
				return fmt.Errorf("draw for %s at %d: %w", keys.ids[i], idx, err)
			}
			views[i] = g
			logger.Info("hole card drawn", "player", keys.ids[i], "index", idx, "card", card.String())
			for j := 0; j < numPlayers; j++ {
				if j == i {
					continue
				}
				g, err := views[j].NoteCardDrawn(keys.ids[i], idx, reveal)
				if err != nil {
					return fmt.Errorf("note draw on view %s: %w", keys.ids[j], err)
				}
				views[j] = g
			}
		}
	}

	// Community cards are opened on every view with all other players'
	// secrets for the position.
	for c := 0; c < communityCards; c++ {
		idx := views[0].PickableCardIndexes()[0]
		for i := 0; i < numPlayers; i++ {
			g, card, err := views[i].OpenCard(idx, keys.secretsAt(idx, i))
			if err != nil {
				return fmt.Errorf("open on view %s at %d: %w", keys.ids[i], idx, err)
			}
			views[i] = g
			if i == 0 {
				logger.Info("community card opened", "index", idx, "card", card.String())
			}
		}
	}

	// Post-game: everyone reveals all secrets, any view can audit the
	// recorded sequence.
	revealed := map[string][]mpcrypto.Secret{}
	for i := 0; i < numPlayers; i++ {
		revealed[keys.ids[i]] = keys.secrets[i]
	}
	unfair, err := views[0].VerifyDeckSequence(revealed)
	if err != nil {
		return fmt.Errorf("verify deck sequence: %w", err)
	}
	if len(unfair) > 0 {
		logger.Error("verification flagged players", "ids", unfair)
		return fmt.Errorf("unfair players detected: %v", unfair)
	}
	logger.Info("deck sequence verified fair")

	// Showdown on view 0 after everyone reveals their hole cards.
	table := views[0]
	for i := 1; i < numPlayers; i++ {
		table, err = table.RevealHand(keys.ids[i], views[i].Self().Hand)
		if err != nil {
			return fmt.Errorf("reveal hand of %s: %w", keys.ids[i], err)
		}
	}
	table, err = table.EvaluateHands(gameType, holdem.Evaluator{})
	if err != nil {
		return fmt.Errorf("evaluate hands: %w", err)
	}
	logger.Info("showdown complete", "winners", table.Winners())
	return nil
}

func broadcastDeck(views []game.Game, d deck.Deck, actor int) {
	for j := range views {
		if j != actor {
			views[j] = views[j].AddDeckToSequence(d)
		}
	}
}

// secretsAt returns every player's lock key for a deck position except the
// excluded player's own.
func (k tableKeys) secretsAt(index, exclude int) map[string]mpcrypto.Secret {
	out := make(map[string]mpcrypto.Secret, len(k.ids)-1)
	for j := range k.ids {
		if j == exclude {
			continue
		}
		out[k.ids[j]] = k.secrets[j][index]
	}
	return out
}

func fingerprints(secrets []mpcrypto.Secret) [][]byte {
	out := make([][]byte, len(secrets))
	for i, s := range secrets {
		out[i] = s.Fingerprint()
	}
	return out
}
