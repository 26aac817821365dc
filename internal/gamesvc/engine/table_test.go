package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayingTable(t *testing.T, players int) *Table {
	t.Helper()

	table := NewTable("123456", 1, "creator", 100)
	for i := 2; i <= players; i++ {
		require.NoError(t, table.Join(int64(i), "player", 100))
	}
	require.NoError(t, table.Start(1))
	require.NoError(t, table.Deal(1))
	return table
}

func TestJoinChecks(t *testing.T) {
	table := NewTable("123456", 1, "creator", 100)

	assert.ErrorIs(t, table.Join(1, "creator", 100), ErrAlreadyJoined)

	for i := 2; i <= MaxSeats; i++ {
		require.NoError(t, table.Join(int64(i), "player", 100))
	}
	assert.ErrorIs(t, table.Join(99, "late", 100), ErrRoomFull)

	require.NoError(t, table.Start(1))
	assert.ErrorIs(t, table.Join(100, "later", 100), ErrRoomNotJoinable)
}

func TestStartChecks(t *testing.T) {
	table := NewTable("123456", 1, "creator", 100)

	require.NoError(t, table.Join(2, "p2", 100))
	assert.ErrorIs(t, table.Start(1), ErrNotEnoughPlayers)

	require.NoError(t, table.Join(3, "p3", 100))
	assert.ErrorIs(t, table.Start(2), ErrNotCreator)

	require.NoError(t, table.Start(1))
	assert.Equal(t, StateDealing, table.State)

	assert.ErrorIs(t, table.Start(1), ErrWrongState)
}

func TestDealDistributesWholeDeck(t *testing.T) {
	for players := MinSeats; players <= MaxSeats; players++ {
		table := newPlayingTable(t, players)

		total := 0
		seen := map[Card]int{}
		for _, s := range table.Seats {
			total += len(s.Hand)
			for _, c := range s.Hand {
				seen[c]++
			}
		}

		assert.Equal(t, DeckSize, total, "%d players", players)
		assert.Len(t, seen, DeckSize, "%d players: every card exactly once", players)

		// round-robin fairness: hand sizes differ by at most one
		min, max := DeckSize, 0
		for _, s := range table.Seats {
			if len(s.Hand) < min {
				min = len(s.Hand)
			}
			if len(s.Hand) > max {
				max = len(s.Hand)
			}
		}
		assert.LessOrEqual(t, max-min, 1, "%d players", players)
	}
}

func TestDealThreePlayersHandSizes(t *testing.T) {
	table := newPlayingTable(t, 3)

	var sizes []int
	for _, s := range table.Seats {
		sizes = append(sizes, len(s.Hand))
	}
	assert.Equal(t, []int{18, 17, 17}, sizes)
	assert.Equal(t, StatePlaying, table.State)
	assert.Equal(t, int64(1), table.CurrentTurnID())
}

func TestDealRequiresDealingState(t *testing.T) {
	table := NewTable("123456", 1, "creator", 100)
	require.NoError(t, table.Join(2, "p2", 100))
	require.NoError(t, table.Join(3, "p3", 100))

	assert.ErrorIs(t, table.Deal(1), ErrWrongState)

	require.NoError(t, table.Start(1))
	assert.ErrorIs(t, table.Deal(2), ErrNotCreator)
	require.NoError(t, table.Deal(1))
}

func TestPlayRejectsOutOfTurn(t *testing.T) {
	table := newPlayingTable(t, 3)

	before := table.Snapshot()
	err := table.Play(2, 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, before, table.Snapshot(), "rejected play must not mutate state")
}

func TestPlayRejectsBadCardIndex(t *testing.T) {
	table := newPlayingTable(t, 3)

	before := table.Snapshot()
	assert.ErrorIs(t, table.Play(1, -1), ErrInvalidCardIndex)
	assert.ErrorIs(t, table.Play(1, len(table.Seats[0].Hand)), ErrInvalidCardIndex)
	assert.Equal(t, before, table.Snapshot())
}

func TestPlayAdvancesRotation(t *testing.T) {
	table := newPlayingTable(t, 3)

	require.NoError(t, table.Play(1, 0))
	assert.Equal(t, int64(2), table.CurrentTurnID())
	require.NoError(t, table.Play(2, 0))
	assert.Equal(t, int64(3), table.CurrentTurnID())
	require.NoError(t, table.Play(3, 0))
	assert.Equal(t, int64(1), table.CurrentTurnID())

	assert.Len(t, table.Played, 3)
}

func TestFullGameFinishes(t *testing.T) {
	table := newPlayingTable(t, 4)

	var lastTurn int64
	for table.State == StatePlaying {
		current := table.CurrentTurnID()
		require.NotZero(t, current, "playing table must always have a turn holder")

		// the turn holder may never be re-selected while others hold cards
		holders := 0
		for _, s := range table.Seats {
			if len(s.Hand) > 0 {
				holders++
			}
		}
		if holders > 1 {
			require.NotEqual(t, lastTurn, current)
		}
		lastTurn = current

		require.NoError(t, table.Play(current, 0))
	}

	assert.Equal(t, StateFinished, table.State)
	assert.Len(t, table.Played, DeckSize)
	for _, s := range table.Seats {
		assert.Empty(t, s.Hand)
	}

	// multiset of played cards is the full deck
	seen := map[Card]int{}
	for _, p := range table.Played {
		seen[p.Card]++
	}
	assert.Len(t, seen, DeckSize)

	assert.ErrorIs(t, table.Play(1, 0), ErrWrongState)
}

func TestRotationSkipsEmptyHands(t *testing.T) {
	table := newPlayingTable(t, 3)

	// exhaust seat 2's hand via forced turns: play everything seat 2 has
	for len(table.Seats[1].Hand) > 0 {
		current := table.CurrentTurnID()
		require.NoError(t, table.Play(current, 0))
	}

	// from now on seat 2 must never hold the turn
	for table.State == StatePlaying {
		current := table.CurrentTurnID()
		assert.NotEqual(t, int64(2), current)
		require.NoError(t, table.Play(current, 0))
	}
}

func TestTimeoutAdvancesWithoutPlay(t *testing.T) {
	table := newPlayingTable(t, 3)

	handSizeBefore := len(table.Seats[0].Hand)
	playedBefore := len(table.Played)

	require.NoError(t, table.TimeoutAdvance())

	assert.Equal(t, int64(2), table.CurrentTurnID())
	assert.Len(t, table.Seats[0].Hand, handSizeBefore, "timeout must not play a card")
	assert.Len(t, table.Played, playedBefore)
}

func TestTimeoutRequiresPlayingState(t *testing.T) {
	table := NewTable("123456", 1, "creator", 100)
	assert.ErrorIs(t, table.TimeoutAdvance(), ErrWrongState)
}
