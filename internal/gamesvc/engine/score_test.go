package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedTable(t *testing.T, players int) *Table {
	t.Helper()

	table := newPlayingTable(t, players)
	for table.State == StatePlaying {
		require.NoError(t, table.Play(table.CurrentTurnID(), 0))
	}
	require.Equal(t, StateFinished, table.State)
	return table
}

func TestComputeScoresRequiresFinished(t *testing.T) {
	table := newPlayingTable(t, 3)
	_, err := table.ComputeScores()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestScoresSumToPot(t *testing.T) {
	for players := MinSeats; players <= MaxSeats; players++ {
		table := finishedTable(t, players)

		scores, err := table.ComputeScores()
		require.NoError(t, err)
		require.Len(t, scores, players)

		pot := int64(players) * 100
		var sum int64
		for userID, score := range scores {
			assert.GreaterOrEqual(t, score, int64(0), "user %d", userID)
			sum += score
		}
		assert.Equal(t, pot, sum, "%d players", players)
	}
}

func TestScoresDeterministicFromSnapshot(t *testing.T) {
	table := finishedTable(t, 4)

	scores, err := table.ComputeScores()
	require.NoError(t, err)

	// an observer restoring the broadcast snapshot settles identically
	restored, err := Restore(table.Snapshot())
	require.NoError(t, err)

	again, err := restored.ComputeScores()
	require.NoError(t, err)
	assert.Equal(t, scores, again)
}

func TestScoresRecordedOnSeats(t *testing.T) {
	table := finishedTable(t, 3)

	scores, err := table.ComputeScores()
	require.NoError(t, err)

	for _, s := range table.Seats {
		assert.Equal(t, scores[s.UserID], s.Score)
	}
}

func TestScoresFollowCardPoints(t *testing.T) {
	// hand-built history: one player takes every card, the pot follows
	table := &Table{
		Code:      "654321",
		CreatorID: 1,
		EntryFee:  100,
		State:     StateFinished,
		Turn:      -1,
		Seats: []*Seat{
			{UserID: 1, Name: "a", Stake: 100},
			{UserID: 2, Name: "b", Stake: 100},
			{UserID: 3, Name: "c", Stake: 100},
		},
	}
	for _, c := range NewDeck() {
		table.Played = append(table.Played, Play{UserID: 1, Card: c})
	}

	scores, err := table.ComputeScores()
	require.NoError(t, err)
	assert.Equal(t, int64(300), scores[1])
	assert.Equal(t, int64(0), scores[2])
	assert.Equal(t, int64(0), scores[3])
}
