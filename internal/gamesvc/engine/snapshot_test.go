package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	table := newPlayingTable(t, 3)
	require.NoError(t, table.Play(1, 0))

	restored, err := Restore(table.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, table.Snapshot(), restored.Snapshot())
	assert.Equal(t, table.CurrentTurnID(), restored.CurrentTurnID())

	// the restored table keeps playing where the original left off
	require.NoError(t, restored.Play(restored.CurrentTurnID(), 0))
}

func TestSnapshotIsDetachedCopy(t *testing.T) {
	table := newPlayingTable(t, 3)
	snap := table.Snapshot()

	require.NoError(t, table.Play(1, 0))

	// the earlier snapshot must not see the later play
	assert.Empty(t, snap.Played)
	assert.Equal(t, 18, len(snap.Seats[0].Hand))
}

func TestRestoreRejectsMalformed(t *testing.T) {
	good := newPlayingTable(t, 3).Snapshot()

	missingCode := good
	missingCode.Code = ""
	_, err := Restore(missingCode)
	assert.Error(t, err)

	badState := good
	badState.State = "exploded"
	_, err = Restore(badState)
	assert.Error(t, err)

	noPlayers := good
	noPlayers.Seats = nil
	_, err = Restore(noPlayers)
	assert.Error(t, err)
}
