package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sattegames/satta-services/internal/gamesvc/engine"
	"github.com/sattegames/satta-services/internal/gamesvc/models"
)

type fakeWallet struct {
	balances map[int64]int64
}

func (w *fakeWallet) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return decimal.NewFromInt(w.balances[userID]), nil
}

func (w *fakeWallet) Debit(ctx context.Context, userID int64, amount int64, tref string) error {
	w.balances[userID] -= amount
	return nil
}

func (w *fakeWallet) Credit(ctx context.Context, userID int64, amount int64, tref string) error {
	w.balances[userID] += amount
	return nil
}

type fakeRoomStore struct {
	nextID int64
	rooms  map[string]*models.Room
}

func (s *fakeRoomStore) CreateRoom(ctx context.Context, code string, creatorID int64, entryFee int64) (*models.Room, error) {
	if _, ok := s.rooms[code]; ok {
		return nil, fmt.Errorf("room code already in use")
	}
	s.nextID++
	room := &models.Room{ID: s.nextID, Code: code, CreatorID: creatorID, EntryFee: entryFee, Status: "waiting"}
	s.rooms[code] = room
	return room, nil
}

func (s *fakeRoomStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	return s.rooms[code], nil
}

func (s *fakeRoomStore) UpdateRoomStatus(ctx context.Context, roomID int64, status string) error {
	for _, r := range s.rooms {
		if r.ID == roomID {
			r.Status = status
		}
	}
	return nil
}

type fakePlayerStore struct {
	players []*models.RoomPlayer
	scores  map[int64]int64
}

func (s *fakePlayerStore) CreateRoomPlayerIfWaiting(ctx context.Context, roomID int64, userID int64, username string, stake int64) (*models.RoomPlayer, error) {
	rp := &models.RoomPlayer{RoomID: roomID, UserID: userID, Username: username, Stake: stake}
	s.players = append(s.players, rp)
	return rp, nil
}

func (s *fakePlayerStore) GetPlayersByRoomID(ctx context.Context, roomID int64) ([]*models.RoomPlayer, error) {
	return s.players, nil
}

func (s *fakePlayerStore) UpdateScore(ctx context.Context, roomID int64, userID int64, score int64) error {
	if s.scores == nil {
		s.scores = make(map[int64]int64)
	}
	s.scores[userID] = score
	return nil
}

type fakeArchive struct {
	saved []engine.Snapshot
}

func (a *fakeArchive) SaveFinishedRoom(ctx context.Context, snap engine.Snapshot, scores map[int64]int64) error {
	a.saved = append(a.saved, snap)
	return nil
}

type fixtures struct {
	wallet  *fakeWallet
	rooms   *fakeRoomStore
	players *fakePlayerStore
	archive *fakeArchive
	svc     *RoomService
}

func newFixtures(balances map[int64]int64) *fixtures {
	f := &fixtures{
		wallet:  &fakeWallet{balances: balances},
		rooms:   &fakeRoomStore{rooms: map[string]*models.Room{}},
		players: &fakePlayerStore{},
		archive: &fakeArchive{},
	}
	f.svc = NewRoomService(f.wallet, f.rooms, f.players, f.archive)
	return f
}

func TestCreateJoinStartScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(map[int64]int64{1: 500, 2: 300, 3: 150})

	snap, err := f.svc.CreateRoom(ctx, 1, "alice", 100)
	require.NoError(t, err)
	require.Len(t, snap.Code, 6)
	assert.Equal(t, int64(400), f.wallet.balances[1])

	_, err = f.svc.JoinRoom(ctx, snap.Code, 2, "bob", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(200), f.wallet.balances[2])

	_, err = f.svc.StartGame(ctx, snap.Code, 1)
	assert.ErrorIs(t, err, engine.ErrNotEnoughPlayers)

	_, err = f.svc.JoinRoom(ctx, snap.Code, 3, "carol", 100)
	require.NoError(t, err)

	started, err := f.svc.StartGame(ctx, snap.Code, 1)
	require.NoError(t, err)
	assert.Equal(t, "dealing", started.State)
	assert.Equal(t, "dealing", f.rooms.rooms[snap.Code].Status)
}

func TestCreateRoomRejectsBadStake(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(map[int64]int64{1: 500})

	_, err := f.svc.CreateRoom(ctx, 1, "alice", -5)
	assert.ErrorIs(t, err, engine.ErrInvalidStake)

	_, err = f.svc.CreateRoom(ctx, 1, "alice", 600)
	assert.ErrorIs(t, err, engine.ErrInvalidStake)

	assert.Equal(t, int64(500), f.wallet.balances[1], "rejected create must not debit")
}

func TestJoinRoomErrorTaxonomy(t *testing.T) {
	ctx := context.Background()
	balances := map[int64]int64{1: 500}
	for i := int64(2); i <= 12; i++ {
		balances[i] = 500
	}
	balances[20] = 40 // short on coins
	f := newFixtures(balances)

	snap, err := f.svc.CreateRoom(ctx, 1, "alice", 100)
	require.NoError(t, err)
	code := snap.Code

	_, err = f.svc.JoinRoom(ctx, "000000", 2, "bob", 100)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = f.svc.JoinRoom(ctx, code, 2, "bob", 50)
	assert.ErrorIs(t, err, engine.ErrInvalidStake)

	_, err = f.svc.JoinRoom(ctx, code, 20, "poor", 100)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(40), f.wallet.balances[20], "rejected join must not debit")

	_, err = f.svc.JoinRoom(ctx, code, 1, "alice", 100)
	assert.ErrorIs(t, err, engine.ErrAlreadyJoined)

	for i := int64(2); i <= 8; i++ {
		_, err = f.svc.JoinRoom(ctx, code, i, "player", 100)
		require.NoError(t, err)
	}
	_, err = f.svc.JoinRoom(ctx, code, 9, "late", 100)
	assert.ErrorIs(t, err, engine.ErrRoomFull)

	_, err = f.svc.StartGame(ctx, code, 1)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, code, 10, "later", 100)
	assert.ErrorIs(t, err, engine.ErrRoomNotJoinable)
}

func TestFullGameSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(map[int64]int64{1: 500, 2: 500, 3: 500})

	snap, err := f.svc.CreateRoom(ctx, 1, "alice", 100)
	require.NoError(t, err)
	code := snap.Code

	_, err = f.svc.JoinRoom(ctx, code, 2, "bob", 100)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, code, 3, "carol", 100)
	require.NoError(t, err)
	_, err = f.svc.StartGame(ctx, code, 1)
	require.NoError(t, err)

	snap, err = f.svc.DealCards(ctx, code, 1)
	require.NoError(t, err)
	assert.Equal(t, "playing", snap.State)
	assert.Equal(t, "playing", f.rooms.rooms[code].Status)

	var scores map[int64]int64
	for snap.State == "playing" {
		snap, scores, err = f.svc.PlayCard(ctx, code, snap.CurrentTurn, 0)
		require.NoError(t, err)
	}

	require.NotNil(t, scores, "finishing play must return settled scores")
	assert.Equal(t, "finished", snap.State)
	assert.Equal(t, "finished", f.rooms.rooms[code].Status)
	require.Len(t, f.archive.saved, 1)
	assert.Equal(t, code, f.archive.saved[0].Code)

	// debits and payouts balance: total coins are conserved
	var total int64
	for _, b := range f.wallet.balances {
		total += b
	}
	assert.Equal(t, int64(1500), total)

	for userID, score := range scores {
		assert.Equal(t, score, f.players.scores[userID])
	}
}

func TestTurnTimeoutAdvances(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(map[int64]int64{1: 500, 2: 500, 3: 500})

	snap, err := f.svc.CreateRoom(ctx, 1, "alice", 100)
	require.NoError(t, err)
	code := snap.Code

	_, err = f.svc.JoinRoom(ctx, code, 2, "bob", 100)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, code, 3, "carol", 100)
	require.NoError(t, err)
	_, err = f.svc.StartGame(ctx, code, 1)
	require.NoError(t, err)
	snap, err = f.svc.DealCards(ctx, code, 1)
	require.NoError(t, err)

	first := snap.CurrentTurn
	snap, err = f.svc.TurnTimeout(code)
	require.NoError(t, err)
	assert.NotEqual(t, first, snap.CurrentTurn)

	_, err = f.svc.TurnTimeout("000000")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestApplySnapshotLastWriterWins(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(map[int64]int64{1: 500, 2: 500, 3: 500})

	snap, err := f.svc.CreateRoom(ctx, 1, "alice", 100)
	require.NoError(t, err)
	code := snap.Code

	// a peer's view of the same room, further along
	peer := engine.NewTable(code, 1, "alice", 100)
	require.NoError(t, peer.Join(2, "bob", 100))
	require.NoError(t, peer.Join(3, "carol", 100))
	require.NoError(t, peer.Start(1))

	require.NoError(t, f.svc.ApplySnapshot(peer.Snapshot()))

	got, err := f.svc.Snapshot(code)
	require.NoError(t, err)
	assert.Equal(t, "dealing", got.State)
	assert.Len(t, got.Seats, 3, "replacement is wholesale, not a merge")

	// malformed snapshots are rejected and leave state alone
	bad := peer.Snapshot()
	bad.State = "exploded"
	assert.Error(t, f.svc.ApplySnapshot(bad))

	got, err = f.svc.Snapshot(code)
	require.NoError(t, err)
	assert.Equal(t, "dealing", got.State)
}
