package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/sattegames/satta-services/internal/gamesvc/engine"
)

const codeRetries = 5

// RoomService is the room registry and the single owner of live table
// state: creation and lookup by code, membership with capacity and
// entry-fee checks, and the turn coordinator operations. All mutations are
// serialized under one lock, so every operation applies fully or rejects
// fully. Room and player rows are the durable record; hands and turn state
// live only in memory.
type RoomService struct {
	mu      sync.Mutex
	tables  map[string]*engine.Table
	roomIDs map[string]int64 // room code -> rooms.id

	wallet  Wallet
	rooms   RoomStore
	players RoomPlayerStore
	archive Archiver // optional
}

func NewRoomService(wallet Wallet, rooms RoomStore, players RoomPlayerStore, archive Archiver) *RoomService {
	return &RoomService{
		tables:  make(map[string]*engine.Table),
		roomIDs: make(map[string]int64),
		wallet:  wallet,
		rooms:   rooms,
		players: players,
		archive: archive,
	}
}

func randomCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// CreateRoom opens a waiting room, seats the creator and debits the entry
// fee. The 6-digit code is retried on collision.
func (s *RoomService) CreateRoom(ctx context.Context, creatorID int64, creatorName string, entryFee int64) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryFee < 0 {
		return engine.Snapshot{}, engine.ErrInvalidStake
	}
	balance, err := s.wallet.GetBalance(ctx, creatorID)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("wallet balance check: %w", err)
	}
	if balance.IntPart() < entryFee {
		return engine.Snapshot{}, engine.ErrInvalidStake
	}

	var code string
	var roomID int64
	for i := 0; ; i++ {
		code = randomCode()
		if _, taken := s.tables[code]; taken {
			continue
		}
		room, err := s.rooms.CreateRoom(ctx, code, creatorID, entryFee)
		if err == nil {
			roomID = room.ID
			break
		}
		if i >= codeRetries {
			return engine.Snapshot{}, fmt.Errorf("create room: %w", err)
		}
	}

	if _, err := s.players.CreateRoomPlayerIfWaiting(ctx, roomID, creatorID, creatorName, entryFee); err != nil {
		return engine.Snapshot{}, fmt.Errorf("seat creator: %w", err)
	}
	if err := s.wallet.Debit(ctx, creatorID, entryFee, "room:"+code); err != nil {
		return engine.Snapshot{}, fmt.Errorf("debit entry fee: %w", err)
	}

	table := engine.NewTable(code, creatorID, creatorName, entryFee)
	s.tables[code] = table
	s.roomIDs[code] = roomID

	log.Infof("room %s created by user %d, entry fee %d", code, creatorID, entryFee)
	return table.Snapshot(), nil
}

// JoinRoom seats a player in a waiting room and debits the stake. The
// stake must match the room's entry fee.
func (s *RoomService) JoinRoom(ctx context.Context, code string, userID int64, username string, stake int64) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[code]
	if !ok {
		return engine.Snapshot{}, ErrRoomNotFound
	}
	if err := table.CanJoin(userID); err != nil {
		return engine.Snapshot{}, err
	}
	if stake != table.EntryFee {
		return engine.Snapshot{}, engine.ErrInvalidStake
	}

	balance, err := s.wallet.GetBalance(ctx, userID)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("wallet balance check: %w", err)
	}
	if balance.IntPart() < stake {
		return engine.Snapshot{}, ErrInsufficientFunds
	}

	if _, err := s.players.CreateRoomPlayerIfWaiting(ctx, s.roomIDs[code], userID, username, stake); err != nil {
		return engine.Snapshot{}, fmt.Errorf("seat player: %w", err)
	}
	if err := s.wallet.Debit(ctx, userID, stake, "room:"+code); err != nil {
		return engine.Snapshot{}, fmt.Errorf("debit entry fee: %w", err)
	}

	if err := table.Join(userID, username, stake); err != nil {
		// CanJoin passed under the same lock, so this cannot fire.
		return engine.Snapshot{}, err
	}

	log.Infof("user %d joined room %s", userID, code)
	return table.Snapshot(), nil
}

// StartGame moves a waiting room to dealing. Creator only, minimum three
// players.
func (s *RoomService) StartGame(ctx context.Context, code string, requesterID int64) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[code]
	if !ok {
		return engine.Snapshot{}, ErrRoomNotFound
	}
	if err := table.Start(requesterID); err != nil {
		return engine.Snapshot{}, err
	}

	s.persistStatus(ctx, code, "dealing")
	log.Infof("room %s started with %d players", code, len(table.Seats))
	return table.Snapshot(), nil
}

// DealCards shuffles and distributes the deck, opening play.
func (s *RoomService) DealCards(ctx context.Context, code string, requesterID int64) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[code]
	if !ok {
		return engine.Snapshot{}, ErrRoomNotFound
	}
	if err := table.Deal(requesterID); err != nil {
		return engine.Snapshot{}, err
	}

	s.persistStatus(ctx, code, "playing")
	log.Infof("room %s dealt, first turn user %d", code, table.CurrentTurnID())
	return table.Snapshot(), nil
}

// PlayCard applies one play for the turn holder. When the play exhausts
// the deck the game is settled: scores are computed, payouts credited, the
// room marked finished and archived. The returned scores map is non-nil
// only on the finishing play.
func (s *RoomService) PlayCard(ctx context.Context, code string, userID int64, cardIndex int) (engine.Snapshot, map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[code]
	if !ok {
		return engine.Snapshot{}, nil, ErrRoomNotFound
	}
	if err := table.Play(userID, cardIndex); err != nil {
		return engine.Snapshot{}, nil, err
	}

	if table.State != engine.StateFinished {
		return table.Snapshot(), nil, nil
	}

	scores, err := table.ComputeScores()
	if err != nil {
		return engine.Snapshot{}, nil, fmt.Errorf("settle room %s: %w", code, err)
	}
	s.settle(ctx, code, table, scores)
	return table.Snapshot(), scores, nil
}

// TurnTimeout forces the turn forward when the per-turn clock expires, so
// a stalled player cannot wedge the game.
func (s *RoomService) TurnTimeout(code string) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[code]
	if !ok {
		return engine.Snapshot{}, ErrRoomNotFound
	}
	if err := table.TimeoutAdvance(); err != nil {
		return engine.Snapshot{}, err
	}

	log.Infof("room %s turn timed out, advanced to user %d", code, table.CurrentTurnID())
	return table.Snapshot(), nil
}

// Snapshot returns the current full state of a room.
func (s *RoomService) Snapshot(code string) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[code]
	if !ok {
		return engine.Snapshot{}, ErrRoomNotFound
	}
	return table.Snapshot(), nil
}

// ApplySnapshot replaces whatever the registry holds for the room with the
// received state, wholesale. Last writer wins; there is no merging. A
// snapshot that fails to restore is rejected so the caller can drop it.
func (s *RoomService) ApplySnapshot(snap engine.Snapshot) error {
	table, err := engine.Restore(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[snap.Code] = table
	return nil
}

// persistStatus is best-effort: the in-memory transition already committed
// and a failed row update must not undo it.
func (s *RoomService) persistStatus(ctx context.Context, code, status string) {
	roomID, ok := s.roomIDs[code]
	if !ok {
		return
	}
	if err := s.rooms.UpdateRoomStatus(ctx, roomID, status); err != nil {
		log.Errorf("persist room %s status %s: %v", code, status, err)
	}
}

// settle writes scores, credits payouts and archives the finished room.
// Failures are logged, not propagated: the game outcome is already final.
func (s *RoomService) settle(ctx context.Context, code string, table *engine.Table, scores map[int64]int64) {
	roomID := s.roomIDs[code]
	for userID, score := range scores {
		if err := s.players.UpdateScore(ctx, roomID, userID, score); err != nil {
			log.Errorf("record score for user %d in room %s: %v", userID, code, err)
		}
		if score > 0 {
			if err := s.wallet.Credit(ctx, userID, score, "payout:"+code); err != nil {
				log.Errorf("credit payout for user %d in room %s: %v", userID, code, err)
			}
		}
	}

	s.persistStatus(ctx, code, "finished")

	if s.archive != nil {
		if err := s.archive.SaveFinishedRoom(ctx, table.Snapshot(), scores); err != nil {
			log.Errorf("archive finished room %s: %v", code, err)
		}
	}
	log.Infof("room %s finished, pot settled across %d players", code, len(scores))
}
