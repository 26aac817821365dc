package engine

import "fmt"

// SeatSnapshot mirrors the wire shape of one seated player.
type SeatSnapshot struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"username"`
	Stake  int64  `json:"stake"`
	Hand   []Card `json:"cards"`
	Score  int64  `json:"score"`
}

// Snapshot is the full broadcastable state of a table. Receivers apply it
// by wholesale replacement, never by merging: the last snapshot received
// wins.
type Snapshot struct {
	Code        string         `json:"code"`
	CreatorID   int64          `json:"creator_id"`
	EntryFee    int64          `json:"entry_fee"`
	State       string         `json:"state"`
	CurrentTurn int64          `json:"current_turn"`
	Seats       []SeatSnapshot `json:"players"`
	Played      []Play         `json:"played_cards"`
}

// Snapshot captures the complete table state for broadcast.
func (t *Table) Snapshot() Snapshot {
	seats := make([]SeatSnapshot, len(t.Seats))
	for i, s := range t.Seats {
		hand := make([]Card, len(s.Hand))
		copy(hand, s.Hand)
		seats[i] = SeatSnapshot{
			UserID: s.UserID,
			Name:   s.Name,
			Stake:  s.Stake,
			Hand:   hand,
			Score:  s.Score,
		}
	}

	played := make([]Play, len(t.Played))
	copy(played, t.Played)

	return Snapshot{
		Code:        t.Code,
		CreatorID:   t.CreatorID,
		EntryFee:    t.EntryFee,
		State:       t.State.String(),
		CurrentTurn: t.CurrentTurnID(),
		Seats:       seats,
		Played:      played,
	}
}

func parseState(s string) (State, error) {
	switch s {
	case "waiting":
		return StateWaiting, nil
	case "dealing":
		return StateDealing, nil
	case "playing":
		return StatePlaying, nil
	case "finished":
		return StateFinished, nil
	default:
		return 0, fmt.Errorf("unknown room state %q", s)
	}
}

// Restore rebuilds a table from a snapshot, replacing whatever the caller
// held before. Malformed snapshots are rejected so a bad broadcast can be
// dropped instead of corrupting local state.
func Restore(snap Snapshot) (*Table, error) {
	if snap.Code == "" {
		return nil, fmt.Errorf("snapshot missing room code")
	}
	state, err := parseState(snap.State)
	if err != nil {
		return nil, err
	}
	if len(snap.Seats) == 0 {
		return nil, fmt.Errorf("snapshot has no players")
	}

	t := &Table{
		Code:      snap.Code,
		CreatorID: snap.CreatorID,
		EntryFee:  snap.EntryFee,
		State:     state,
		Turn:      -1,
		Played:    append([]Play(nil), snap.Played...),
	}
	for _, s := range snap.Seats {
		t.Seats = append(t.Seats, &Seat{
			UserID: s.UserID,
			Name:   s.Name,
			Stake:  s.Stake,
			Hand:   append([]Card(nil), s.Hand...),
			Score:  s.Score,
		})
	}
	for i, s := range t.Seats {
		if s.UserID == snap.CurrentTurn {
			t.Turn = i
			break
		}
	}
	return t, nil
}
