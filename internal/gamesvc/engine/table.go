package engine

// State is the lifecycle phase of a table.
type State int

const (
	StateWaiting State = iota
	StateDealing
	StatePlaying
	StateFinished
)

const (
	MinSeats = 3
	MaxSeats = 8
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateDealing:
		return "dealing"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Seat is one player's room-scoped state. The hand is owned exclusively by
// that player while the game runs.
type Seat struct {
	UserID int64
	Name   string
	Stake  int64
	Hand   []Card
	Score  int64
}

// Play records a single card played, in order, with the seat that played it.
type Play struct {
	UserID int64 `json:"user_id"`
	Card   Card  `json:"card"`
}

// Table is the turn coordinator for one room: seats in fixed rotation
// order, whose turn it is, and the append-only played pile. All mutating
// calls happen on a single goroutine (the registry serializes them), so the
// table itself carries no lock. Every operation either fully applies or
// fully rejects.
type Table struct {
	Code      string
	CreatorID int64
	EntryFee  int64
	State     State
	Seats     []*Seat
	Turn      int // index into Seats, -1 when no seat holds the turn
	Played    []Play
}

// NewTable creates a waiting table with the creator in the first seat.
func NewTable(code string, creatorID int64, creatorName string, entryFee int64) *Table {
	return &Table{
		Code:      code,
		CreatorID: creatorID,
		EntryFee:  entryFee,
		State:     StateWaiting,
		Seats: []*Seat{
			{UserID: creatorID, Name: creatorName, Stake: entryFee},
		},
		Turn: -1,
	}
}

func (t *Table) seatOf(userID int64) (int, *Seat) {
	for i, s := range t.Seats {
		if s.UserID == userID {
			return i, s
		}
	}
	return -1, nil
}

// CurrentTurnID returns the user id of the seat holding the turn, zero when
// no turn is active.
func (t *Table) CurrentTurnID() int64 {
	if t.Turn < 0 || t.Turn >= len(t.Seats) {
		return 0
	}
	return t.Seats[t.Turn].UserID
}

// CanJoin reports whether a player could be seated right now, without
// mutating anything. Lets callers run side effects (debiting the stake)
// between validation and the actual Join.
func (t *Table) CanJoin(userID int64) error {
	if t.State != StateWaiting {
		return ErrRoomNotJoinable
	}
	if _, s := t.seatOf(userID); s != nil {
		return ErrAlreadyJoined
	}
	if len(t.Seats) >= MaxSeats {
		return ErrRoomFull
	}
	return nil
}

// Join seats a new player. The table must still be waiting and have room.
func (t *Table) Join(userID int64, name string, stake int64) error {
	if err := t.CanJoin(userID); err != nil {
		return err
	}
	t.Seats = append(t.Seats, &Seat{UserID: userID, Name: name, Stake: stake})
	return nil
}

// Start moves the table from waiting to dealing. Only the creator may start
// and at least MinSeats players must be seated.
func (t *Table) Start(requesterID int64) error {
	if t.State != StateWaiting {
		return ErrWrongState
	}
	if requesterID != t.CreatorID {
		return ErrNotCreator
	}
	if len(t.Seats) < MinSeats {
		return ErrNotEnoughPlayers
	}
	t.State = StateDealing
	return nil
}

// Deal shuffles a fresh deck and distributes the whole of it round-robin
// across the seats in rotation order, remainder included. The first seat
// takes the first turn.
func (t *Table) Deal(requesterID int64) error {
	if t.State != StateDealing {
		return ErrWrongState
	}
	if requesterID != t.CreatorID {
		return ErrNotCreator
	}

	deck := Shuffle(NewDeck())
	for _, s := range t.Seats {
		s.Hand = s.Hand[:0]
		s.Score = 0
	}
	for i, c := range deck {
		seat := t.Seats[i%len(t.Seats)]
		seat.Hand = append(seat.Hand, c)
	}

	t.Played = make([]Play, 0, DeckSize)
	t.Turn = 0
	t.State = StatePlaying
	return nil
}

// Play removes the card at cardIndex from the player's hand and appends it
// to the played pile, then advances the turn. When the pile reaches the
// full deck size the table is finished.
func (t *Table) Play(userID int64, cardIndex int) error {
	if t.State != StatePlaying {
		return ErrWrongState
	}
	if userID != t.CurrentTurnID() {
		return ErrNotYourTurn
	}

	seat := t.Seats[t.Turn]
	if cardIndex < 0 || cardIndex >= len(seat.Hand) {
		return ErrInvalidCardIndex
	}

	card := seat.Hand[cardIndex]
	seat.Hand = append(seat.Hand[:cardIndex], seat.Hand[cardIndex+1:]...)
	t.Played = append(t.Played, Play{UserID: userID, Card: card})

	if len(t.Played) == DeckSize {
		t.State = StateFinished
		t.Turn = -1
		return nil
	}

	t.advanceTurn()
	return nil
}

// TimeoutAdvance forces the turn to the next eligible seat without a play.
// Fired by the turn timer when the current player stalls; keeps the game
// live from any non-terminal playing state.
func (t *Table) TimeoutAdvance() error {
	if t.State != StatePlaying {
		return ErrWrongState
	}
	t.advanceTurn()
	return nil
}

// advanceTurn walks the rotation forward, wrapping, skipping seats with
// empty hands. The current seat is only re-selected when it is the sole
// seat left holding cards.
func (t *Table) advanceTurn() {
	n := len(t.Seats)
	for i := 1; i <= n; i++ {
		next := (t.Turn + i) % n
		if len(t.Seats[next].Hand) > 0 {
			t.Turn = next
			return
		}
	}
	// No seat holds cards; terminal transition is handled in Play.
	t.Turn = -1
}
