package comm

import (
	"encoding/json"
	"time"

	"github.com/sattegames/satta-services/internal/gamesvc/engine"
)

// WSMessage is the envelope every message carries between the web client,
// the socket service and the game service.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "init", "create-room", "play-card"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

type PlayerData struct {
	Name    string `json:"name"`
	UserId  int64  `json:"user_id"`
	Balance string `json:"balance"`
}

// RoomData wraps a full room snapshot for broadcast to room members.
type RoomData struct {
	Room      engine.Snapshot `json:"room"`
	Timestamp int64           `json:"timestamp"`
}

// ActionError reports a rejected room action back to the caller.
type ActionError struct {
	Action    string `json:"action"`
	Room      string `json:"room,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// GameResult carries final scores and payouts at the end of a game.
type GameResult struct {
	Room    engine.Snapshot  `json:"room"`
	Scores  map[int64]int64  `json:"scores"`
	Payouts map[int64]string `json:"payouts"` // formatted coin amounts
}

type BalanceStatus struct {
	Status    bool  `json:"status"`
	Timestamp int64 `json:"timestamp"`
}

type Res struct {
	Status bool `json:"status"`
}

type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service id
	Timestamp time.Time `json:"timestamp"`
}

type ServiceShutdown struct {
	ID string `json:"id"` // service id
}
