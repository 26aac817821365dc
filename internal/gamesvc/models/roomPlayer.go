package models

import "time"

// RoomPlayer represents the room_players table: one seated member of a room.
type RoomPlayer struct {
	ID        int64     `json:"id"`       // Primary key
	RoomID    int64     `json:"room_id"`  // FK to rooms(id)
	UserID    int64     `json:"user_id"`  // FK to users(user_id)
	Username  string    `json:"username"` // Display name at join time
	Stake     int64     `json:"stake"`    // Coins committed on join
	Score     int64     `json:"score"`    // Final score, 0 until settled
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
