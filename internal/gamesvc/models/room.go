package models

import "time"

// Room represents the rooms table: one joinable game session identified by
// a 6-digit code.
type Room struct {
	ID        int64     `json:"id"`         // Primary key
	Code      string    `json:"code"`       // Unique 6-digit join code
	CreatorID int64     `json:"creator_id"` // FK to users(user_id), may deal and start
	EntryFee  int64     `json:"entry_fee"`  // Coins required to join
	Status    string    `json:"status"`     // 'waiting', 'dealing', 'playing', 'finished'
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
