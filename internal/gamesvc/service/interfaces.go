package service

import (
	"context"

	"github.com/sattegames/satta-services/internal/gamesvc/engine"
	"github.com/sattegames/satta-services/internal/gamesvc/models"
	"github.com/shopspring/decimal"
)

// BalanceStore is the slice of the balances store the wallet needs.
type BalanceStore interface {
	GetBalanceByUserID(ctx context.Context, userId int64) (decimal.Decimal, error)
	InsertDebit(ctx context.Context, userId int64, amount decimal.Decimal, ttype, tref string) error
	InsertCredit(ctx context.Context, userId int64, amount decimal.Decimal, ttype, tref string) error
}

// Wallet is the coin collaborator the room registry debits and credits.
// The registry never touches balance persistence directly.
type Wallet interface {
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	Debit(ctx context.Context, userID int64, amount int64, tref string) error
	Credit(ctx context.Context, userID int64, amount int64, tref string) error
}

// RoomStore persists room rows.
type RoomStore interface {
	CreateRoom(ctx context.Context, code string, creatorID int64, entryFee int64) (*models.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)
	UpdateRoomStatus(ctx context.Context, roomID int64, status string) error
}

// RoomPlayerStore persists room membership rows.
type RoomPlayerStore interface {
	CreateRoomPlayerIfWaiting(ctx context.Context, roomID int64, userID int64, username string, stake int64) (*models.RoomPlayer, error)
	GetPlayersByRoomID(ctx context.Context, roomID int64) ([]*models.RoomPlayer, error)
	UpdateScore(ctx context.Context, roomID int64, userID int64, score int64) error
}

// Archiver keeps finished-room snapshots until their retention expires.
type Archiver interface {
	SaveFinishedRoom(ctx context.Context, snap engine.Snapshot, scores map[int64]int64) error
}
