package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sattegames/satta-services/internal/gamesvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomStore struct {
	db *pgxpool.Pool
}

func NewRoomStore(db *pgxpool.Pool) *RoomStore {
	return &RoomStore{db: db}
}

// CreateRoom inserts a new waiting room. Returns ErrDuplicateCode when the
// 6-digit code collides with an existing room so the caller can retry with
// a fresh code.
func (s *RoomStore) CreateRoom(ctx context.Context, code string, creatorID int64, entryFee int64) (*models.Room, error) {
	query := `
		INSERT INTO rooms (code, creator_id, entry_fee, status)
		VALUES ($1, $2, $3, 'waiting')
		RETURNING id, code, creator_id, entry_fee, status, created_at, updated_at
	`

	room := &models.Room{}
	err := s.db.QueryRow(ctx, query, code, creatorID, entryFee).Scan(
		&room.ID,
		&room.Code,
		&room.CreatorID,
		&room.EntryFee,
		&room.Status,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return room, nil
}

func (s *RoomStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	query := `
		SELECT id, code, creator_id, entry_fee, status, created_at, updated_at
		FROM rooms
		WHERE code = $1
	`

	room := &models.Room{}
	err := s.db.QueryRow(ctx, query, code).Scan(
		&room.ID,
		&room.Code,
		&room.CreatorID,
		&room.EntryFee,
		&room.Status,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Room not found
		}
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}

	return room, nil
}

func (s *RoomStore) UpdateRoomStatus(ctx context.Context, roomID int64, status string) error {
	query := `
		UPDATE rooms
		SET status = $2, updated_at = now()
		WHERE id = $1
	`

	_, err := s.db.Exec(ctx, query, roomID, status)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}

	return nil
}
