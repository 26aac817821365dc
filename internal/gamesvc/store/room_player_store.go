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

var ErrDuplicateCode = errors.New("room code already in use")

type RoomPlayerStore struct {
	db *pgxpool.Pool
}

func NewRoomPlayerStore(db *pgxpool.Pool) *RoomPlayerStore {
	return &RoomPlayerStore{db: db}
}

func (s *RoomPlayerStore) GetPlayersByRoomID(ctx context.Context, roomID int64) ([]*models.RoomPlayer, error) {
	query := `
		SELECT id, room_id, user_id, username, stake, score, created_at, updated_at
		FROM room_players
		WHERE room_id = $1
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.RoomPlayer
	for rows.Next() {
		var rp models.RoomPlayer
		err := rows.Scan(
			&rp.ID,
			&rp.RoomID,
			&rp.UserID,
			&rp.Username,
			&rp.Stake,
			&rp.Score,
			&rp.CreatedAt,
			&rp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		players = append(players, &rp)
	}

	return players, nil
}

// CreateRoomPlayerIfWaiting seats a player only while the room is still
// waiting. The CTE locks the room row so a concurrent start cannot slip a
// player in after dealing began. Fails if the user already joined the room
// (unique_room_user constraint).
func (s *RoomPlayerStore) CreateRoomPlayerIfWaiting(ctx context.Context, roomID int64, userID int64, username string, stake int64) (*models.RoomPlayer, error) {
	if roomID <= 0 {
		return nil, fmt.Errorf("invalid room ID: %d", roomID)
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user ID: %d", userID)
	}

	const query = `
WITH locked_room AS (
  SELECT id
  FROM rooms
  WHERE id = $1
    AND status = 'waiting'
  FOR UPDATE
)
INSERT INTO room_players (room_id, user_id, username, stake, score)
SELECT lr.id, $2, $3, $4, 0
FROM locked_room lr
RETURNING id, room_id, user_id, username, stake, score, created_at, updated_at;
`
	rp := &models.RoomPlayer{}
	err := s.db.QueryRow(ctx, query, roomID, userID, username, stake).Scan(
		&rp.ID,
		&rp.RoomID,
		&rp.UserID,
		&rp.Username,
		&rp.Stake,
		&rp.Score,
		&rp.CreatedAt,
		&rp.UpdatedAt,
	)
	if err != nil {
		// zero rows means the room isn't waiting (or doesn't exist)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cannot join room %d: not in waiting status or not found", roomID)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" && pgErr.ConstraintName == "unique_room_user" {
				return nil, fmt.Errorf("user %d has already joined room %d", userID, roomID)
			}
			if pgErr.Code == "23503" {
				return nil, fmt.Errorf("invalid reference: %s", pgErr.Message)
			}
		}
		return nil, fmt.Errorf("failed to create room player: %w", err)
	}

	return rp, nil
}

// UpdateScore records a player's settled score at game end.
func (s *RoomPlayerStore) UpdateScore(ctx context.Context, roomID int64, userID int64, score int64) error {
	query := `
		UPDATE room_players
		SET score = $3, updated_at = now()
		WHERE room_id = $1 AND user_id = $2
	`

	_, err := s.db.Exec(ctx, query, roomID, userID, score)
	if err != nil {
		return fmt.Errorf("failed to update player score: %w", err)
	}

	return nil
}
