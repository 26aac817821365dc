package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sattegames/satta-services/internal/gamesvc/engine"
)

// ArchiveStore keeps finished-room snapshots in MongoDB. Documents expire
// through a TTL index on expires_at, which is how terminal rooms are
// eventually destroyed.
type ArchiveStore struct {
	col       *mongo.Collection
	retention time.Duration
}

type archivedRoom struct {
	Code       string          `bson:"code"`
	Snapshot   engine.Snapshot `bson:"snapshot"`
	Scores     map[int64]int64 `bson:"scores"`
	FinishedAt time.Time       `bson:"finished_at"`
	ExpiresAt  time.Time       `bson:"expires_at"`
}

func NewArchiveStore(db *mongo.Database, retention time.Duration) *ArchiveStore {
	return &ArchiveStore{
		col:       db.Collection("room_archive"),
		retention: retention,
	}
}

// SaveFinishedRoom archives a finished room with its settled scores.
func (s *ArchiveStore) SaveFinishedRoom(ctx context.Context, snap engine.Snapshot, scores map[int64]int64) error {
	now := time.Now().UTC()
	doc := archivedRoom{
		Code:       snap.Code,
		Snapshot:   snap,
		Scores:     scores,
		FinishedAt: now,
		ExpiresAt:  now.Add(s.retention),
	}

	_, err := s.col.InsertOne(ctx, doc)
	return err
}
