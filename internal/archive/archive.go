package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one finished game as seen from this client.
type Record struct {
	ID              string
	GameID          string
	Username        string
	MyColor         string
	Result          string
	Reason          string
	WhitePlayer     string
	BlackPlayer     string
	MoveCount       int
	DurationSeconds int
	MoveHistory     []string
	EndedAt         time.Time
}

// NewRecord stamps a fresh record id and timestamp.
func NewRecord() Record {
	return Record{ID: uuid.NewString(), EndedAt: time.Now()}
}

// Repository keeps a local archive of finished games.
type Repository interface {
	SaveResult(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
