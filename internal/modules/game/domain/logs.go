package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MaxRoundLogEntries bounds the per-round stroke and guess logs. Appends
// past the bound are rejected rather than silently truncated.
const MaxRoundLogEntries = 100

const (
	MinStrokeWidth = 1
	MaxStrokeWidth = 20
)

// Stroke is one polyline drawn by the current drawer. Points are packed
// coordinates [x1, y1, x2, y2, ...].
type Stroke struct {
	ID          int64         `db:"id"`
	GameID      uuid.UUID     `db:"game_id"`
	RoundNumber int           `db:"round_number"`
	DrawerID    uuid.UUID     `db:"drawer_id"`
	Points      pq.Int64Array `db:"points"`
	Color       int64         `db:"color"`
	Width       int           `db:"width"`
	CreatedAt   time.Time     `db:"created_at"`
}

// GuessRecord is one audit-trail entry in the guess log. Every guess is
// recorded, correct or not.
type GuessRecord struct {
	ID            int64     `db:"id"`
	GameID        uuid.UUID `db:"game_id"`
	RoundNumber   int       `db:"round_number"`
	PlayerID      uuid.UUID `db:"player_id"`
	Word          string    `db:"word"`
	Correct       bool      `db:"correct"`
	PointsAwarded int64     `db:"points_awarded"`
	CreatedAt     time.Time `db:"created_at"`
}
