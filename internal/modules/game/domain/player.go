package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlayerState tracks one player's participation in one game. Exactly one
// record exists per (game, player) pair - the composite primary key in the
// backing table enforces it.
type PlayerState struct {
	GameID                 uuid.UUID `db:"game_id"`
	PlayerID               uuid.UUID `db:"player_id"`
	Position               int       `db:"position"` // join order, also turn order
	Score                  int64     `db:"score"`
	HasGuessedCurrentRound bool      `db:"has_guessed_current_round"`
	IsActive               bool      `db:"is_active"`
	JoinedAt               time.Time `db:"joined_at"`
}

func NewPlayerState(gameID, playerID uuid.UUID, position int, now time.Time) PlayerState {
	return PlayerState{
		GameID:   gameID,
		PlayerID: playerID,
		Position: position,
		IsActive: true,
		JoinedAt: now,
	}
}

func (p *PlayerState) AwardPoints(points int64) error {
	score, err := addChecked(p.Score, points)
	if err != nil {
		return err
	}

	p.Score = score
	p.HasGuessedCurrentRound = true
	return nil
}
