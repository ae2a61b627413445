package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Payout is a single settlement obligation. The amount is fixed at creation
// and never recomputed; claimed only ever moves from false to true.
type Payout struct {
	GameID    uuid.UUID    `db:"game_id"`
	PlayerID  uuid.UUID    `db:"player_id"`
	Amount    int64        `db:"amount"`
	Claimed   bool         `db:"claimed"`
	CreatedAt time.Time    `db:"created_at"`
	ClaimedAt sql.NullTime `db:"claimed_at"`
}

func NewPayout(gameID, playerID uuid.UUID, amount int64, now time.Time) Payout {
	return Payout{
		GameID:    gameID,
		PlayerID:  playerID,
		Amount:    amount,
		CreatedAt: now,
	}
}

// Claim marks the payout collected. endedAt is the owning game's end time;
// claims past the deadline are rejected and the payout stays unclaimed.
func (p *Payout) Claim(endedAt, now time.Time) error {
	if p.Claimed {
		return ErrPayoutAlreadyClaimed
	}

	if now.Sub(endedAt) >= ClaimDeadline {
		return ErrClaimDeadlineExceeded
	}

	p.Claimed = true
	p.ClaimedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}
