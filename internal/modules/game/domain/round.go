package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoundState is the active-game turn state. It exists only while the game is
// active; once every player has drawn, control moves back to settlement.
type RoundState struct {
	GameID         uuid.UUID `db:"game_id"`
	CurrentWord    string    `db:"current_word"`
	DrawerIndex    int       `db:"drawer_index"`
	RoundNumber    int       `db:"round_number"`
	RoundStartedAt time.Time `db:"round_started_at"`
	RoundDuration  int64     `db:"round_duration"`  // seconds
	TimeRemaining  int64     `db:"time_remaining"`  // seconds, updated by tick
}

func NewRoundState(gameID uuid.UUID, now time.Time) RoundState {
	seconds := int64(RoundDuration / time.Second)

	return RoundState{
		GameID:         gameID,
		CurrentWord:    "", // placeholder; the first advance supplies a word
		DrawerIndex:    0,
		RoundNumber:    0,
		RoundStartedAt: now,
		RoundDuration:  seconds,
		TimeRemaining:  seconds,
	}
}

// Tick recomputes the remaining time from the wall clock. It is idempotent
// and safe to call redundantly - it never touches scores or turn order.
func (r *RoundState) Tick(now time.Time) {
	elapsed := int64(now.Sub(r.RoundStartedAt) / time.Second)

	remaining := r.RoundDuration - elapsed
	if remaining < 0 {
		remaining = 0
	}

	r.TimeRemaining = remaining
}

// Advance moves to the next drawer. When every player has had their turn it
// reports ready-to-end without mutating anything - the caller must finalize.
func (r *RoundState) Advance(nextWord string, playerCount int, now time.Time) (ended bool) {
	nextDrawer := r.DrawerIndex + 1
	if nextDrawer >= playerCount {
		return true
	}

	r.DrawerIndex = nextDrawer
	r.RoundNumber++
	r.CurrentWord = nextWord
	r.RoundStartedAt = now
	r.TimeRemaining = r.RoundDuration
	return false
}

func (r *RoundState) Elapsed(now time.Time) time.Duration {
	return now.Sub(r.RoundStartedAt)
}

// WordMatches compares a guess against the secret word: trimmed,
// case-insensitive, exact match only. An unset word never matches.
func (r *RoundState) WordMatches(guess string) bool {
	if strings.TrimSpace(r.CurrentWord) == "" {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(r.CurrentWord))
}
