package domain

import (
	"crypto/rand"
	"database/sql"
	"math"
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	StatusLobby     GameStatus = "lobby"
	StatusActive    GameStatus = "active"
	StatusEnded     GameStatus = "ended"
	StatusCancelled GameStatus = "cancelled"
)

const (
	MinPlayers = 2
	MaxPlayers = 10

	RoundDuration = 80 * time.Second
	LobbyTimeout  = 10 * time.Minute
	ClaimDeadline = 7 * 24 * time.Hour

	GameCodeLength = 6
)

// GameConfig is the session contract. It is created once and never deleted -
// only its status and timestamps change over the session lifecycle.
type GameConfig struct {
	ID            uuid.UUID    `db:"id"`
	Code          string       `db:"code"`
	CreatorID     uuid.UUID    `db:"creator_id"`
	StakeAmount   int64        `db:"stake_amount"`
	MaxPlayers    int          `db:"max_players"`
	PlayerCount   int          `db:"player_count"`
	Status        GameStatus   `db:"status"`
	PoolAccountID uuid.UUID    `db:"pool_account_id"`
	CreatedAt     time.Time    `db:"created_at"`
	StartedAt     sql.NullTime `db:"started_at"`
	EndedAt       sql.NullTime `db:"ended_at"`
}

func NewGameConfig(
	creatorID uuid.UUID,
	stakeAmount int64,
	maxPlayers int,
	poolAccountID uuid.UUID,
	now time.Time,
) (GameConfig, error) {
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return GameConfig{}, ErrInvalidPlayerCount
	}

	if stakeAmount <= 0 {
		return GameConfig{}, ErrIncorrectStakeAmount
	}

	return GameConfig{
		ID:            uuid.New(),
		Code:          NewGameCode(),
		CreatorID:     creatorID,
		StakeAmount:   stakeAmount,
		MaxPlayers:    maxPlayers,
		PlayerCount:   0,
		Status:        StatusLobby,
		PoolAccountID: poolAccountID,
		CreatedAt:     now,
	}, nil
}

const gameCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewGameCode returns a 6-character code players use to find the session.
// The 32-character alphabet divides a byte's range evenly, so the modulo
// draw is uniform.
func NewGameCode() string {
	code := make([]byte, GameCodeLength)
	if _, err := rand.Read(code); err != nil {
		panic(err)
	}
	for i, b := range code {
		code[i] = gameCodeAlphabet[int(b)%len(gameCodeAlphabet)]
	}
	return string(code)
}

// AdmitPlayer applies the lobby admission rules and counts the new player in.
// The caller is responsible for collecting the stake and creating the
// PlayerState record in the same transaction.
func (g *GameConfig) AdmitPlayer(stake int64, now time.Time) error {
	if g.Status != StatusLobby {
		return ErrGameAlreadyStarted
	}

	if g.PlayerCount >= g.MaxPlayers {
		return ErrGameFull
	}

	if now.Sub(g.CreatedAt) >= LobbyTimeout {
		return ErrLobbyTimeout
	}

	if stake != g.StakeAmount {
		return ErrIncorrectStakeAmount
	}

	g.PlayerCount++
	return nil
}

// Cancel moves a lobby to the terminal cancelled status. Refunds are issued
// per player afterwards.
func (g *GameConfig) Cancel(requesterID uuid.UUID, now time.Time) error {
	if g.CreatorID != requesterID {
		return ErrNotCreator
	}

	if g.Status != StatusLobby {
		return ErrGameAlreadyStarted
	}

	g.Status = StatusCancelled
	g.EndedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}

func (g *GameConfig) Start(requesterID uuid.UUID, now time.Time) error {
	if g.CreatorID != requesterID {
		return ErrNotCreator
	}

	if g.Status != StatusLobby {
		return ErrGameAlreadyStarted
	}

	if g.PlayerCount < MinPlayers {
		return ErrNotEnoughPlayers
	}

	g.Status = StatusActive
	g.StartedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}

func (g *GameConfig) Finalize(now time.Time) error {
	if g.Status != StatusActive {
		return ErrGameNotActive
	}

	g.Status = StatusEnded
	g.EndedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}

// PrizePool is the custodial accumulator for a game's stakes. Funds live in
// the game's wallet account - this record tracks the ledger totals.
type PrizePool struct {
	GameID           uuid.UUID `db:"game_id"`
	TotalStaked      int64     `db:"total_staked"`
	TotalDistributed int64     `db:"total_distributed"`
}

func (p *PrizePool) CreditStake(amount int64) error {
	total, err := addChecked(p.TotalStaked, amount)
	if err != nil {
		return err
	}

	p.TotalStaked = total
	return nil
}

func (p *PrizePool) RecordDistribution(amount int64) error {
	total, err := addChecked(p.TotalDistributed, amount)
	if err != nil {
		return err
	}

	p.TotalDistributed = total
	return nil
}

func addChecked(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrArithmeticOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}

func mulChecked(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		return 0, ErrArithmeticOverflow
	}
	product := a * b
	if product/b != a {
		return 0, ErrArithmeticOverflow
	}
	return product, nil
}
