package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type GetGameQuery struct {
	Code string
}

func (q GetGameQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	return nil
}

type GamePlayer struct {
	PlayerID uuid.UUID `json:"playerId"`
	Position int       `json:"position"`
	Score    int64     `json:"score"`
	IsActive bool      `json:"isActive"`
}

type GameRound struct {
	RoundNumber   int   `json:"roundNumber"`
	DrawerIndex   int   `json:"drawerIndex"`
	TimeRemaining int64 `json:"timeRemaining"`
}

type GameResponse struct {
	Code             string            `json:"code"`
	CreatorID        uuid.UUID         `json:"creatorId"`
	StakeAmount      int64             `json:"stakeAmount"`
	MaxPlayers       int               `json:"maxPlayers"`
	PlayerCount      int               `json:"playerCount"`
	Status           domain.GameStatus `json:"status"`
	TotalStaked      int64             `json:"totalStaked"`
	TotalDistributed int64             `json:"totalDistributed"`
	Players          []GamePlayer      `json:"players"`
	Round            *GameRound        `json:"round,omitempty"`
}

func HandleGetGame(w http.ResponseWriter, r *http.Request) {
	query := GetGameQuery{Code: chi.URLParam(r, "code")}

	response, err := mediator.Send[GetGameQuery, GameResponse](r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetGameQueryHandler struct {
	db *sql.DB
}

func NewGetGameQueryHandler(db *sql.DB) *GetGameQueryHandler {
	return &GetGameQueryHandler{db}
}

func (h *GetGameQueryHandler) Handle(ctx context.Context, request GetGameQuery) (GameResponse, error) {
	const gameQuery = `
		SELECT
			id, code, creator_id, stake_amount, max_players, player_count,
			status, pool_account_id, created_at, started_at, ended_at
		FROM
			games
		WHERE
			code = $1;`

	game, err := tql.QuerySingle[domain.GameConfig](ctx, h.db, gameQuery, request.Code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return GameResponse{}, core.NewCommandError(404, domain.ErrInvalidGameCode)
	case err != nil:
		return GameResponse{}, core.NewCommandError(500, err)
	}

	const poolQuery = `
		SELECT
			game_id, total_staked, total_distributed
		FROM
			prize_pools
		WHERE
			game_id = $1;`

	pool, err := tql.QuerySingle[domain.PrizePool](ctx, h.db, poolQuery, game.ID)
	if err != nil {
		return GameResponse{}, core.NewCommandError(500, err)
	}

	const playersQuery = `
		SELECT
			game_id, player_id, position, score,
			has_guessed_current_round, is_active, joined_at
		FROM
			player_states
		WHERE
			game_id = $1
		ORDER BY
			position;`

	players, err := tql.Query[domain.PlayerState](ctx, h.db, playersQuery, game.ID)
	if err != nil {
		return GameResponse{}, core.NewCommandError(500, err)
	}

	response := GameResponse{
		Code:             game.Code,
		CreatorID:        game.CreatorID,
		StakeAmount:      game.StakeAmount,
		MaxPlayers:       game.MaxPlayers,
		PlayerCount:      game.PlayerCount,
		Status:           game.Status,
		TotalStaked:      pool.TotalStaked,
		TotalDistributed: pool.TotalDistributed,
		Players: core.Map(players, func(p domain.PlayerState) GamePlayer {
			return GamePlayer{
				PlayerID: p.PlayerID,
				Position: p.Position,
				Score:    p.Score,
				IsActive: p.IsActive,
			}
		}),
	}

	if game.Status == domain.StatusActive {
		const roundQuery = `
			SELECT
				game_id, current_word, drawer_index, round_number,
				round_started_at, round_duration, time_remaining
			FROM
				round_states
			WHERE
				game_id = $1;`

		round, err := tql.QuerySingle[domain.RoundState](ctx, h.db, roundQuery, game.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return GameResponse{}, core.NewCommandError(500, err)
		}

		if err == nil {
			// The secret word stays server-side; clients only see the clock
			// and whose turn it is.
			response.Round = &GameRound{
				RoundNumber:   round.RoundNumber,
				DrawerIndex:   round.DrawerIndex,
				TimeRemaining: round.TimeRemaining,
			}
		}
	}

	return response, nil
}
