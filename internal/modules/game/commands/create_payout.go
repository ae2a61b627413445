package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type CreatePayoutCommand struct {
	Code string `json:"-"`
	Rank int    `json:"rank"`
}

func (c CreatePayoutCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.Rank < 0 {
		return fmt.Errorf("invalid Rank - '%d'", c.Rank)
	}

	return nil
}

type CreatePayoutResponse struct {
	PlayerID uuid.UUID `json:"playerId"`
	Amount   int64     `json:"amount"`
}

func HandleCreatePayout(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CreatePayoutCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	response, err := mediator.Send[CreatePayoutCommand, CreatePayoutResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type CreatePayoutCommandHandler struct {
	db *sql.DB
}

func NewCreatePayoutCommandHandler(db *sql.DB) *CreatePayoutCommandHandler {
	return &CreatePayoutCommandHandler{db}
}

type finalRanking struct {
	GameID   uuid.UUID `db:"game_id"`
	Rank     int       `db:"rank"`
	PlayerID uuid.UUID `db:"player_id"`
	Score    int64     `db:"score"`
}

// Handle fixes the payout amount for one rank. The amount is computed from
// the pool total once, here, and never recomputed; repeating the call for
// the same rank fails on the payout's primary key instead of overwriting.
func (h *CreatePayoutCommandHandler) Handle(
	ctx context.Context,
	request CreatePayoutCommand,
) (CreatePayoutResponse, error) {
	now := time.Now().UTC()

	var payout domain.Payout

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if game.Status != domain.StatusEnded {
			return domain.ErrGameNotEnded
		}

		const rankingQuery = `
			SELECT
				game_id, rank, player_id, score
			FROM
				final_rankings
			WHERE
				game_id = $1 AND rank = $2;`

		ranking, err := tql.QuerySingle[finalRanking](ctx, tx, rankingQuery, game.ID, request.Rank)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.ErrInvalidRank
		case err != nil:
			return err
		}

		pool, err := poolForUpdate(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		amount, err := domain.PayoutAmount(pool.TotalStaked, request.Rank)
		if err != nil {
			return err
		}
		payout = domain.NewPayout(game.ID, ranking.PlayerID, amount, now)

		const payoutStmt = `
			INSERT INTO
				payouts (game_id, player_id, amount, claimed, created_at, claimed_at)
			VALUES
				(:game_id, :player_id, :amount, :claimed, :created_at, :claimed_at);`
		if _, err := tql.Exec(ctx, tx, payoutStmt, payout); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrPayoutAlreadyExists
			}
			return err
		}

		return nil
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return CreatePayoutResponse{}, commandError(err)
	}

	return CreatePayoutResponse{PlayerID: payout.PlayerID, Amount: payout.Amount}, nil
}
