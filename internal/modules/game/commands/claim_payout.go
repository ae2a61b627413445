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
	"github.com/drawpot/drawpot/internal/modules/wallet"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type ClaimPayoutCommand struct {
	Code     string    `json:"-"`
	PlayerID uuid.UUID `json:"playerId"`
}

func (c ClaimPayoutCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.PlayerID == uuid.Nil {
		return fmt.Errorf("invalid PlayerID - '%s'", c.PlayerID)
	}

	return nil
}

type ClaimPayoutResponse struct {
	Amount int64 `json:"amount"`
}

func HandleClaimPayout(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[ClaimPayoutCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	response, err := mediator.Send[ClaimPayoutCommand, ClaimPayoutResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ClaimPayoutCommandHandler struct {
	db *sql.DB
}

func NewClaimPayoutCommandHandler(db *sql.DB) *ClaimPayoutCommandHandler {
	return &ClaimPayoutCommandHandler{db}
}

// Handle pays out one settlement obligation. The transfer, the claimed flag,
// and the pool's distributed total commit atomically - a transfer without
// its bookkeeping (or the reverse) can never be observed.
func (h *ClaimPayoutCommandHandler) Handle(
	ctx context.Context,
	request ClaimPayoutCommand,
) (ClaimPayoutResponse, error) {
	now := time.Now().UTC()

	var claimed int64

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if game.Status != domain.StatusEnded {
			return domain.ErrGameNotEnded
		}

		const payoutQuery = `
			SELECT
				game_id, player_id, amount, claimed, created_at, claimed_at
			FROM
				payouts
			WHERE
				game_id = $1 AND player_id = $2
			FOR UPDATE;`

		payout, err := tql.QuerySingle[domain.Payout](ctx, tx, payoutQuery, game.ID, request.PlayerID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.ErrPayoutNotFound
		case err != nil:
			return err
		}

		if err := payout.Claim(game.EndedAt.Time, now); err != nil {
			return err
		}

		pool, err := poolForUpdate(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		if err := pool.RecordDistribution(payout.Amount); err != nil {
			return err
		}

		reference := fmt.Sprintf("payout:%s", game.Code)
		if err := wallet.Transfer(ctx, tx, game.PoolAccountID, request.PlayerID, payout.Amount, reference, now); err != nil {
			return err
		}

		const payoutStmt = `
			UPDATE
				payouts
			SET
				claimed = :claimed,
				claimed_at = :claimed_at
			WHERE
				game_id = :game_id AND player_id = :player_id;`
		if _, err := tql.Exec(ctx, tx, payoutStmt, payout); err != nil {
			return err
		}

		if err := updatePool(ctx, tx, pool); err != nil {
			return err
		}

		claimed = payout.Amount
		return nil
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return ClaimPayoutResponse{}, commandError(err)
	}

	return ClaimPayoutResponse{Amount: claimed}, nil
}
