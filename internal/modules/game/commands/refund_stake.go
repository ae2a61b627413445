package commands

import (
	"context"
	"database/sql"
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

type RefundStakeCommand struct {
	Code     string    `json:"-"`
	PlayerID uuid.UUID `json:"playerId"`
}

func (c RefundStakeCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.PlayerID == uuid.Nil {
		return fmt.Errorf("invalid PlayerID - '%s'", c.PlayerID)
	}

	return nil
}

func HandleRefundStake(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[RefundStakeCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	if _, err := mediator.Send[RefundStakeCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type RefundStakeCommandHandler struct {
	db *sql.DB
}

func NewRefundStakeCommandHandler(db *sql.DB) *RefundStakeCommandHandler {
	return &RefundStakeCommandHandler{db}
}

// Handle returns a cancelled game's stake to one player and removes their
// player record. A repeated refund finds no record and fails, which is what
// makes the operation idempotent-safe rather than double-paying.
func (h *RefundStakeCommandHandler) Handle(ctx context.Context, request RefundStakeCommand) (core.Unit, error) {
	now := time.Now().UTC()

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if game.Status != domain.StatusCancelled {
			return domain.ErrGameNotCancelled
		}

		if _, err := playerForUpdate(ctx, tx, game.ID, request.PlayerID); err != nil {
			return err
		}

		reference := fmt.Sprintf("refund:%s", game.Code)
		if err := wallet.Transfer(ctx, tx, game.PoolAccountID, request.PlayerID, game.StakeAmount, reference, now); err != nil {
			return err
		}

		const deleteStmt = `
			DELETE FROM
				player_states
			WHERE
				game_id = $1 AND player_id = $2;`
		_, err = tql.Exec(ctx, tx, deleteStmt, game.ID, request.PlayerID)
		return err
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return core.Unit{}, commandError(err)
	}

	return core.Unit{}, nil
}
