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

type JoinGameCommand struct {
	Code     string    `json:"-"`
	PlayerID uuid.UUID `json:"playerId"`
	Stake    int64     `json:"stake"`
}

func (c JoinGameCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.PlayerID == uuid.Nil {
		return fmt.Errorf("invalid PlayerID - '%s'", c.PlayerID)
	}

	if c.Stake <= 0 {
		return fmt.Errorf("invalid Stake - '%d'", c.Stake)
	}

	return nil
}

func HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[JoinGameCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	if _, err := mediator.Send[JoinGameCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type JoinGameCommandHandler struct {
	db *sql.DB
}

func NewJoinGameCommandHandler(db *sql.DB) *JoinGameCommandHandler {
	return &JoinGameCommandHandler{db}
}

// Handle admits a player into a lobby. Stake collection, pool credit, the
// player record, and the updated player count commit as one transaction -
// a failure at any point leaves no trace of the join.
func (h *JoinGameCommandHandler) Handle(ctx context.Context, request JoinGameCommand) (core.Unit, error) {
	now := time.Now().UTC()

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if err := game.AdmitPlayer(request.Stake, now); err != nil {
			return err
		}

		pool, err := poolForUpdate(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		if err := pool.CreditStake(request.Stake); err != nil {
			return err
		}

		reference := fmt.Sprintf("stake:%s", game.Code)
		if err := wallet.Transfer(ctx, tx, request.PlayerID, game.PoolAccountID, request.Stake, reference, now); err != nil {
			return err
		}

		player := domain.NewPlayerState(game.ID, request.PlayerID, game.PlayerCount-1, now)

		const playerStmt = `
			INSERT INTO
				player_states (game_id, player_id, position, score,
					has_guessed_current_round, is_active, joined_at)
			VALUES
				(:game_id, :player_id, :position, :score,
					:has_guessed_current_round, :is_active, :joined_at);`
		if _, err := tql.Exec(ctx, tx, playerStmt, player); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrPlayerAlreadyJoined
			}
			return err
		}

		if err := updatePool(ctx, tx, pool); err != nil {
			return err
		}

		return updateGameStatus(ctx, tx, game)
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return core.Unit{}, commandError(err)
	}

	return core.Unit{}, nil
}
