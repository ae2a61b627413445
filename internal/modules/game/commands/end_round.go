package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/drawpot/drawpot/internal/modules/core"
	"github.com/drawpot/drawpot/internal/modules/game/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
)

// EndRoundCommand advances the turn. NextWord may be empty when the caller
// expects the game to be over.
type EndRoundCommand struct {
	Code     string `json:"-"`
	NextWord string `json:"nextWord"`
}

func (c EndRoundCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	return nil
}

type EndRoundResponse struct {
	ReadyToEnd  bool `json:"readyToEnd"`
	RoundNumber int  `json:"roundNumber"`
	DrawerIndex int  `json:"drawerIndex"`
}

func HandleEndRound(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[EndRoundCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	response, err := mediator.Send[EndRoundCommand, EndRoundResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type EndRoundCommandHandler struct {
	db *sql.DB
}

func NewEndRoundCommandHandler(db *sql.DB) *EndRoundCommandHandler {
	return &EndRoundCommandHandler{db}
}

// Handle moves play to the next drawer and clears every player's per-round
// guessed flag. Once the last drawer has had their turn it mutates nothing
// and reports ready-to-end - the finalize call completes the game.
func (h *EndRoundCommandHandler) Handle(ctx context.Context, request EndRoundCommand) (EndRoundResponse, error) {
	now := time.Now().UTC()

	var response EndRoundResponse

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if game.Status != domain.StatusActive {
			return domain.ErrGameNotActive
		}

		round, err := roundForUpdate(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		if round.Advance(request.NextWord, game.PlayerCount, now) {
			response = EndRoundResponse{
				ReadyToEnd:  true,
				RoundNumber: round.RoundNumber,
				DrawerIndex: round.DrawerIndex,
			}
			return nil
		}

		if err := updateRound(ctx, tx, round); err != nil {
			return err
		}

		const resetStmt = `
			UPDATE
				player_states
			SET
				has_guessed_current_round = false
			WHERE
				game_id = $1;`
		if _, err := tql.Exec(ctx, tx, resetStmt, game.ID); err != nil {
			return err
		}

		response = EndRoundResponse{
			ReadyToEnd:  false,
			RoundNumber: round.RoundNumber,
			DrawerIndex: round.DrawerIndex,
		}
		return nil
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return EndRoundResponse{}, commandError(err)
	}

	return response, nil
}
