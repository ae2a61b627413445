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
	"github.com/google/uuid"
)

type StartGameCommand struct {
	Code        string    `json:"-"`
	RequesterID uuid.UUID `json:"requesterId"`
}

func (c StartGameCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.RequesterID == uuid.Nil {
		return fmt.Errorf("invalid RequesterID - '%s'", c.RequesterID)
	}

	return nil
}

type StartGameResponse struct {
	RoundNumber int `json:"roundNumber"`
	DrawerIndex int `json:"drawerIndex"`
}

func HandleStartGame(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[StartGameCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	response, err := mediator.Send[StartGameCommand, StartGameResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type StartGameCommandHandler struct {
	db *sql.DB
}

func NewStartGameCommandHandler(db *sql.DB) *StartGameCommandHandler {
	return &StartGameCommandHandler{db}
}

func (h *StartGameCommandHandler) Handle(ctx context.Context, request StartGameCommand) (StartGameResponse, error) {
	now := time.Now().UTC()

	var round domain.RoundState

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if err := game.Start(request.RequesterID, now); err != nil {
			return err
		}

		round = domain.NewRoundState(game.ID, now)

		const roundStmt = `
			INSERT INTO
				round_states (game_id, current_word, drawer_index, round_number,
					round_started_at, round_duration, time_remaining)
			VALUES
				(:game_id, :current_word, :drawer_index, :round_number,
					:round_started_at, :round_duration, :time_remaining);`
		if _, err := tql.Exec(ctx, tx, roundStmt, round); err != nil {
			return err
		}

		return updateGameStatus(ctx, tx, game)
	}

	err := core.Tx(ctx, h.db, txFn, core.WithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return StartGameResponse{}, commandError(err)
	}

	return StartGameResponse{
		RoundNumber: round.RoundNumber,
		DrawerIndex: round.DrawerIndex,
	}, nil
}
