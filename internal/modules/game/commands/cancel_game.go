package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/drawpot/drawpot/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type CancelGameCommand struct {
	Code        string    `json:"-"`
	RequesterID uuid.UUID `json:"requesterId"`
}

func (c CancelGameCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.RequesterID == uuid.Nil {
		return fmt.Errorf("invalid RequesterID - '%s'", c.RequesterID)
	}

	return nil
}

func HandleCancelGame(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CancelGameCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err.Error())
		return
	}
	command.Code = chi.URLParam(r, "code")

	if _, err := mediator.Send[CancelGameCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type CancelGameCommandHandler struct {
	db *sql.DB
}

func NewCancelGameCommandHandler(db *sql.DB) *CancelGameCommandHandler {
	return &CancelGameCommandHandler{db}
}

// Handle cancels a lobby. No funds move here - each player collects their
// refund in a separate call, which keeps any one transaction small.
func (h *CancelGameCommandHandler) Handle(ctx context.Context, request CancelGameCommand) (core.Unit, error) {
	now := time.Now().UTC()

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if err := game.Cancel(request.RequesterID, now); err != nil {
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
