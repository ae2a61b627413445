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
	"github.com/go-chi/chi"
)

// TickCommand carries no identity: any caller (typically the scheduler) may
// drive the round clock.
type TickCommand struct {
	Code string `json:"-"`
}

func (c TickCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	return nil
}

type TickResponse struct {
	RoundNumber   int   `json:"roundNumber"`
	TimeRemaining int64 `json:"timeRemaining"`
}

func HandleTick(w http.ResponseWriter, r *http.Request) {
	command := TickCommand{Code: chi.URLParam(r, "code")}

	response, err := mediator.Send[TickCommand, TickResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type TickCommandHandler struct {
	db *sql.DB
}

func NewTickCommandHandler(db *sql.DB) *TickCommandHandler {
	return &TickCommandHandler{db}
}

func (h *TickCommandHandler) Handle(ctx context.Context, request TickCommand) (TickResponse, error) {
	now := time.Now().UTC()

	var round domain.RoundState

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		game, err := gameByCodeForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if game.Status != domain.StatusActive {
			return domain.ErrGameNotActive
		}

		round, err = roundForUpdate(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		round.Tick(now)

		return updateRound(ctx, tx, round)
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return TickResponse{}, commandError(err)
	}

	return TickResponse{
		RoundNumber:   round.RoundNumber,
		TimeRemaining: round.TimeRemaining,
	}, nil
}
